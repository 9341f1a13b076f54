package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time.
var version = "dev"

func main() {
	root := newRootCmd()

	// serve is the default command
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "groupmeet",
		Short: "Collects weekly availability from a group and finds common free time",
		Long: `groupmeet stores each participant's free 15-minute slots per calendar and
aggregates them so a group can pick a meeting time.

It serves JSON-RPC at /rpc and MCP at /mcp over HTTP, or MCP over stdio.`,
		Version:      version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(`{{printf "groupmeet version %s\n" .Version}}`)

	root.AddCommand(newServeCmd())
	root.AddCommand(newLabelsCmd())
	root.AddCommand(newKeysCmd())
	return root
}
