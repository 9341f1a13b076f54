package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rpggio/groupmeet/internal/config"
	"github.com/rpggio/groupmeet/internal/sqlite"
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys that identify users",
	}
	cmd.AddCommand(newKeysAddCmd())
	return cmd
}

func newKeysAddCmd() *cobra.Command {
	var token, description string

	cmd := &cobra.Command{
		Use:   "add USER_ID",
		Short: "Create a bearer token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			db, err := openDB(cfg.DB.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			if token == "" {
				token = uuid.NewString()
			}
			if err := sqlite.NewAPIKeyRepository(db).AddKey(cmd.Context(), token, args[0], description); err != nil {
				return err
			}
			// The token is only shown once; the database keeps its hash.
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Token to register (generated when empty)")
	cmd.Flags().StringVar(&description, "description", "", "Note stored with the key")
	return cmd
}
