package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rpggio/groupmeet/internal/config"
	"github.com/rpggio/groupmeet/internal/domain/grid"
)

func newLabelsCmd() *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Print the row labels of the configured grid",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if start != "" {
				cfg.Grid.Start = start
			}
			if end != "" {
				cfg.Grid.End = end
			}
			g, err := cfg.BuildGrid()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d rows per day, %d slots per week\n", g.SlotsPerDay, g.SlotCount())
			fmt.Fprintf(out, "days: %s\n", strings.Join(grid.DayNames[:], " "))
			hours := map[int]bool{}
			for _, row := range g.HourStarts() {
				hours[row] = true
			}
			for row, label := range g.Labels {
				marker := ""
				if hours[row] {
					marker = " *"
				}
				fmt.Fprintf(out, "%3d  %s%s\n", row, label, marker)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "First row, HH:MM (overrides config)")
	cmd.Flags().StringVar(&end, "end", "", "Last row, HH:MM (overrides config)")
	return cmd
}
