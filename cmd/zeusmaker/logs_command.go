package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"zeusmaker/internal/logging"
	"zeusmaker/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var filter logs.Filter

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display the zeusmaker log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := logging.LogFilePath(cfg)
			out := cmd.OutOrStdout()

			// Filtering happens after the tail, so a filter can print fewer
			// than --lines lines.
			tail, offset, err := logs.Last(path, lines)
			if err != nil {
				return err
			}
			for _, line := range filter.Apply(tail) {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), path, offset, 250*time.Millisecond, func(line string) {
				if filter.Match(line) {
					fmt.Fprintln(out, line)
				}
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().StringVar(&filter.BatchID, "batch", "", "Only show lines for this batch ID (prefix)")
	cmd.Flags().StringVar(&filter.Contains, "grep", "", "Only show lines containing this text")
	return cmd
}
