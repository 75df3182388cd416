package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"zeusmaker/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded conversion batches",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))

	return historyCmd
}

// withStore opens the history database for the duration of fn.
func (c *commandContext) withStore(fn func(store *history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent batches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *history.Store) error {
				batches, err := store.ListBatches(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(batches) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No batches recorded")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Started", "Files", "Failed", "Segments", "Elapsed", "Canceled"},
					buildBatchRows(batches),
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum batches to list (0 lists all)")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <batch-id>",
		Short: "Show the per-file results of one batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *history.Store) error {
				batch, err := store.GetBatch(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if batch == nil {
					return fmt.Errorf("batch %s not found", args[0])
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Batch %s\n", batch.ID)
				fmt.Fprintf(out, "Output directory: %s\n", batch.OutputDir)
				fmt.Fprintf(out, "Started: %s\n", batch.StartedAt.Local().Format(time.DateTime))
				fmt.Fprintf(out, "Result: %d ok, %d failed, canceled %s\n", batch.SuccessCount, batch.ErrorCount, yesNo(batch.Canceled))
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Input", "Segments", "Status", "Elapsed", "Output / Error"},
					buildTaskRecordRows(batch.Results),
					[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete batches older than the given number of days",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 0 {
				return errors.New("--days must be >= 0")
			}
			return ctx.withStore(func(store *history.Store) error {
				cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
				removed, err := store.PruneBefore(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d batch(es)\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Keep batches newer than this many days")
	return cmd
}

func buildBatchRows(batches []history.Batch) [][]string {
	rows := make([][]string, 0, len(batches))
	for _, b := range batches {
		rows = append(rows, []string{
			shortID(b.ID),
			b.StartedAt.Local().Format(time.DateTime),
			fmt.Sprintf("%d", b.SuccessCount+b.ErrorCount),
			fmt.Sprintf("%d", b.ErrorCount),
			fmt.Sprintf("%d", b.TotalSegments),
			b.Elapsed.Round(time.Millisecond).String(),
			yesNo(b.Canceled),
		})
	}
	return rows
}

func buildTaskRecordRows(records []history.TaskRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		status := "ok"
		detail := r.Output
		if !r.Success {
			status = r.FailureKind
			if status == "" {
				status = "failed"
			}
			detail = r.Error
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.TaskID+1),
			r.Input,
			fmt.Sprintf("%d", r.SegmentCount),
			status,
			r.Elapsed.Round(time.Millisecond).String(),
			detail,
		})
	}
	return rows
}

// shortID trims a UUID to its first group; GetBatch accepts the prefix.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
