package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"zeusmaker/internal/logging"
	"zeusmaker/internal/preflight"
	"zeusmaker/internal/resources"
	"zeusmaker/internal/staging"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify dependencies, directories, and worker sizing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(out, line)
			}
			depsOK := true
			for _, status := range preflight.CheckSystemDeps(cmd.Context(), cfg) {
				kind := dependencyKind(status)
				if kind == statusError {
					depsOK = false
				}
				detail := status.Command
				if status.Detail != "" {
					detail = fmt.Sprintf("%s (%s)", status.Command, status.Detail)
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, detail, colorize))
			}

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Directories", colorize) {
				fmt.Fprintln(out, line)
			}
			var dirs []preflight.Result
			// The output directory is created by the first convert run.
			if _, err := os.Stat(cfg.Paths.OutputDir); errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintln(out, renderStatusLine("Output directory", statusWarn, cfg.Paths.OutputDir+" (created on first convert)", colorize))
			} else {
				dirs = append(dirs, preflight.CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
			}
			dirs = append(dirs,
				preflight.CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
				preflight.CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
			)
			for _, line := range preflightLines(dirs, colorize) {
				fmt.Fprintln(out, line)
			}
			if leftovers, err := staging.ListLeftovers(cfg.Paths.OutputDir); err == nil && len(leftovers) > 0 {
				var total int64
				for _, l := range leftovers {
					total += l.Size
				}
				fmt.Fprintln(out, renderStatusLine("Leftovers", statusWarn,
					fmt.Sprintf("%d from interrupted runs (%s), removed by the next convert", len(leftovers), humanize.IBytes(uint64(total))), colorize))
			}

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Host", colorize) {
				fmt.Fprintln(out, line)
			}
			host, hostErr := resources.HostReport(cmd.Context(), resources.NewSizer())
			if hostErr != nil {
				logging.WarnWithContext(logger, "host report incomplete", "host_report_partial",
					logging.Error(hostErr),
					logging.String(logging.FieldImpact, "some host figures are shown as zero"),
				)
			}
			fmt.Fprintln(out, renderTable([]string{"Metric", "Value"}, buildHostRows(host, cfg.Conversion.MaxWorkers), []columnAlignment{alignLeft, alignRight}))

			if err := preflight.Err(dirs); err != nil {
				return err
			}
			if !depsOK {
				return errors.New("required dependencies missing")
			}
			return nil
		},
	}
}

func buildHostRows(host resources.Host, maxWorkers int) [][]string {
	taskWorkers := fmt.Sprintf("%d", host.TaskWorkers)
	if maxWorkers > 0 && maxWorkers < host.TaskWorkers {
		taskWorkers = fmt.Sprintf("%d (capped from %d)", maxWorkers, host.TaskWorkers)
	}
	return [][]string{
		{"Logical cores", fmt.Sprintf("%d", host.LogicalCores)},
		{"Physical cores", fmt.Sprintf("%d", host.PhysicalCores)},
		{"Memory total", humanize.IBytes(host.TotalMemory)},
		{"Memory available", humanize.IBytes(host.AvailMemory)},
		{"Memory used", fmt.Sprintf("%.1f%%", host.MemoryPercent)},
		{"Load (1/5/15)", fmt.Sprintf("%.2f / %.2f / %.2f", host.Load1, host.Load5, host.Load15)},
		{"Task workers", taskWorkers},
		{"Segment workers", fmt.Sprintf("%d", host.SegmentWorkers)},
	}
}
