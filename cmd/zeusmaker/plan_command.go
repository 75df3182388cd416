package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"zeusmaker/internal/config"
	"zeusmaker/internal/conversion"
	"zeusmaker/internal/deps"
	"zeusmaker/internal/media/ffprobe"
	"zeusmaker/internal/media/tags"
	"zeusmaker/internal/naming"
	"zeusmaker/internal/transcode"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var showCommands bool

	cmd := &cobra.Command{
		Use:   "plan <file>...",
		Short: "Show how inputs would be split without converting",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			dir := strings.TrimSpace(outputDir)
			if dir == "" {
				dir = cfg.Paths.OutputDir
			}
			if dir, err = config.ExpandPath(dir); err != nil {
				return err
			}

			// A missing ffmpeg is reported by "check"; the plan still renders
			// with the bare command name.
			binary, err := deps.ResolveFFmpegPath(cfg.FFmpeg.Binary)
			if err != nil {
				binary = "ffmpeg"
			}
			planner := &conversion.Planner{
				Prober:    ffprobe.Prober{FFprobe: cfg.FFprobeBinary(), FFmpeg: binary},
				Chunking:  conversion.ChunkingConfig(cfg.Conversion),
				Quality:   transcode.Quality{Video: cfg.Conversion.VideoQuality, Audio: cfg.Conversion.AudioQuality},
				OutputDir: dir,
				Logger:    logger,
			}

			tasks := make([]*conversion.Task, 0, len(args))
			for i, input := range args {
				tasks = append(tasks, planner.PlanTask(cmd.Context(), i, input))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Input", "Kind", "Duration", "Bitrate", "Segments", "Fast", "Output", "Title"},
				buildPlanRows(tasks),
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft, alignLeft},
			))

			if showCommands {
				for _, task := range tasks {
					if task.PlanErr != nil {
						continue
					}
					fmt.Fprintln(out)
					fmt.Fprintf(out, "# %s\n", task.InputPath)
					for i := range task.Segments {
						fmt.Fprintln(out, transcode.DryRun(binary, task.Job(i)))
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (defaults to paths.output_dir)")
	cmd.Flags().BoolVar(&showCommands, "commands", false, "Print the ffmpeg command for every segment")
	return cmd
}

func buildPlanRows(tasks []*conversion.Task) [][]string {
	rows := make([][]string, 0, len(tasks))
	for _, task := range tasks {
		row := []string{fmt.Sprintf("%d", task.ID+1), task.InputPath, task.Kind.String()}
		if task.PlanErr != nil {
			rows = append(rows, append(row, "-", "-", "-", "-", "error: "+task.PlanErr.Error()))
			continue
		}
		duration := "unknown"
		if task.Duration > 0 {
			duration = formatSeconds(task.Duration)
		}
		bitRate := ""
		if task.BitRate > 0 {
			bitRate = humanize.SI(float64(task.BitRate), "b/s")
		}
		rows = append(rows, append(row,
			duration,
			bitRate,
			fmt.Sprintf("%d", len(task.Segments)),
			yesNo(task.FastMode),
			task.OutputPath,
			tagLabel(task),
		))
	}
	return rows
}

func formatSeconds(total int) string {
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// tagLabel shows embedded metadata for audio inputs. Missing or unreadable
// tags fall back to a title derived from the file name.
func tagLabel(task *conversion.Task) string {
	if task.Kind != transcode.KindAudio {
		return ""
	}
	info, err := tags.Read(task.InputPath)
	if err != nil || info.Label() == "" {
		stem := strings.TrimSuffix(filepath.Base(task.InputPath), filepath.Ext(task.InputPath))
		return naming.DisplayTitle(stem)
	}
	return info.Label()
}
