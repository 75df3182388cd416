package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"zeusmaker/internal/progress"
)

const progressTick = 100 * time.Millisecond

// progressRenderer drains engine events on a fixed tick and turns them into
// terminal output: a segment progress bar on a terminal, one line per task
// lifecycle change otherwise.
type progressRenderer struct {
	out         io.Writer
	batchID     string
	interactive bool
	stats       func() progress.Snapshot
	bar         *progressbar.ProgressBar
	names       map[int]string
}

func newProgressRenderer(out io.Writer, batchID string, inputs int, interactive bool, stats func() progress.Snapshot) *progressRenderer {
	r := &progressRenderer{
		out:         out,
		batchID:     batchID,
		interactive: interactive,
		stats:       stats,
		names:       make(map[int]string),
	}
	if interactive {
		r.bar = progressbar.NewOptions(max(inputs, 1),
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetDescription("planning"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(progressTick),
			progressbar.OptionClearOnFinish(),
		)
	}
	return r
}

// follow blocks until the batch's AllTasksCompleted event arrives and returns
// it. The engine always emits that event, including after cancellation.
func (r *progressRenderer) follow(events *progress.Channel) progress.AllTasksCompleted {
	ticker := time.NewTicker(progressTick)
	defer ticker.Stop()
	for {
		for _, ev := range events.Drain(0) {
			if done, ok := ev.(progress.AllTasksCompleted); ok && done.BatchID == r.batchID {
				r.finish()
				return done
			}
			r.handle(ev)
		}
		r.refresh()
		<-ticker.C
	}
}

func (r *progressRenderer) handle(ev progress.Event) {
	switch e := ev.(type) {
	case progress.TaskStarted:
		if e.BatchID != r.batchID {
			return
		}
		name := filepath.Base(e.Input)
		r.names[e.TaskID] = name
		if r.interactive {
			r.bar.Describe(name)
			return
		}
		fmt.Fprintln(r.out, renderStatusLine(name, statusInfo, fmt.Sprintf("started, %d segment(s)", e.SegmentCount), false))
	case progress.TaskCompleted:
		if e.BatchID != r.batchID {
			return
		}
		name := r.names[e.TaskID]
		if name == "" {
			name = filepath.Base(e.Result.Input)
		}
		message := e.Result.Message()
		if !r.interactive && r.stats != nil {
			message = fmt.Sprintf("%s [%.0f%% of segments]", message, r.stats().SegmentPercent())
		}
		r.println(renderStatusLine(name, resultKind(e.Result), message, r.interactive))
	}
}

// refresh moves the bar to the engine's segment counters. Planning adds every
// task's segments before the first task starts, so the total is stable once
// it is non-zero.
func (r *progressRenderer) refresh() {
	if !r.interactive || r.stats == nil {
		return
	}
	snap := r.stats()
	if snap.TotalSegments > 0 && r.bar.GetMax() != snap.TotalSegments {
		r.bar.ChangeMax(snap.TotalSegments)
	}
	_ = r.bar.Set(snap.CompletedSegments)
}

func (r *progressRenderer) println(line string) {
	if r.interactive {
		_ = r.bar.Clear()
		fmt.Fprintln(r.out, line)
		_ = r.bar.RenderBlank()
		return
	}
	fmt.Fprintln(r.out, line)
}

func (r *progressRenderer) finish() {
	if r.interactive {
		r.refresh()
		_ = r.bar.Finish()
	}
}
