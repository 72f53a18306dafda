package main

import (
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/mattn/go-isatty"

	"scenecast/internal/build"
)

// newProgressFunc returns a progress callback and a stop function. On a
// terminal it renders live trackers; elsewhere it returns nil so the
// orchestrator falls back to log-based progress.
func newProgressFunc(out io.Writer) (build.ProgressFunc, func()) {
	if !isTerminal(out) {
		return nil, func() {}
	}

	pw := progress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetTrackerLength(30)
	go pw.Render()

	trackers := map[string]*progress.Tracker{}
	fn := func(p build.Progress) {
		if p.Stage == build.StageComplete {
			return
		}
		tracker, ok := trackers[p.Stage]
		if !ok {
			tracker = &progress.Tracker{
				Message: stageMessage(p.Stage),
				Total:   int64(p.Total),
			}
			trackers[p.Stage] = tracker
			pw.AppendTracker(tracker)
		}
		tracker.SetValue(int64(p.Current))
		if p.Current >= p.Total {
			tracker.MarkAsDone()
		}
	}
	stop := func() {
		for _, tracker := range trackers {
			if !tracker.IsDone() {
				tracker.MarkAsDone()
			}
		}
		pw.Stop()
		// Give the renderer a beat to paint the final state.
		for pw.IsRenderInProgress() {
			time.Sleep(10 * time.Millisecond)
		}
	}
	return fn, stop
}

func stageMessage(stage string) string {
	switch stage {
	case build.StageNarrate:
		return "Synthesizing narration"
	case build.StageRender:
		return "Rendering frames"
	case build.StageEncode:
		return "Encoding video"
	case build.StageMux:
		return "Muxing audio"
	default:
		return stage
	}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
