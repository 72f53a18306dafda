package build

import (
	"log/slog"

	"scenecast/internal/logging"
)

// Stage names reported through progress callbacks.
const (
	StageNarrate  = "narrate"
	StageRender   = "render"
	StageEncode   = "encode"
	StageMux      = "mux"
	StageComplete = "complete"
)

// Progress is one progress event. Current counts from 1 within a stage.
type Progress struct {
	Stage   string
	Current int
	Total   int
	Message string
}

// ProgressFunc receives progress events inline on the build's critical path.
// Implementations must not block materially.
type ProgressFunc func(Progress)

// LogProgress is the fallback callback used when the caller supplies none. It
// logs stage transitions and completion rather than every frame.
func LogProgress(logger *slog.Logger) ProgressFunc {
	var lastStage string
	return func(p Progress) {
		if p.Stage == lastStage && p.Current != p.Total {
			return
		}
		lastStage = p.Stage
		logger.Debug("build progress",
			logging.String(logging.FieldStage, p.Stage),
			logging.Int("current", p.Current),
			logging.Int("total", p.Total))
	}
}
