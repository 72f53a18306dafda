package logging

import (
	"context"
	"log/slog"

	"scenecast/internal/services"
)

// WithContext returns a logger enriched with the build and stage annotations
// carried by ctx. A nil logger yields the no-op logger.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	if id, ok := services.BuildIDFromContext(ctx); ok {
		logger = logger.With(String(FieldBuildID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		logger = logger.With(String(FieldStage, stage))
	}
	return logger
}
