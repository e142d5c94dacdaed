package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/launchtree/pkg/domain"
)

// LogHooks returns build hooks that trace the walk at debug level.
func LogHooks(logger *slog.Logger) domain.BuildHooks {
	return domain.BuildHooks{
		OnEntityEnter: func(ctx context.Context, e *domain.EntityEvent) {
			logger.DebugContext(ctx, "entity enter",
				"family", e.Family,
				"behavior", e.Behavior,
				"depth", e.Depth,
				"source", e.Source)
		},
		OnEntityLeave: func(ctx context.Context, e *domain.EntityEvent) {
			logger.DebugContext(ctx, "entity leave",
				"family", e.Family,
				"depth", e.Depth,
				"duration", e.Duration)
		},
		OnBuildDone: func(ctx context.Context, e *domain.BuildEvent) {
			logger.InfoContext(ctx, "build done",
				"run_id", e.RunID,
				"visited", e.Visited,
				"failed", e.Failed,
				"sources", e.Sources,
				"duration", e.Duration,
				"interrupted", e.Interrupted)
		},
	}
}
