package domain

import (
	"context"
	"time"
)

// EventType defines the category of a build event.
type EventType string

const (
	EventEntityEnter  EventType = "entity_enter"
	EventEntityLeave  EventType = "entity_leave"
	EventEntityFailed EventType = "entity_failed"
	EventBuildDone    EventType = "build_done"
)

// EventBase contains fields common to all build events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id,omitempty"`
}

// EntityEvent describes the builder entering, leaving or failing an entity.
type EntityEvent struct {
	EventBase
	Family   Family        `json:"family"`
	Behavior Behavior      `json:"behavior"`
	Depth    int           `json:"depth"`
	Source   string        `json:"source,omitempty"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration,omitempty"`
}

// BuildEvent summarizes a finished build.
type BuildEvent struct {
	EventBase
	Visited     int           `json:"visited"`
	Failed      int           `json:"failed"`
	Sources     int           `json:"sources"`
	Duration    time.Duration `json:"duration"`
	Interrupted bool          `json:"interrupted,omitempty"`
}

// BuildHooks defines callbacks for build observability.
// Hooks run synchronously on the build goroutine and must not block.
type BuildHooks struct {
	OnEntityEnter  func(context.Context, *EntityEvent)
	OnEntityLeave  func(context.Context, *EntityEvent)
	OnEntityFailed func(context.Context, *EntityEvent)
	OnBuildDone    func(context.Context, *BuildEvent)
}

// Merge returns hooks that call h first and then other.
func (h BuildHooks) Merge(other BuildHooks) BuildHooks {
	return BuildHooks{
		OnEntityEnter:  chainEntity(h.OnEntityEnter, other.OnEntityEnter),
		OnEntityLeave:  chainEntity(h.OnEntityLeave, other.OnEntityLeave),
		OnEntityFailed: chainEntity(h.OnEntityFailed, other.OnEntityFailed),
		OnBuildDone:    chainBuild(h.OnBuildDone, other.OnBuildDone),
	}
}

func chainEntity(a, b func(context.Context, *EntityEvent)) func(context.Context, *EntityEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *EntityEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainBuild(a, b func(context.Context, *BuildEvent)) func(context.Context, *BuildEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *BuildEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
