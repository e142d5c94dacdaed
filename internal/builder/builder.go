// Package builder walks launch entities and builds the classified tree.
//
// The walk is depth-first and in document order on a single goroutine. Each entity
// is guarded individually: a failure while evaluating its condition, entering its
// scope, expanding it or extracting its attributes drops that entity's subtree,
// records a diagnostic and lets the walk continue with the next sibling.
package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/launchtree/internal/logging"
	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/ports"
	"github.com/aretw0/launchtree/pkg/registry"
	"github.com/aretw0/launchtree/pkg/scope"
)

// DefaultMaxDepth bounds the entity nesting of one build.
const DefaultMaxDepth = 64

var (
	// ErrRootFailed is returned when the root entity is absent or fails.
	ErrRootFailed = errors.New("root entity produced no tree")
	// ErrIncludeCycle fails an entity that re-enters a source still being expanded.
	ErrIncludeCycle = errors.New("include cycle")
	// ErrMaxDepth fails an entity nested deeper than the configured maximum.
	ErrMaxDepth = errors.New("maximum nesting depth exceeded")
	// ErrScopeLeak is returned when the overlay stacks differ before and after a build.
	ErrScopeLeak = errors.New("scope leak")
	// ErrPanic wraps a panic recovered while processing an entity.
	ErrPanic = errors.New("panic while processing entity")
)

// Mode selects how entities are classified during the walk.
type Mode int

const (
	// Classified builds every entity with its registered behavior.
	Classified Mode = iota
	// Generic builds every entity as structural and leaves splicing and
	// dropping to the normalizer.
	Generic
)

func (m Mode) String() string {
	if m == Generic {
		return "generic"
	}
	return "classified"
}

// Builder builds trees from root entities. It holds no per-build state and may
// be shared; every Build call needs its own scope.Context.
type Builder struct {
	engine   ports.Engine
	registry *registry.Registry
	mode     Mode
	maxDepth int
	logger   *slog.Logger
	hooks    domain.BuildHooks
	runID    string
}

// Option configures a Builder.
type Option func(*Builder)

// WithMode sets the classification mode.
func WithMode(m Mode) Option {
	return func(b *Builder) {
		b.mode = m
	}
}

// WithMaxDepth sets the maximum entity nesting. Values below 1 keep the default.
func WithMaxDepth(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.maxDepth = n
		}
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// WithHooks adds lifecycle callbacks. Repeated calls chain the hooks.
func WithHooks(h domain.BuildHooks) Option {
	return func(b *Builder) {
		b.hooks = b.hooks.Merge(h)
	}
}

// WithRunID tags events and log records with a run identifier.
func WithRunID(id string) Option {
	return func(b *Builder) {
		b.runID = id
	}
}

// New creates a Builder.
func New(engine ports.Engine, reg *registry.Registry, opts ...Option) *Builder {
	b := &Builder{
		engine:   engine,
		registry: reg,
		maxDepth: DefaultMaxDepth,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.runID != "" {
		b.logger = b.logger.With("run_id", b.runID)
	}
	return b
}

// Mode returns the classification mode.
func (b *Builder) Mode() Mode {
	return b.mode
}

// Registry returns the registry used for classification.
func (b *Builder) Registry() *registry.Registry {
	return b.registry
}

// Report summarizes one build.
type Report struct {
	Diagnostics []domain.Diagnostic
	// Sources lists every expanded source, in order of first expansion.
	Sources     []string
	Visited     int
	Failed      int
	Duration    time.Duration
	Interrupted bool
}

// Build walks root with sc and returns the classified tree.
//
// Per-entity failures are reported in the Report and never returned. Build returns an
// error only when the root is absent or failed (ErrRootFailed), when scope discipline is
// violated (scope.ErrScopeUnderflow, ErrScopeLeak) or when ctx is cancelled; in the
// last case the partial tree is returned along with the error.
func (b *Builder) Build(ctx context.Context, sc *scope.Context, root domain.Entity) (*domain.TreeNode, *Report, error) {
	start := time.Now()
	w := &walk{
		b:      b,
		ctx:    ctx,
		sc:     sc,
		open:   make(map[string]bool),
		seen:   make(map[string]bool),
		report: &Report{},
	}

	before := sc.Depths()
	leave := sc.Enter(scope.Frame{Mask: scope.All})
	node, err := w.build(root, 0)
	if lerr := leave(); lerr != nil && w.fatal == nil {
		w.fatal = lerr
	}
	if after := sc.Depths(); w.fatal == nil && after != before {
		w.fatal = fmt.Errorf("%w: stacks at %+v after build, %+v before", ErrScopeLeak, after, before)
	}

	w.report.Duration = time.Since(start)
	if b.hooks.OnBuildDone != nil {
		b.hooks.OnBuildDone(ctx, &domain.BuildEvent{
			EventBase:   b.event(domain.EventBuildDone),
			Visited:     w.report.Visited,
			Failed:      w.report.Failed,
			Sources:     len(w.report.Sources),
			Duration:    w.report.Duration,
			Interrupted: w.report.Interrupted,
		})
	}
	b.logger.Debug("build finished",
		"visited", w.report.Visited,
		"failed", w.report.Failed,
		"sources", len(w.report.Sources),
		"duration", w.report.Duration)

	switch {
	case w.fatal != nil:
		return nil, w.report, w.fatal
	case w.report.Interrupted:
		return node, w.report, fmt.Errorf("build interrupted: %w", context.Cause(ctx))
	case err != nil:
		return nil, w.report, fmt.Errorf("%w: %w", ErrRootFailed, err)
	case node == nil:
		return nil, w.report, fmt.Errorf("%w: root condition is false", ErrRootFailed)
	}
	return node, w.report, nil
}

func (b *Builder) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, RunID: b.runID}
}
