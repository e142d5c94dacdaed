package builder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/registry"
	"github.com/aretw0/launchtree/pkg/scope"
)

// walk holds the state of one build.
type walk struct {
	b      *Builder
	ctx    context.Context
	sc     *scope.Context
	open   map[string]bool
	seen   map[string]bool
	report *Report
	// fatal aborts the walk. Once set, no further entity is visited.
	fatal error
}

type locatable interface {
	Location() string
}

func location(e domain.Entity) string {
	if l, ok := e.(locatable); ok {
		return l.Location()
	}
	return ""
}

// build processes one entity and records its failure, if any.
// A nil node with a nil error means the entity is absent.
func (w *walk) build(e domain.Entity, depth int) (*domain.TreeNode, error) {
	if w.fatal != nil {
		return nil, w.fatal
	}
	w.report.Visited++
	start := time.Now()
	reg := w.b.registry.Classify(e)
	hooks := w.b.hooks
	ev := func(t domain.EventType, err error) *domain.EntityEvent {
		return &domain.EntityEvent{
			EventBase: w.b.event(t),
			Family:    e.Family(),
			Behavior:  reg.Behavior,
			Depth:     depth,
			Source:    location(e),
			Err:       err,
			Duration:  time.Since(start),
		}
	}

	if hooks.OnEntityEnter != nil {
		hooks.OnEntityEnter(w.ctx, ev(domain.EventEntityEnter, nil))
	}
	node, err := w.visit(e, reg, depth)
	if err != nil {
		if w.fatal != nil {
			return nil, err
		}
		if errors.Is(err, scope.ErrScopeUnderflow) {
			w.fatal = err
		}
		w.report.Failed++
		diag := domain.Diagnostic{
			Family:  e.Family(),
			Source:  location(e),
			Depth:   depth,
			Message: err.Error(),
		}
		w.report.Diagnostics = append(w.report.Diagnostics, diag)
		w.b.logger.Warn("entity failed", "family", diag.Family, "source", diag.Source, "depth", depth, "err", err)
		if hooks.OnEntityFailed != nil {
			hooks.OnEntityFailed(w.ctx, ev(domain.EventEntityFailed, err))
		}
		return nil, err
	}
	if hooks.OnEntityLeave != nil {
		hooks.OnEntityLeave(w.ctx, ev(domain.EventEntityLeave, nil))
	}
	return node, nil
}

// visit runs the per-entity algorithm: condition, scope, expansion, children, extraction.
func (w *walk) visit(e domain.Entity, reg registry.Registration, depth int) (node *domain.TreeNode, err error) {
	defer func() {
		if r := recover(); r != nil {
			node, err = nil, fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	if depth > w.b.maxDepth {
		return nil, fmt.Errorf("%w (%d)", ErrMaxDepth, w.b.maxDepth)
	}

	ok, err := w.sc.EvaluateCondition(e.Condition())
	if err != nil {
		return nil, fmt.Errorf("evaluate condition: %w", err)
	}
	if !ok {
		return nil, nil
	}

	_, known := w.b.registry.Lookup(e.Family())
	behavior := reg.Behavior
	expand := known && (reg.Behavior != domain.BehaviorIgnored || reg.Visit)
	if w.b.mode == Generic {
		behavior = domain.BehaviorStructural
	} else if reg.Behavior == domain.BehaviorIgnored && !reg.Visit {
		return &domain.TreeNode{Family: e.Family(), Behavior: domain.BehaviorIgnored}, nil
	}

	if reg.Scope != nil {
		frame, ferr := reg.Scope(w.sc, e)
		if ferr != nil {
			return nil, fmt.Errorf("enter scope: %w", ferr)
		}
		if frame.Mask != scope.None {
			leave := w.sc.Enter(frame)
			defer func() {
				if lerr := leave(); lerr != nil {
					w.fatal = lerr
					node, err = nil, lerr
				}
			}()
		}
	}

	node = &domain.TreeNode{Family: e.Family(), Behavior: behavior}
	if !expand {
		return w.extract(node, e, reg, nil)
	}

	x, err := w.b.engine.Expand(w.sc, e)
	if err != nil {
		return nil, fmt.Errorf("expand: %w", err)
	}
	if x == nil {
		return w.extract(node, e, reg, nil)
	}

	if x.Source != "" {
		if w.open[x.Source] {
			return nil, fmt.Errorf("%w: %s", ErrIncludeCycle, x.Source)
		}
		w.open[x.Source] = true
		defer delete(w.open, x.Source)
		if !w.seen[x.Source] {
			w.seen[x.Source] = true
			w.report.Sources = append(w.report.Sources, x.Source)
		}
	}

	for _, child := range x.Entities {
		if w.ctx.Err() != nil {
			w.report.Interrupted = true
			break
		}
		c, cerr := w.build(child, depth+1)
		if w.fatal != nil {
			return nil, w.fatal
		}
		if cerr != nil || c == nil {
			continue
		}
		node.Children = append(node.Children, c)
	}

	return w.extract(node, e, reg, x)
}

func (w *walk) extract(node *domain.TreeNode, e domain.Entity, reg registry.Registration, x *domain.Expansion) (*domain.TreeNode, error) {
	if reg.Extract == nil || !(node.Behavior.Labeled() || w.b.mode == Generic) {
		return node, nil
	}
	attrs, err := reg.Extract(w.sc, e, x)
	if err != nil {
		return nil, fmt.Errorf("extract attributes: %w", err)
	}
	node.Attributes = attrs
	return node, nil
}
