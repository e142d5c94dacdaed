package launch

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/ports"
	"github.com/aretw0/launchtree/pkg/scope"
)

// Resolved keys set by expansions and read by extractors.
const (
	ResolvedPath            = "path"
	ResolvedTargetContainer = "target_container"
)

// Engine expands launch entities and resolves their substitutions.
// It is stateless between calls; all build state lives in the scope.Context.
type Engine struct {
	loader   ports.SourceLoader
	packages ports.PackageResolver
	logger   *slog.Logger
	funcs    map[string]SubstitutionFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithPackages sets the resolver used by find-pkg-* substitutions, symlink
// resolution and package detection.
func WithPackages(p ports.PackageResolver) Option {
	return func(e *Engine) {
		e.packages = p
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithSubstitution registers or replaces a substitution function.
func WithSubstitution(name string, fn SubstitutionFunc) Option {
	return func(e *Engine) {
		e.funcs[name] = fn
	}
}

// NewEngine creates an engine that loads included fragments through loader.
func NewEngine(loader ports.SourceLoader, opts ...Option) *Engine {
	e := &Engine{
		loader: loader,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		funcs:  defaultSubstitutions(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ ports.Engine = (*Engine)(nil)

// Expand visits an entity. Scope actions mutate c; containers of entities return them.
func (e *Engine) Expand(c *scope.Context, ent domain.Entity) (*domain.Expansion, error) {
	switch v := ent.(type) {
	case *LaunchDescription:
		return &domain.Expansion{Entities: v.Entities}, nil
	case *IncludeLaunchDescription:
		return e.expandInclude(c, v)
	case *GroupAction:
		return e.expandGroup(v), nil
	case *TimerAction:
		return &domain.Expansion{Entities: v.Entities}, nil
	case *Node:
		return nil, nil
	case *ComposableNodeContainer:
		return e.expandContainer(c, v)
	case *LoadComposableNodes:
		return e.expandLoad(c, v)
	case *DeclareLaunchArgument:
		return nil, e.declareArgument(c, v)
	case *SetLaunchConfiguration:
		name, err := e.ResolveSubstitution(c, v.Name)
		if err != nil {
			return nil, err
		}
		value, err := e.resolveOptional(c, v.Value)
		if err != nil {
			return nil, err
		}
		c.Bind(name, value)
		return nil, nil
	case *PushLaunchConfigurations:
		c.PushVariables(true)
		return nil, nil
	case *PopLaunchConfigurations:
		return nil, c.PopVariables()
	case *SetEnvironmentVariable:
		name, err := e.ResolveSubstitution(c, v.Name)
		if err != nil {
			return nil, err
		}
		value, err := e.resolveOptional(c, v.Value)
		if err != nil {
			return nil, err
		}
		c.SetEnv(name, value)
		return nil, nil
	case *UnsetEnvironmentVariable:
		name, err := e.ResolveSubstitution(c, v.Name)
		if err != nil {
			return nil, err
		}
		c.UnsetEnv(name)
		return nil, nil
	case *PushEnvironment:
		c.PushEnvironment()
		return nil, nil
	case *PopEnvironment:
		return nil, c.PopEnvironment()
	case *PushRosNamespace:
		ns, err := e.ResolveSubstitution(c, v.Namespace)
		if err != nil {
			return nil, err
		}
		c.ApplyNamespace(ns)
		return nil, nil
	case *SetParameter:
		params, err := e.resolveParameters(c, []Parameter{{Name: v.Name, Value: v.Value, Type: v.Type}})
		if err != nil {
			return nil, err
		}
		c.AddParameters(params)
		return nil, nil
	case *SetRemap:
		from, err := e.ResolveSubstitution(c, v.From)
		if err != nil {
			return nil, err
		}
		to, err := e.ResolveSubstitution(c, v.To)
		if err != nil {
			return nil, err
		}
		c.AddRemap(from, to)
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEntity, ent.Family())
	}
}

func (e *Engine) expandInclude(c *scope.Context, inc *IncludeLaunchDescription) (*domain.Expansion, error) {
	if e.loader == nil {
		return nil, ErrNoLoader
	}
	path, err := e.ResolveSubstitution(c, inc.File)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(path) && inc.Base.File != "" {
		path = filepath.Join(filepath.Dir(inc.Base.File), path)
	}
	path = filepath.Clean(path)

	desc, err := e.loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("include %s: %w", path, err)
	}

	entities := make([]domain.Entity, 0, len(inc.Arguments)+1)
	for _, arg := range inc.Arguments {
		entities = append(entities, &SetLaunchConfiguration{
			Base:  Base{File: inc.Base.File, Line: inc.Base.Line},
			Name:  Lit(arg.Name),
			Value: arg.Value,
		})
	}
	entities = append(entities, desc)

	return &domain.Expansion{
		Entities: entities,
		Source:   e.resolveSymlink(path),
		Resolved: map[string]string{ResolvedPath: path},
	}, nil
}

func (e *Engine) expandGroup(g *GroupAction) *domain.Expansion {
	if g.Namespace.IsZero() {
		return &domain.Expansion{Entities: g.Entities}
	}
	entities := make([]domain.Entity, 0, len(g.Entities)+1)
	entities = append(entities, &PushRosNamespace{Namespace: g.Namespace})
	entities = append(entities, g.Entities...)
	return &domain.Expansion{Entities: entities}
}

func (e *Engine) expandContainer(c *scope.Context, ctr *ComposableNodeContainer) (*domain.Expansion, error) {
	name, err := e.resolveOptional(c, ctr.Name)
	if err != nil {
		return nil, err
	}
	ns, err := e.nodeNamespace(c, ctr.Namespace)
	if err != nil {
		return nil, err
	}
	fqn := scope.JoinNamespace(ns, name)
	c.DeclareContainer(name, fqn)

	if len(ctr.Nodes) == 0 {
		return nil, nil
	}
	load := &LoadComposableNodes{
		Base:   Base{File: ctr.Base.File, Line: ctr.Base.Line},
		Target: Lit(fqn),
		Nodes:  ctr.Nodes,
	}
	return &domain.Expansion{Entities: []domain.Entity{load}}, nil
}

func (e *Engine) expandLoad(c *scope.Context, load *LoadComposableNodes) (*domain.Expansion, error) {
	target, err := e.ResolveSubstitution(c, load.Target)
	if err != nil {
		return nil, err
	}
	fqn, ok := c.LookupContainer(target)
	if !ok {
		fqn = scope.JoinNamespace(c.Namespace(), target)
		e.logger.Debug("load target not declared in this launch", "target", target, "resolved", fqn)
	}
	return &domain.Expansion{Resolved: map[string]string{ResolvedTargetContainer: fqn}}, nil
}

func (e *Engine) declareArgument(c *scope.Context, d *DeclareLaunchArgument) error {
	value, ok := c.Lookup(d.Name)
	if !ok {
		if !d.HasDefault {
			return fmt.Errorf("%w: %q", ErrMissingArgument, d.Name)
		}
		def, err := e.resolveOptional(c, d.Default)
		if err != nil {
			return err
		}
		c.Bind(d.Name, def)
		value = def
	}
	if len(d.Choices) > 0 && !slices.Contains(d.Choices, value) {
		return fmt.Errorf("%w: %q=%q, choices %v", ErrInvalidChoice, d.Name, value, d.Choices)
	}
	return nil
}

// nodeNamespace joins a node's own namespace onto the current one. It is "/" when both are empty.
func (e *Engine) nodeNamespace(c *scope.Context, ns domain.Substitution) (string, error) {
	own, err := e.resolveOptional(c, ns)
	if err != nil {
		return "", err
	}
	out := scope.JoinNamespace(c.Namespace(), own)
	if out == "" {
		out = "/"
	}
	return out, nil
}

func (e *Engine) resolveSymlink(path string) string {
	if e.packages == nil {
		return path
	}
	resolved, err := e.packages.ResolveSymlink(path)
	if err != nil {
		e.logger.Debug("symlink resolution failed", "path", path, "error", err)
		return path
	}
	return resolved
}
