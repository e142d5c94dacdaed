package scope

import (
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"strings"

	"github.com/aretw0/launchtree/pkg/domain"
)

// ErrScopeUnderflow is returned when a pop has no matching push inside the current scope.
var ErrScopeUnderflow = errors.New("scope underflow")

// Mask selects the overlays a scope boundary pushes.
type Mask uint8

const (
	Variables Mask = 1 << iota
	Environment
	Namespace
	Parameters
	Remaps

	None Mask = 0
	All       = Variables | Environment | Namespace | Parameters | Remaps
)

// Has reports whether every overlay in o is part of m.
func (m Mask) Has(o Mask) bool {
	return m&o == o
}

func (m Mask) String() string {
	if m == None {
		return "none"
	}
	var parts []string
	for _, item := range []struct {
		mask Mask
		name string
	}{
		{Variables, "variables"},
		{Environment, "environment"},
		{Namespace, "namespace"},
		{Parameters, "parameters"},
		{Remaps, "remaps"},
	} {
		if m.Has(item.mask) {
			parts = append(parts, item.name)
		}
	}
	return strings.Join(parts, "|")
}

// Resolver resolves substitutions and conditions against a Context.
// It is implemented by the collaborator engine.
type Resolver interface {
	ResolveSubstitution(c *Context, s domain.Substitution) (string, error)
	EvaluateCondition(c *Context, cond *domain.Condition) (bool, error)
}

// Frame describes a scope boundary.
type Frame struct {
	Mask Mask
	// Isolated hides the outer variable bindings inside the scope.
	// It only applies when Mask includes Variables.
	Isolated bool
	// Bindings are bound in the new variable frame. They must be resolved
	// before entering, since an isolated frame hides the outer bindings.
	Bindings map[string]string
	// Namespace is joined onto the current namespace after the push.
	// It only applies when Mask includes Namespace.
	Namespace string
}

// Remap is one topic or service name remapping.
type Remap struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Depths is a snapshot of the size of every stack.
type Depths struct {
	Variables   int
	Environment int
	Namespace   int
	Parameters  int
	Remaps      int
}

type varFrame struct {
	values   map[string]string
	isolated bool
}

// envFrame maps a name to its value; a nil pointer marks the variable unset.
type envFrame map[string]*string

// Context is the mutable scope state of one build.
type Context struct {
	resolver Resolver
	getenv   func(string) (string, bool)
	seed     uint64

	vars   []varFrame
	env    []envFrame
	ns     []string
	params []domain.Attributes
	remaps [][]Remap

	// floors protect frames pushed by Enter from explicit pops.
	floors Depths

	containers map[string]string
	anon       map[string]string
}

// Option configures a Context.
type Option func(*Context)

// WithGetenv replaces the process environment used as the bottom environment layer.
func WithGetenv(fn func(string) (string, bool)) Option {
	return func(c *Context) {
		c.getenv = fn
	}
}

// WithSeed sets the seed used to derive anonymous names.
func WithSeed(seed uint64) Option {
	return func(c *Context) {
		c.seed = seed
	}
}

// WithVariables binds initial launch configurations in the bottom frame.
func WithVariables(vars map[string]string) Option {
	return func(c *Context) {
		for k, v := range vars {
			c.vars[0].values[k] = v
		}
	}
}

// NewContext creates the scope state for one build.
func NewContext(resolver Resolver, opts ...Option) *Context {
	c := &Context{
		resolver:   resolver,
		getenv:     os.LookupEnv,
		vars:       []varFrame{{values: map[string]string{}}},
		env:        []envFrame{{}},
		ns:         []string{""},
		params:     []domain.Attributes{nil},
		remaps:     [][]Remap{nil},
		floors:     Depths{Variables: 1, Environment: 1, Namespace: 1, Parameters: 1, Remaps: 1},
		containers: map[string]string{},
		anon:       map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Depths returns the current size of every stack.
func (c *Context) Depths() Depths {
	return Depths{
		Variables:   len(c.vars),
		Environment: len(c.env),
		Namespace:   len(c.ns),
		Parameters:  len(c.params),
		Remaps:      len(c.remaps),
	}
}

// Enter pushes the overlays selected by f and returns the function that restores them.
// Stacks are truncated back to their depth at entry, which also discards frames pushed
// explicitly inside the scope and never popped. Pops inside the scope cannot go below
// the frames pushed here.
func (c *Context) Enter(f Frame) (leave func() error) {
	entry := c.Depths()
	floors := c.floors

	if f.Mask.Has(Variables) {
		c.PushVariables(!f.Isolated)
		c.floors.Variables = len(c.vars)
		for k, v := range f.Bindings {
			c.Bind(k, v)
		}
	}
	if f.Mask.Has(Environment) {
		c.PushEnvironment()
		c.floors.Environment = len(c.env)
	}
	if f.Mask.Has(Namespace) {
		c.PushNamespace(f.Namespace)
		c.floors.Namespace = len(c.ns)
	}
	if f.Mask.Has(Parameters) {
		c.PushParameters(nil)
		c.floors.Parameters = len(c.params)
	}
	if f.Mask.Has(Remaps) {
		c.PushRemaps()
		c.floors.Remaps = len(c.remaps)
	}

	done := false
	return func() error {
		if done {
			return nil
		}
		done = true
		if err := c.checkEntry(f.Mask, entry); err != nil {
			return err
		}
		if f.Mask.Has(Variables) {
			c.vars = c.vars[:entry.Variables]
		}
		if f.Mask.Has(Environment) {
			c.env = c.env[:entry.Environment]
		}
		if f.Mask.Has(Namespace) {
			c.ns = c.ns[:entry.Namespace]
		}
		if f.Mask.Has(Parameters) {
			c.params = c.params[:entry.Parameters]
		}
		if f.Mask.Has(Remaps) {
			c.remaps = c.remaps[:entry.Remaps]
		}
		c.floors = floors
		return nil
	}
}

func (c *Context) checkEntry(mask Mask, entry Depths) error {
	now := c.Depths()
	for _, item := range []struct {
		mask       Mask
		now, entry int
	}{
		{Variables, now.Variables, entry.Variables},
		{Environment, now.Environment, entry.Environment},
		{Namespace, now.Namespace, entry.Namespace},
		{Parameters, now.Parameters, entry.Parameters},
		{Remaps, now.Remaps, entry.Remaps},
	} {
		if mask.Has(item.mask) && item.now <= item.entry {
			return fmt.Errorf("%w: %s frame popped before leaving scope", ErrScopeUnderflow, item.mask)
		}
	}
	return nil
}

// ResolveSubstitution resolves s with the current overlay state.
func (c *Context) ResolveSubstitution(s domain.Substitution) (string, error) {
	if c.resolver == nil {
		return "", errors.New("scope: no resolver configured")
	}
	return c.resolver.ResolveSubstitution(c, s)
}

// EvaluateCondition evaluates cond with the current overlay state. A nil condition is true.
func (c *Context) EvaluateCondition(cond *domain.Condition) (bool, error) {
	if cond == nil {
		return true, nil
	}
	if c.resolver == nil {
		return false, errors.New("scope: no resolver configured")
	}
	return c.resolver.EvaluateCondition(c, cond)
}

// DeclareContainer records a composable node container by local and fully qualified name.
// The table is build-wide and not affected by scopes.
func (c *Context) DeclareContainer(name, fqn string) {
	if name != "" {
		c.containers[name] = fqn
	}
	if fqn != "" {
		c.containers[fqn] = fqn
	}
}

// LookupContainer returns the fully qualified name of a declared container.
func (c *Context) LookupContainer(name string) (string, bool) {
	fqn, ok := c.containers[name]
	if !ok && !strings.HasPrefix(name, "/") {
		fqn, ok = c.containers[JoinNamespace(c.Namespace(), name)]
	}
	return fqn, ok
}

// Anon returns an anonymous name derived from name, stable for the life of the Context.
func (c *Context) Anon(name string) string {
	if v, ok := c.anon[name]; ok {
		return v
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%d/%s", c.seed, name)
	v := fmt.Sprintf("_anon_%s_%08x", name, uint32(h.Sum64()))
	c.anon[name] = v
	return v
}
