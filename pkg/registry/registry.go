package registry

import (
	"slices"
	"sync"

	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/scope"
)

// Extractor resolves the attributes of a Structural or Leaf entity.
// It runs after the entity's scope is entered and its children are built.
// The expansion is nil for entities that were not expanded.
type Extractor func(c *scope.Context, e domain.Entity, x *domain.Expansion) (domain.Attributes, error)

// ScopeFunc returns the scope boundary an entity opens around its expansion.
// A frame with an empty mask means no boundary.
type ScopeFunc func(c *scope.Context, e domain.Entity) (scope.Frame, error)

// Registration describes how one entity family is built and normalized.
type Registration struct {
	Behavior domain.Behavior
	Extract  Extractor
	// Visit asks the builder to expand an Ignored entity for its scope side effects.
	// Ignored entities without Visit are skipped entirely.
	Visit bool
	Scope ScopeFunc

	// Container families are dropped by the normalizer when left without children.
	Container bool
	// Transparent families are replaced by their children during normalization.
	Transparent bool
	// Invalid families never appear in a normalized tree.
	Invalid bool
}

// Registry maps entity families to their registrations.
// It is safe for concurrent reads once populated.
type Registry struct {
	mu       sync.RWMutex
	families map[domain.Family]Registration
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		families: make(map[domain.Family]Registration),
	}
}

// Register adds a family to the registry.
// If the family is already registered, it is overwritten.
func (r *Registry) Register(family domain.Family, reg Registration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.families[family] = reg
}

// Lookup returns the registration of a family.
func (r *Registry) Lookup(family domain.Family) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.families[family]
	return reg, ok
}

// Classify returns the registration for an entity.
// Unregistered families classify as Ignored and are not visited.
func (r *Registry) Classify(e domain.Entity) Registration {
	reg, _ := r.Lookup(e.Family())
	return reg
}

// Families returns the registered families in lexical order.
func (r *Registry) Families() []domain.Family {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Family, 0, len(r.families))
	for f := range r.families {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := NewRegistry()
	for f, reg := range r.families {
		out.families[f] = reg
	}
	return out
}
