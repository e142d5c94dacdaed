package ports

import (
	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/scope"
)

// Engine is the collaborator that understands a concrete launch language.
// The builder calls it to expand entities; the scope context calls it to resolve
// substitutions and conditions.
type Engine interface {
	scope.Resolver

	// Expand visits an entity with the current scope and returns its children.
	// It may mutate the scope (bind variables, set environment values).
	// A nil expansion or nil Entities means the entity produced no children.
	Expand(c *scope.Context, e domain.Entity) (*domain.Expansion, error)
}
