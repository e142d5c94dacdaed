package domain

// Family is the discriminant used to classify entities.
// It doubles as the "type" tag of serialized nodes.
type Family string

// Token is one element of a substitution.
// Concrete tokens are defined by the collaborator engine.
type Token interface {
	// Describe renders the token in its source notation, e.g. "$(var x)".
	Describe() string
}

// Substitution is a deferred textual expression, resolved against the scope
// in effect when the enclosing entity is extracted.
type Substitution []Token

// Describe renders the whole substitution in its source notation.
func (s Substitution) Describe() string {
	out := ""
	for _, tok := range s {
		out += tok.Describe()
	}
	return out
}

// IsZero reports whether the substitution has no tokens.
func (s Substitution) IsZero() bool {
	return len(s) == 0
}

// Condition is the predicate attached to an entity ("if" or "unless").
type Condition struct {
	Expr   Substitution
	Unless bool
}

// Entity is a node of the hierarchy handed to the builder.
// It is owned by the collaborator engine; the core only references it.
type Entity interface {
	Family() Family
	// Condition returns nil when the entity is unconditional.
	Condition() *Condition
}

// Expansion is the result of visiting an entity.
type Expansion struct {
	// Entities are the children in document order. Nil means none were produced.
	Entities []Entity

	// Source names the fragment loaded by this expansion, if any.
	// The builder uses it to detect include cycles.
	Source string

	// Resolved holds values computed while expanding (e.g. the include path)
	// so extractors do not have to resolve them twice.
	Resolved map[string]string
}
