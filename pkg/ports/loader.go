package ports

import (
	"context"

	"github.com/aretw0/launchtree/pkg/domain"
)

// SourceLoader turns a launch fragment into its root entity.
// This allows the source format (XML, YAML, in-memory fixtures) to be decoupled.
type SourceLoader interface {
	// Load parses the fragment at path. Missing fragments return domain.ErrSourceNotFound.
	Load(path string) (domain.Entity, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for the analyze --watch mode.
type Watchable interface {
	// Watch returns a channel that receives the path of every loaded fragment that changes.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}

// SourceChecker is implemented by loaders that can tell whether a fragment
// exists without parsing it. Invocations use it to recognize the path form.
type SourceChecker interface {
	Exists(path string) bool
}
