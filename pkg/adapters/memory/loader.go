package memory

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/launch"
	"github.com/aretw0/launchtree/pkg/ports"
)

// Loader implements ports.SourceLoader using an in-memory map of fragments.
// It is used for tests and for embedding launch descriptions built in Go.
type Loader struct {
	mu      sync.RWMutex
	sources map[string]domain.Entity
}

var (
	_ ports.SourceLoader  = (*Loader)(nil)
	_ ports.SourceChecker = (*Loader)(nil)
)

// NewLoader creates a new Loader with the provided fragments, keyed by path.
func NewLoader(sources map[string]domain.Entity) *Loader {
	l := &Loader{sources: make(map[string]domain.Entity, len(sources))}
	for path, ent := range sources {
		l.sources[filepath.Clean(path)] = ent
	}
	return l
}

// NewFromDescriptions creates a new Loader from launch descriptions.
// Every description must carry its Path.
func NewFromDescriptions(descs ...*launch.LaunchDescription) (*Loader, error) {
	sources := make(map[string]domain.Entity, len(descs))
	for _, d := range descs {
		if d.Path == "" {
			return nil, fmt.Errorf("launch description missing path")
		}
		if _, dup := sources[filepath.Clean(d.Path)]; dup {
			return nil, fmt.Errorf("duplicate launch description %s", d.Path)
		}
		sources[filepath.Clean(d.Path)] = d
	}
	return &Loader{sources: sources}, nil
}

// Add registers or replaces a fragment.
func (l *Loader) Add(path string, ent domain.Entity) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sources[filepath.Clean(path)] = ent
}

// Load returns the fragment stored under path.
func (l *Loader) Load(path string) (domain.Entity, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ent, ok := l.sources[filepath.Clean(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSourceNotFound, path)
	}
	return ent, nil
}

// Exists implements ports.SourceChecker.
func (l *Loader) Exists(path string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.sources[filepath.Clean(path)]
	return ok
}

// Paths returns all available fragment paths.
func (l *Loader) Paths() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	keys := make([]string, 0, len(l.sources))
	for k := range l.sources {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys
}
