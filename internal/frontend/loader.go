package frontend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/launch"
	"github.com/aretw0/launchtree/pkg/ports"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 200 * time.Millisecond

// Loader reads launch files from the filesystem.
// It remembers every path it loaded so Watch can report changes to them.
type Loader struct {
	mu       sync.Mutex
	loaded   map[string]struct{}
	debounce time.Duration
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithDebounce sets the quiet period Watch waits before reporting a change.
func WithDebounce(d time.Duration) LoaderOption {
	return func(l *Loader) {
		if d > 0 {
			l.debounce = d
		}
	}
}

// NewLoader creates a filesystem loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{loaded: make(map[string]struct{}), debounce: defaultDebounce}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var (
	_ ports.SourceLoader  = (*Loader)(nil)
	_ ports.SourceChecker = (*Loader)(nil)
	_ ports.Watchable     = (*Loader)(nil)
)

// Exists reports whether path is a regular file.
func (l *Loader) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Load implements ports.SourceLoader.
func (l *Loader) Load(path string) (domain.Entity, error) {
	path = filepath.Clean(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	desc, err := Parse(path, data)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.loaded[path] = struct{}{}
	l.mu.Unlock()
	return desc, nil
}

// Track marks paths as loaded without reading them, so Watch reports their changes.
func (l *Loader) Track(paths ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range paths {
		l.loaded[filepath.Clean(p)] = struct{}{}
	}
}

// Loaded returns the sorted paths read so far.
func (l *Loader) Loaded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.loaded))
	for p := range l.loaded {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Parse decodes a launch file, choosing the format from the extension.
// Files with an unknown extension are sniffed for XML.
func Parse(path string, data []byte) (*launch.LaunchDescription, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".launch":
		return ParseXML(path, data)
	case ".yaml", ".yml":
		return ParseYAML(path, data)
	case ".py":
		return nil, fmt.Errorf("%w: %s (python launch files are not evaluated)", ErrUnsupportedFormat, path)
	}
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("<")) {
		return ParseXML(path, data)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// ParseXML decodes an XML launch file.
func ParseXML(path string, data []byte) (*launch.LaunchDescription, error) {
	root, err := xmlToMap(path, data)
	if err != nil {
		return nil, err
	}
	return (&decoder{path: path}).decodeDescription(root)
}

// ParseYAML decodes a YAML launch file.
func ParseYAML(path string, data []byte) (*launch.LaunchDescription, error) {
	root, err := yamlToMap(path, data)
	if err != nil {
		return nil, err
	}
	return (&decoder{path: path}).decodeDescription(root)
}

// Watch implements ports.Watchable. It reports the path of every loaded file
// that is written, created or renamed, coalescing bursts of events.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	paths := l.Loaded()
	if len(paths) == 0 {
		return nil, errors.New("watch: no launch files loaded")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	watched := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		watched[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close() //nolint:errcheck
			return nil, fmt.Errorf("watch: add %s: %w", dir, err)
		}
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		defer fsw.Close() //nolint:errcheck

		pending := make(map[string]struct{})
		timer := time.NewTimer(l.debounce)
		timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-fsw.Events:
				if !ok {
					return
				}
				if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Rename) {
					continue
				}
				if _, ok := watched[filepath.Clean(evt.Name)]; !ok {
					continue
				}
				pending[filepath.Clean(evt.Name)] = struct{}{}
				timer.Reset(l.debounce)
			case _, ok := <-fsw.Errors:
				if !ok {
					return
				}
			case <-timer.C:
				changed := make([]string, 0, len(pending))
				for p := range pending {
					changed = append(changed, p)
				}
				sort.Strings(changed)
				clear(pending)
				for _, p := range changed {
					select {
					case ch <- p:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return ch, nil
}
