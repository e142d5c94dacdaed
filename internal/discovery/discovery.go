package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/aretw0/launchtree/internal/logging"
	"github.com/aretw0/launchtree/pkg/ports"
	"github.com/bmatcuk/doublestar/v4"
)

var (
	// ErrPackageNotFound is returned when no prefix provides the package.
	ErrPackageNotFound = errors.New("package not found")
	// ErrFragmentNotFound is returned when the package has no file with the requested name.
	ErrFragmentNotFound = errors.New("launch fragment not found")
	// ErrAmbiguousFragment is returned when several files under the share directory match.
	ErrAmbiguousFragment = errors.New("ambiguous launch fragment")
	// ErrSymlinkLoop is returned when a symlink chain does not end.
	ErrSymlinkLoop = errors.New("too many levels of symbolic links")
)

// maxSymlinkHops bounds ResolveSymlink.
const maxSymlinkHops = 40

const resourceIndex = "share/ament_index/resource_index/packages"

var installLayout = regexp.MustCompile(`install/([^/]+)/share/([^/]+)(/|$)`)

// Resolver implements ports.PackageResolver over ament install prefixes.
type Resolver struct {
	prefixes []string
	logger   *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPrefixes adds install prefixes searched after AMENT_PREFIX_PATH.
func WithPrefixes(prefixes ...string) Option {
	return func(r *Resolver) {
		r.prefixes = append(r.prefixes, prefixes...)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithEnvironment replaces the prefixes with those listed in value (AMENT_PREFIX_PATH syntax).
func WithEnvironment(value string) Option {
	return func(r *Resolver) {
		r.prefixes = splitPrefixes(value)
	}
}

// New creates a Resolver. Prefixes come from AMENT_PREFIX_PATH unless WithEnvironment is given.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		prefixes: splitPrefixes(os.Getenv("AMENT_PREFIX_PATH")),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var (
	_ ports.PackageResolver = (*Resolver)(nil)
	_ ports.Fingerprinter   = (*Resolver)(nil)
)

// Fingerprint identifies the prefixes searched, in order.
func (r *Resolver) Fingerprint() string {
	return strings.Join(r.prefixes, string(os.PathListSeparator))
}

func splitPrefixes(value string) []string {
	var out []string
	for _, p := range filepath.SplitList(value) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, filepath.Clean(p))
		}
	}
	return out
}

// Prefixes returns the searched prefixes, in order.
func (r *Resolver) Prefixes() []string {
	return append([]string(nil), r.prefixes...)
}

// PackagePrefix returns the first prefix whose resource index lists pkg.
func (r *Resolver) PackagePrefix(pkg string) (string, error) {
	if pkg == "" || strings.ContainsAny(pkg, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrPackageNotFound, pkg)
	}
	for _, prefix := range r.prefixes {
		marker := filepath.Join(prefix, filepath.FromSlash(resourceIndex), pkg)
		if info, err := os.Stat(marker); err == nil && !info.IsDir() {
			return prefix, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrPackageNotFound, pkg)
}

// PackageShare returns <prefix>/share/<pkg>.
func (r *Resolver) PackageShare(pkg string) (string, error) {
	prefix, err := r.PackagePrefix(pkg)
	if err != nil {
		return "", err
	}
	return filepath.Join(prefix, "share", pkg), nil
}

// ResolveFragment searches the share directory of pkg for a file called name.
// A name containing a slash is matched as a path relative to the share directory.
func (r *Resolver) ResolveFragment(pkg, name string) (string, error) {
	share, err := r.PackageShare(pkg)
	if err != nil {
		return "", err
	}
	if strings.Contains(name, "/") {
		path := filepath.Join(share, filepath.FromSlash(name))
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s in package %s", ErrFragmentNotFound, name, pkg)
		}
		return path, nil
	}

	pattern := "**/" + escapeMeta(name)
	matches, err := doublestar.Glob(os.DirFS(share), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return "", fmt.Errorf("search %s: %w", share, err)
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s in package %s", ErrFragmentNotFound, name, pkg)
	case 1:
		return filepath.Join(share, filepath.FromSlash(matches[0])), nil
	default:
		sort.Strings(matches)
		return "", fmt.Errorf("%w: %s in package %s matches %s", ErrAmbiguousFragment, name, pkg, strings.Join(matches, ", "))
	}
}

// ResolveSymlink follows a chain of symbolic links. Relative targets are resolved
// against the directory of the link. Paths that are not links are returned unchanged.
func (r *Resolver) ResolveSymlink(path string) (string, error) {
	for range maxSymlinkHops {
		info, err := os.Lstat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return path, nil
			}
			return "", err
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			return path, nil
		}
		target, err := os.Readlink(path)
		if err != nil {
			return "", err
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		r.logger.Debug("followed symlink", "link", path, "target", target)
		path = filepath.Clean(target)
	}
	return "", fmt.Errorf("%w: %s", ErrSymlinkLoop, path)
}

// PackageOf returns the package owning path. The colcon install layout
// (install/<pkg>/share/<pkg>) is recognized first, then the share directories
// of the configured prefixes.
func (r *Resolver) PackageOf(path string) string {
	slashed := filepath.ToSlash(path)
	if m := installLayout.FindStringSubmatch(slashed); m != nil && m[1] == m[2] {
		return m[1]
	}
	for _, prefix := range r.prefixes {
		share := filepath.ToSlash(filepath.Join(prefix, "share")) + "/"
		rest, ok := strings.CutPrefix(slashed, share)
		if !ok {
			continue
		}
		pkg, _, _ := strings.Cut(rest, "/")
		if pkg != "" && pkg != "ament_index" {
			return pkg
		}
	}
	return ""
}

func escapeMeta(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`*?[]{}\`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
