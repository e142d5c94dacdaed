package launchtree

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/launchtree/internal/builder"
	"github.com/aretw0/launchtree/internal/command"
	"github.com/aretw0/launchtree/internal/discovery"
	"github.com/aretw0/launchtree/internal/frontend"
	"github.com/aretw0/launchtree/internal/logging"
	"github.com/aretw0/launchtree/internal/normalize"
	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/launch"
	"github.com/aretw0/launchtree/pkg/ports"
	"github.com/aretw0/launchtree/pkg/scope"
	"github.com/aretw0/launchtree/pkg/serializer"
	"github.com/google/uuid"
)

const defaultLockTTL = 30 * time.Second

// Analyzer is the high-level entry point of the library.
// It parses invocations, builds and normalizes the launch tree, and caches results.
// An Analyzer is safe for concurrent use; every analysis gets its own scope context.
type Analyzer struct {
	packages  ports.PackageResolver
	newLoader func() ports.SourceLoader
	cache     ports.ResultCache
	locker    ports.Locker
	lockTTL   time.Duration
	hooks     domain.BuildHooks
	logger    *slog.Logger
	mode      builder.Mode
	maxDepth  int
	getenv    func(string) (string, bool)
	engine    []launch.Option
}

// Option defines a functional option for configuring the Analyzer.
type Option func(*Analyzer)

// WithPackages sets the package resolver. Defaults to discovery over AMENT_PREFIX_PATH.
func WithPackages(p ports.PackageResolver) Option {
	return func(a *Analyzer) {
		a.packages = p
	}
}

// WithLoader injects a source loader shared by every analysis, bypassing the
// filesystem frontends.
func WithLoader(l ports.SourceLoader) Option {
	return func(a *Analyzer) {
		a.newLoader = func() ports.SourceLoader { return l }
	}
}

// WithCache stores analysis results in c.
func WithCache(c ports.ResultCache) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// WithLocker serializes analyses of the same invocation through l, so that
// processes sharing a cache build each tree once.
func WithLocker(l ports.Locker, ttl time.Duration) Option {
	return func(a *Analyzer) {
		a.locker = l
		if ttl > 0 {
			a.lockTTL = ttl
		}
	}
}

// WithBuildHooks registers observability hooks. Repeated calls are merged.
func WithBuildHooks(h domain.BuildHooks) Option {
	return func(a *Analyzer) {
		a.hooks = a.hooks.Merge(h)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// WithGeneric builds in generic mode, where every entity is expanded and the
// normalizer alone removes what does not belong in the output.
func WithGeneric(generic bool) Option {
	return func(a *Analyzer) {
		if generic {
			a.mode = builder.Generic
		} else {
			a.mode = builder.Classified
		}
	}
}

// WithMaxDepth bounds the nesting depth of a build. Zero keeps the builder default.
func WithMaxDepth(n int) Option {
	return func(a *Analyzer) {
		a.maxDepth = n
	}
}

// WithGetenv sets the environment lookup used by env substitutions and by
// $VARIABLES in invocations.
func WithGetenv(fn func(string) (string, bool)) Option {
	return func(a *Analyzer) {
		a.getenv = fn
	}
}

// WithEngineOptions passes options to the launch engine of every analysis.
func WithEngineOptions(opts ...launch.Option) Option {
	return func(a *Analyzer) {
		a.engine = append(a.engine, opts...)
	}
}

// New creates an Analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		lockTTL: defaultLockTTL,
		getenv:  os.LookupEnv,
		mode:    builder.Classified,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logging.NewNop()
	}
	if a.packages == nil {
		a.packages = discovery.New(discovery.WithLogger(a.logger))
	}
	if a.newLoader == nil {
		a.newLoader = func() ports.SourceLoader { return frontend.NewLoader() }
	}
	return a
}

// Analysis is the result of analyzing one invocation.
type Analysis struct {
	RunID       string               `json:"run_id"`
	Invocation  string               `json:"invocation"`
	Tree        serializer.Node      `json:"tree"`
	Diagnostics []domain.Diagnostic  `json:"diagnostics,omitempty"`
	Sources     []domain.SourceStamp `json:"sources"`
	Cached      bool                 `json:"cached,omitempty"`

	env []domain.EnvLookup
}

// Analyze parses a launch invocation ("ros2 launch demo robot.launch.xml x:=1")
// and returns its normalized tree.
//
// Invocation errors (command.ErrMalformedInvocation, discovery.ErrPackageNotFound,
// discovery.ErrFragmentNotFound, domain.ErrSourceNotFound) are returned before any
// build. When ctx is cancelled mid-build, the partial analysis is returned along
// with the error.
func (a *Analyzer) Analyze(ctx context.Context, invocation string) (*Analysis, error) {
	inv, err := command.Parse(invocation, command.WithGetenv(a.lookup), command.WithFileCheck(a.isSource))
	if err != nil {
		return nil, err
	}
	return a.analyze(ctx, inv)
}

// AnalyzeArgs is Analyze for an invocation already split into words.
func (a *Analyzer) AnalyzeArgs(ctx context.Context, words []string) (*Analysis, error) {
	inv, err := command.ParseWords(words, command.WithFileCheck(a.isSource))
	if err != nil {
		return nil, err
	}
	return a.analyze(ctx, inv)
}

func (a *Analyzer) lookup(name string) string {
	v, _ := a.getenv(name)
	return v
}

// isSource reports whether path names a fragment the configured loader can read.
func (a *Analyzer) isSource(path string) bool {
	if c, ok := a.newLoader().(ports.SourceChecker); ok {
		return c.Exists(path)
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (a *Analyzer) analyze(ctx context.Context, inv *command.Invocation) (*Analysis, error) {
	path, err := inv.Resolve(a.packages)
	if err != nil {
		return nil, err
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	key := a.cacheKey(path, inv)
	logger := a.logger.With("invocation", inv.String())

	if res := a.cached(ctx, key, inv, logger); res != nil {
		return res, nil
	}
	if a.cache != nil && a.locker != nil {
		unlock, err := a.locker.Lock(ctx, key, a.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("lock analysis: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("release analysis lock failed", "err", err)
			}
		}()
		// Another process may have stored the result while we waited.
		if res := a.cached(ctx, key, inv, logger); res != nil {
			return res, nil
		}
	}

	res, err := a.build(ctx, path, inv, logger)
	if err != nil {
		return res, err
	}
	a.store(ctx, key, res, logger)
	return res, nil
}

func (a *Analyzer) build(ctx context.Context, path string, inv *command.Invocation, logger *slog.Logger) (*Analysis, error) {
	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	engineOpts := append([]launch.Option{
		launch.WithPackages(a.packages),
		launch.WithLogger(logger),
	}, a.engine...)
	engine := launch.NewEngine(a.newLoader(), engineOpts...)
	reg := engine.NewRegistry()
	env := &envRecorder{getenv: a.getenv}
	sc := scope.NewContext(engine, scope.WithGetenv(env.lookup))

	opts := []builder.Option{
		builder.WithMode(a.mode),
		builder.WithLogger(logger),
		builder.WithHooks(a.hooks),
		builder.WithRunID(runID),
	}
	if a.maxDepth > 0 {
		opts = append(opts, builder.WithMaxDepth(a.maxDepth))
	}

	root := &launch.IncludeLaunchDescription{File: launch.Lit(path)}
	for _, arg := range inv.Arguments {
		root.Arguments = append(root.Arguments, launch.Binding{Name: arg.Name, Value: launch.Lit(arg.Value)})
	}

	tree, report, buildErr := builder.New(engine, reg, opts...).Build(ctx, sc, root)
	if tree == nil {
		return nil, buildErr
	}

	res := &Analysis{
		RunID:       runID,
		Invocation:  inv.String(),
		Diagnostics: report.Diagnostics,
		Sources:     stamps(report.Sources),
		env:         env.seen,
	}
	doc, err := serializer.Serialize(normalize.Normalize(tree, reg))
	if err != nil {
		return nil, err
	}
	res.Tree = doc
	return res, buildErr
}

func stamps(paths []string) []domain.SourceStamp {
	out := make([]domain.SourceStamp, 0, len(paths))
	for _, p := range paths {
		s := domain.SourceStamp{Path: p}
		if info, err := os.Stat(p); err == nil {
			s.Size = info.Size()
			s.ModTime = info.ModTime()
		}
		out = append(out, s)
	}
	return out
}

// fresh reports whether every stamped file still has its recorded size and
// modification time.
func fresh(sources []domain.SourceStamp) bool {
	for _, s := range sources {
		info, err := os.Stat(s.Path)
		if err != nil || info.Size() != s.Size || !info.ModTime().Equal(s.ModTime) {
			return false
		}
	}
	return true
}

// sameEnv reports whether every recorded environment read still gives the same answer.
func (a *Analyzer) sameEnv(lookups []domain.EnvLookup) bool {
	for _, l := range lookups {
		v, ok := a.getenv(l.Name)
		if ok != l.Set || v != l.Value {
			return false
		}
	}
	return true
}

// envRecorder records the first answer for every variable a build reads from
// the process environment. Overlay variables never reach it.
type envRecorder struct {
	getenv func(string) (string, bool)
	seen   []domain.EnvLookup
}

func (r *envRecorder) lookup(name string) (string, bool) {
	v, ok := r.getenv(name)
	for _, l := range r.seen {
		if l.Name == name {
			return v, ok
		}
	}
	r.seen = append(r.seen, domain.EnvLookup{Name: name, Value: v, Set: ok})
	return v, ok
}

func (a *Analyzer) cacheKey(path string, inv *command.Invocation) string {
	var packages string
	if f, ok := a.packages.(ports.Fingerprinter); ok {
		packages = f.Fingerprint()
	}
	payload, _ := json.Marshal(struct {
		Version   string             `json:"v"`
		Path      string             `json:"path"`
		Arguments []command.Argument `json:"args"`
		Mode      string             `json:"mode"`
		MaxDepth  int                `json:"max_depth"`
		Packages  string             `json:"packages"`
	}{Version, path, inv.Arguments, a.mode.String(), a.maxDepth, packages})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func (a *Analyzer) cached(ctx context.Context, key string, inv *command.Invocation, logger *slog.Logger) *Analysis {
	if a.cache == nil {
		return nil
	}
	entry, err := a.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Warn("cache read failed", "err", err)
		}
		return nil
	}
	if !fresh(entry.Sources) {
		logger.Debug("cache entry stale", "key", key)
		return nil
	}
	if !a.sameEnv(entry.Environment) {
		logger.Debug("cache entry stale: environment changed", "key", key)
		return nil
	}
	var doc serializer.Node
	if err := json.Unmarshal(entry.Document, &doc); err != nil {
		logger.Warn("cache entry unreadable", "key", key, "err", err)
		return nil
	}
	logger.Debug("cache hit", "key", key)
	return &Analysis{
		RunID:       uuid.NewString(),
		Invocation:  inv.String(),
		Tree:        doc,
		Diagnostics: entry.Diagnostics,
		Sources:     entry.Sources,
		Cached:      true,
		env:         entry.Environment,
	}
}

func (a *Analyzer) store(ctx context.Context, key string, res *Analysis, logger *slog.Logger) {
	if a.cache == nil {
		return
	}
	for _, s := range res.Sources {
		if s.ModTime.IsZero() {
			logger.Debug("result not cached: source has no file stamp", "source", s.Path)
			return
		}
	}
	doc, err := json.Marshal(res.Tree)
	if err != nil {
		logger.Warn("cache encode failed", "err", err)
		return
	}
	entry := &domain.CacheEntry{
		Document:    doc,
		Sources:     res.Sources,
		Environment: res.env,
		Diagnostics: res.Diagnostics,
		CreatedAt:   time.Now(),
	}
	if err := a.cache.Put(ctx, key, entry); err != nil {
		logger.Warn("cache write failed", "err", err)
	}
}
