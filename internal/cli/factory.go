package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/launchtree"
	"github.com/aretw0/launchtree/internal/adapters/file"
	"github.com/aretw0/launchtree/internal/config"
	"github.com/aretw0/launchtree/internal/discovery"
	"github.com/aretw0/launchtree/internal/logging"
	"github.com/aretw0/launchtree/pkg/adapters/redis"
	"github.com/aretw0/launchtree/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// Overrides are command-line values applied on top of the loaded config.
// Nil fields leave the config value untouched.
type Overrides struct {
	LogLevel  *string
	LogFormat *string
	Format    *string
	Generic   *bool
	MaxDepth  *int
	CacheDir  *string
	RedisURL  *string
	Addr      *string
	Transport *string
	Port      *int
}

// LoadConfig loads the config file and environment, then applies o.
func LoadConfig(path string, o Overrides) (*config.Config, string, error) {
	cfg, used, err := config.Load(config.LoadOptions{Path: path})
	if err != nil {
		return nil, "", err
	}
	o.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, used, nil
}

func (o Overrides) apply(cfg *config.Config) {
	set(&cfg.Log.Level, o.LogLevel)
	set(&cfg.Log.Format, o.LogFormat)
	set(&cfg.Analyze.Format, o.Format)
	set(&cfg.Analyze.Generic, o.Generic)
	set(&cfg.Analyze.MaxDepth, o.MaxDepth)
	set(&cfg.Server.Addr, o.Addr)
	set(&cfg.MCP.Transport, o.Transport)
	set(&cfg.MCP.Port, o.Port)
	if o.CacheDir != nil {
		cfg.Cache.Enabled, cfg.Cache.Dir = true, *o.CacheDir
	}
	if o.RedisURL != nil {
		cfg.Cache.Enabled, cfg.Cache.RedisURL = true, *o.RedisURL
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// NewLogger builds the application logger described by cfg, writing to w.
func NewLogger(w io.Writer, cfg config.Log) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	return logging.NewWith(w, level, format), nil
}

// Env bundles an Analyzer with the resources it holds.
type Env struct {
	Analyzer *launchtree.Analyzer
	Logger   *slog.Logger
	Registry *prometheus.Registry
	closers  []io.Closer
}

// Close releases the cache connections.
func (e *Env) Close() error {
	var errs []error
	for _, c := range e.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// NewEnv wires an Analyzer from cfg.
// When metrics is true, build metrics are recorded into Env.Registry.
func NewEnv(cfg *config.Config, logger *slog.Logger, metrics bool, extra ...launchtree.Option) (*Env, error) {
	env := &Env{Logger: logger}

	resolverOpts := []discovery.Option{discovery.WithLogger(logger)}
	if len(cfg.Discovery.Prefixes) > 0 {
		resolverOpts = append(resolverOpts, discovery.WithPrefixes(cfg.Discovery.Prefixes...))
	}

	opts := []launchtree.Option{
		launchtree.WithPackages(discovery.New(resolverOpts...)),
		launchtree.WithLogger(logger),
		launchtree.WithGeneric(cfg.Analyze.Generic),
		launchtree.WithMaxDepth(cfg.Analyze.MaxDepth),
		launchtree.WithBuildHooks(observability.LogHooks(logger)),
	}
	if metrics {
		env.Registry = prometheus.NewRegistry()
		opts = append(opts, launchtree.WithBuildHooks(observability.NewMetrics(env.Registry).Hooks()))
	}

	if cfg.Cache.Enabled {
		switch {
		case cfg.Cache.RedisURL != "":
			c, err := redis.New(cfg.Cache.RedisURL, redis.WithTTL(cfg.Cache.TTL))
			if err != nil {
				return nil, fmt.Errorf("cache: %w", err)
			}
			env.closers = append(env.closers, c)
			opts = append(opts,
				launchtree.WithCache(c),
				launchtree.WithLocker(redis.NewLocker(c.Client(), "launchtree:"), 0),
			)
			logger.Debug("using redis cache")
		default:
			c := file.New(cfg.Cache.Dir)
			opts = append(opts, launchtree.WithCache(c))
			logger.Debug("using file cache", "dir", c.BasePath)
		}
	}

	env.Analyzer = launchtree.New(append(opts, extra...)...)
	return env, nil
}
