package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/launchtree/internal/logging"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

const (
	// AppName names the config directory.
	AppName = "launchtree"
	// LocalFileName is looked up in the working directory.
	LocalFileName = ".launchtree.yaml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "LAUNCHTREE_"
)

var (
	// ErrInvalidConfig is returned when a setting has an unusable value.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrConfigNotFound is returned when an explicit config file does not exist.
	ErrConfigNotFound = errors.New("config file not found")
)

// Output formats accepted by Analyze.Format.
var Formats = []string{"json", "yaml", "tree", "mermaid", "markdown"}

type (
	// Config is the full set of settings.
	Config struct {
		Log       Log       `mapstructure:"log" yaml:"log"`
		Analyze   Analyze   `mapstructure:"analyze" yaml:"analyze"`
		Discovery Discovery `mapstructure:"discovery" yaml:"discovery"`
		Cache     Cache     `mapstructure:"cache" yaml:"cache"`
		Server    Server    `mapstructure:"server" yaml:"server"`
		MCP       MCP       `mapstructure:"mcp" yaml:"mcp"`
	}

	// Log configures the slog logger.
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	}

	// Analyze configures tree builds.
	Analyze struct {
		Format   string        `mapstructure:"format" yaml:"format"`
		Generic  bool          `mapstructure:"generic" yaml:"generic"`
		MaxDepth int           `mapstructure:"max_depth" yaml:"max_depth"`
		Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
	}

	// Discovery configures package lookup. Empty Prefixes means $AMENT_PREFIX_PATH.
	Discovery struct {
		Prefixes []string `mapstructure:"prefixes" yaml:"prefixes"`
	}

	// Cache configures result caching. RedisURL takes precedence over Dir.
	Cache struct {
		Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
		Dir      string        `mapstructure:"dir" yaml:"dir"`
		RedisURL string        `mapstructure:"redis_url" yaml:"redis_url"`
		TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
	}

	// Server configures the HTTP API.
	Server struct {
		Addr            string        `mapstructure:"addr" yaml:"addr"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	}

	// MCP configures the MCP server.
	MCP struct {
		Transport string `mapstructure:"transport" yaml:"transport"`
		Port      int    `mapstructure:"port" yaml:"port"`
	}
)

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log:     Log{Level: "info", Format: string(logging.FormatText)},
		Analyze: Analyze{Format: "json", MaxDepth: 64, Debounce: 200 * time.Millisecond},
		Cache:   Cache{TTL: 24 * time.Hour},
		Server:  Server{Addr: ":8080", ShutdownTimeout: 5 * time.Second},
		MCP:     MCP{Transport: "stdio", Port: 8080},
	}
}

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	// Path is an explicit config file. It must exist.
	Path string
	// WorkDir is searched for LocalFileName. Defaults to the working directory.
	WorkDir string
	// ConfigDir replaces $XDG_CONFIG_HOME/launchtree.
	ConfigDir string
	// Environ replaces os.Environ.
	Environ []string
}

// Load layers defaults, the config file and the environment.
// It returns the file it read, "" when none was found.
func Load(opts LoadOptions) (*Config, string, error) {
	cfg := Default()

	path, err := findFile(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("read config: %w", err)
		}
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, "", fmt.Errorf("parse config %s: %w", path, err)
		}
		if err := decode(raw, &cfg); err != nil {
			return nil, "", fmt.Errorf("config %s: %w", path, err)
		}
	}

	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}
	if env := fromEnviron(environ); len(env) > 0 {
		if err := decode(env, &cfg); err != nil {
			return nil, "", fmt.Errorf("environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, path, nil
}

// Validate checks values that decoding cannot.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return fmt.Errorf("%w: log.format: %w", ErrInvalidConfig, err)
	}
	if !slices.Contains(Formats, c.Analyze.Format) {
		return fmt.Errorf("%w: analyze.format %q, expected one of %v", ErrInvalidConfig, c.Analyze.Format, Formats)
	}
	if c.Analyze.MaxDepth <= 0 {
		return fmt.Errorf("%w: analyze.max_depth must be positive", ErrInvalidConfig)
	}
	if c.MCP.Transport != "stdio" && c.MCP.Transport != "sse" {
		return fmt.Errorf("%w: mcp.transport %q, expected stdio or sse", ErrInvalidConfig, c.MCP.Transport)
	}
	return nil
}

// Dir returns $XDG_CONFIG_HOME/launchtree, defaulting to ~/.config/launchtree.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

func findFile(opts LoadOptions) (string, error) {
	if opts.Path != "" {
		if !fileExists(opts.Path) {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, opts.Path)
		}
		return opts.Path, nil
	}

	wd := opts.WorkDir
	if wd == "" {
		wd, _ = os.Getwd()
	}
	if p := filepath.Join(wd, LocalFileName); wd != "" && fileExists(p) {
		return p, nil
	}

	dir := opts.ConfigDir
	if dir == "" {
		var err error
		if dir, err = Dir(); err != nil {
			return "", nil
		}
	}
	if p := filepath.Join(dir, "config.yaml"); fileExists(p) {
		return p, nil
	}
	return "", nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func decode(input map[string]any, out *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// fromEnviron builds a nested settings map from LAUNCHTREE_SECTION_KEY variables.
// Only known keys are read, so unrelated variables with the prefix are ignored.
func fromEnviron(environ []string) map[string]any {
	known := map[string][2]string{}
	for _, k := range Keys() {
		section, key, _ := strings.Cut(k, ".")
		known[EnvName(k)] = [2]string{section, key}
	}

	out := map[string]any{}
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		path, ok := known[name]
		if !ok {
			continue
		}
		section, _ := out[path[0]].(map[string]any)
		if section == nil {
			section = map[string]any{}
			out[path[0]] = section
		}
		section[path[1]] = value
	}
	return out
}

// EnvName returns the environment variable overriding a "section.key" setting.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Keys lists every setting as "section.key", in declaration order.
func Keys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := range t.NumField() {
		section := t.Field(i)
		for j := range section.Type.NumField() {
			keys = append(keys, section.Tag.Get("mapstructure")+"."+section.Type.Field(j).Tag.Get("mapstructure"))
		}
	}
	return keys
}
