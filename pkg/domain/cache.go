package domain

import (
	"encoding/json"
	"time"
)

// SourceStamp identifies the version of a launch fragment read during a build.
type SourceStamp struct {
	Path    string    `json:"path" yaml:"path"`
	Size    int64     `json:"size" yaml:"size"`
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

// EnvLookup is one read of the process environment made during a build.
type EnvLookup struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
	Set   bool   `json:"set" yaml:"set"`
}

// CacheEntry is a stored analysis result.
type CacheEntry struct {
	Document    json.RawMessage `json:"document"`
	Sources     []SourceStamp   `json:"sources"`
	Environment []EnvLookup     `json:"environment,omitempty"`
	Diagnostics []Diagnostic    `json:"diagnostics,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
