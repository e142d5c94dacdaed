package launchtree

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the release of the analyzer. It is part of every cache key, so
// results cached by another release are never reused.
var Version = strings.TrimSpace(version)
