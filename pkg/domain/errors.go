package domain

import "errors"

var (
	// ErrCacheMiss is returned by result caches when no entry exists for a key.
	ErrCacheMiss = errors.New("cache miss")
	// ErrSourceNotFound is returned by loaders when a launch fragment does not exist.
	ErrSourceNotFound = errors.New("launch source not found")
)
