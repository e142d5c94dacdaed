// Package registry provides the entity classifier: a table from entity family to
// build behavior, attribute extractor, scope boundary and normalization flags.
package registry
