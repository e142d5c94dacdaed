// Package frontend parses launch files into launch entities.
//
// XML (.xml, .launch) and YAML (.yaml, .yml) fragments are first turned into a generic
// map shaped like the YAML launch format, then decoded into entities with mapstructure.
// Attribute values are parsed with the "$(...)" substitution grammar.
package frontend
