// Package serializer turns normalized launch trees into stable documents.
//
// Every node becomes an object with "type" first, then the family fields in
// extraction order, then "children". Spliced nodes are flattened into their
// parent and ignored nodes disappear, so the output never shows transparent
// wrappers.
package serializer
