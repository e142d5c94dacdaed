// Package schema provides the type system used for launch parameter values.
//
// Launch files carry every value as text. A parameter may declare a type
// ("str", "int", "float", "bool", "yaml" or "list_of_<type>"), in which case the
// resolved text is coerced before it is recorded in the tree:
//
//	v, err := schema.Coerce("rate", "int", "", "10")      // int64(10)
//	v, err = schema.Coerce("ids", "list_of_int", ";", "1;2") // []any{int64(1), int64(2)}
//
// Untyped values are kept as strings. Coercion failures are reported as
// *CoercionError so callers can attribute them to a parameter.
package schema
