package schema

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Type defines the contract for parameter value coercion.
// Launch files carry every value as text; a Type turns that text into a typed value.
type Type interface {
	// Name returns the type name as written in launch files (e.g., "str", "int").
	Name() string
	// Coerce converts the resolved text of a value.
	Coerce(raw string) (any, error)
}

// --- Built-in Type Implementations ---

// StringType keeps values as text.
type StringType struct{}

func (t *StringType) Name() string { return "str" }

func (t *StringType) Coerce(raw string) (any, error) { return raw, nil }

// IntType parses integers, accepting base prefixes such as 0x.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Coerce(raw string) (any, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 0, 64)
	if err != nil {
		return nil, fmt.Errorf("expected int: %w", err)
	}
	return v, nil
}

// FloatType parses floating-point values.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Coerce(raw string) (any, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("expected float: %w", err)
	}
	return v, nil
}

// BoolType accepts true and false in any case.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Coerce(raw string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return nil, fmt.Errorf("expected bool, got %q", raw)
	}
}

// YAMLType interprets the text as a YAML scalar, sequence or mapping.
type YAMLType struct{}

func (t *YAMLType) Name() string { return "yaml" }

func (t *YAMLType) Coerce(raw string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("expected yaml: %w", err)
	}
	return v, nil
}

// SliceType splits the text on a separator and coerces each element.
type SliceType struct {
	elemType Type
	sep      string
}

func (t *SliceType) Name() string {
	return "list_of_" + t.elemType.Name()
}

func (t *SliceType) Coerce(raw string) (any, error) {
	if raw == "" {
		return []any{}, nil
	}
	parts := strings.Split(raw, t.sep)
	out := make([]any, 0, len(parts))
	for i, part := range parts {
		v, err := t.elemType.Coerce(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// --- Factory Functions ---

// String creates a text type.
func String() Type { return &StringType{} }

// Int creates an integer type.
func Int() Type { return &IntType{} }

// Float creates a float type.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type.
func Bool() Type { return &BoolType{} }

// YAML creates a type that parses its value as YAML.
func YAML() Type { return &YAMLType{} }

// Slice creates a list type whose elements are separated by sep.
func Slice(elemType Type, sep string) Type {
	if sep == "" {
		sep = ","
	}
	return &SliceType{elemType: elemType, sep: sep}
}

// ParseType converts a type name to a Type.
// Supports "str", "int", "float", "bool", "yaml" and "list_of_<type>".
// The separator only applies to list types.
func ParseType(typeStr, sep string) (Type, error) {
	if elem, ok := strings.CutPrefix(typeStr, "list_of_"); ok {
		elemType, err := ParseType(elem, "")
		if err != nil {
			return nil, err
		}
		return Slice(elemType, sep), nil
	}

	switch typeStr {
	case "str", "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	case "yaml", "auto":
		return YAML(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

// Coerce converts raw using the named type. An empty type name keeps the text,
// unless sep is set, in which case the value becomes a list of strings.
func Coerce(key, typeStr, sep, raw string) (any, error) {
	if typeStr == "" {
		if sep == "" {
			return raw, nil
		}
		typeStr = "list_of_str"
	}
	t, err := ParseType(typeStr, sep)
	if err != nil {
		return nil, &CoercionError{Key: key, Type: typeStr, Raw: raw, Reason: err.Error()}
	}
	v, err := t.Coerce(raw)
	if err != nil {
		return nil, &CoercionError{Key: key, Type: t.Name(), Raw: raw, Reason: err.Error()}
	}
	return v, nil
}
