package domain

import (
	"bytes"
	"encoding/json"
)

// Attr is one resolved attribute of a tree node.
type Attr struct {
	Key   string
	Value any
}

// Attributes is an ordered attribute list. Order is preserved in every output format.
// Values are strings, bools, nil, []any, []string, Attributes or []Attributes.
type Attributes []Attr

// Get returns the value stored under key.
func (a Attributes) Get(key string) (any, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return nil, false
}

// String returns the value under key when it is a string.
func (a Attributes) String(key string) string {
	v, _ := a.Get(key)
	s, _ := v.(string)
	return s
}

// Set replaces the value under key, or appends it when absent.
func (a Attributes) Set(key string, value any) Attributes {
	for i := range a {
		if a[i].Key == key {
			a[i].Value = value
			return a
		}
	}
	return append(a, Attr{Key: key, Value: value})
}

// Keys returns the attribute names in order.
func (a Attributes) Keys() []string {
	keys := make([]string, len(a))
	for i, attr := range a {
		keys[i] = attr.Key
	}
	return keys
}

// Clone returns a deep copy. Nested Attributes and slices are copied too.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for i, attr := range a {
		out[i] = Attr{Key: attr.Key, Value: cloneValue(attr.Value)}
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Attributes:
		return val.Clone()
	case []Attributes:
		if val == nil {
			return val
		}
		out := make([]Attributes, len(val))
		for i, item := range val {
			out[i] = item.Clone()
		}
		return out
	case []any:
		if val == nil {
			return val
		}
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		if val == nil {
			return val
		}
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}

// MarshalJSON encodes the attributes as a JSON object, keeping their order.
func (a Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, attr := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(attr.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(attr.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
