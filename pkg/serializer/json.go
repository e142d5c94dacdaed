package serializer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/launchtree/pkg/domain"
)

// MarshalJSON writes type, fields and children in that order.
// Children are always present, as an empty array for leaves.
func (n Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	typ, err := json.Marshal(n.Type)
	if err != nil {
		return nil, err
	}
	buf.Write(typ)
	for _, f := range n.Fields {
		if f.Key == "type" || f.Key == "children" {
			continue
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Key, err)
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteString(`,"children":`)
	children := n.Children
	if children == nil {
		children = []Node{}
	}
	kids, err := json.Marshal(children)
	if err != nil {
		return nil, err
	}
	buf.Write(kids)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a document node, keeping field order.
// Nested objects decode to domain.Attributes and numbers to int64 or float64.
func (n *Node) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return err
	}
	obj, ok := v.(domain.Attributes)
	if !ok {
		return errors.New("serialized node must be a JSON object")
	}
	return n.fromAttributes(obj)
}

func (n *Node) fromAttributes(obj domain.Attributes) error {
	*n = Node{}
	for _, f := range obj {
		switch f.Key {
		case "type":
			s, ok := f.Value.(string)
			if !ok {
				return fmt.Errorf("node type must be a string, got %T", f.Value)
			}
			n.Type = s
		case "children":
			list, ok := f.Value.([]any)
			if !ok && f.Value != nil {
				return fmt.Errorf("node children must be an array, got %T", f.Value)
			}
			n.Children = make([]Node, 0, len(list))
			for _, item := range list {
				child, ok := item.(domain.Attributes)
				if !ok {
					return fmt.Errorf("child must be an object, got %T", item)
				}
				var c Node
				if err := c.fromAttributes(child); err != nil {
					return err
				}
				n.Children = append(n.Children, c)
			}
		default:
			n.Fields = append(n.Fields, f)
		}
	}
	if n.Type == "" {
		return errors.New("serialized node has no type")
	}
	return nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := domain.Attributes{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := keyTok.(string)
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj = append(obj, domain.Attr{Key: key, Value: val})
			}
			_, err := dec.Token()
			return obj, err
		case '[':
			list := []any{}
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, val)
			}
			_, err := dec.Token()
			return list, err
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		return t.Float64()
	default:
		return t, nil
	}
}
