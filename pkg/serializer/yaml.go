package serializer

import (
	"fmt"

	"github.com/aretw0/launchtree/pkg/domain"
	"gopkg.in/yaml.v3"
)

// MarshalYAML emits the same key order as MarshalJSON.
func (n Node) MarshalYAML() (any, error) {
	m := &yaml.Node{Kind: yaml.MappingNode}
	m.Content = append(m.Content, scalar("type"), scalar(n.Type))
	for _, f := range n.Fields {
		if f.Key == "type" || f.Key == "children" {
			continue
		}
		v, err := yamlValue(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Key, err)
		}
		m.Content = append(m.Content, scalar(f.Key), v)
	}
	children := &yaml.Node{Kind: yaml.SequenceNode}
	for _, c := range n.Children {
		v, err := c.MarshalYAML()
		if err != nil {
			return nil, err
		}
		children.Content = append(children.Content, v.(*yaml.Node))
	}
	if len(children.Content) == 0 {
		children.Style = yaml.FlowStyle
	}
	m.Content = append(m.Content, scalar("children"), children)
	return m, nil
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func yamlValue(v any) (*yaml.Node, error) {
	switch val := v.(type) {
	case domain.Attributes:
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, f := range val {
			sub, err := yamlValue(f.Value)
			if err != nil {
				return nil, err
			}
			m.Content = append(m.Content, scalar(f.Key), sub)
		}
		return m, nil
	case []domain.Attributes:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range val {
			sub, err := yamlValue(item)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, sub)
		}
		if len(seq.Content) == 0 {
			seq.Style = yaml.FlowStyle
		}
		return seq, nil
	case []any:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range val {
			sub, err := yamlValue(item)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, sub)
		}
		if len(seq.Content) == 0 {
			seq.Style = yaml.FlowStyle
		}
		return seq, nil
	case Node:
		out, err := val.MarshalYAML()
		if err != nil {
			return nil, err
		}
		return out.(*yaml.Node), nil
	default:
		n := &yaml.Node{}
		if err := n.Encode(v); err != nil {
			return nil, err
		}
		return n, nil
	}
}

// ToYAML renders a document as YAML.
func ToYAML(n Node) ([]byte, error) {
	return yaml.Marshal(n)
}
