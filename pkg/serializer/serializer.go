package serializer

import (
	"errors"
	"fmt"

	"github.com/aretw0/launchtree/pkg/domain"
)

// ErrNotSingleRoot is returned by Serialize when the root does not produce exactly one node.
var ErrNotSingleRoot = errors.New("root does not serialize to a single node")

// Node is one serialized entity.
type Node struct {
	Type     string
	Fields   domain.Attributes
	Children []Node
}

// Field returns the value of a field.
func (n Node) Field(key string) (any, bool) {
	return n.Fields.Get(key)
}

// SerializeAll serializes a tree node into zero or more document nodes.
func SerializeAll(n *domain.TreeNode) []Node {
	if n == nil {
		return nil
	}
	switch n.Behavior {
	case domain.BehaviorIgnored:
		return nil
	case domain.BehaviorSpliced:
		return serializeChildren(n.Children)
	default:
		return []Node{{
			Type:     string(n.Family),
			Fields:   n.Attributes.Clone(),
			Children: serializeChildren(n.Children),
		}}
	}
}

func serializeChildren(children []*domain.TreeNode) []Node {
	out := make([]Node, 0, len(children))
	for _, c := range children {
		out = append(out, SerializeAll(c)...)
	}
	return out
}

// Serialize serializes a tree whose root must produce exactly one node.
func Serialize(n *domain.TreeNode) (Node, error) {
	nodes := SerializeAll(n)
	if len(nodes) != 1 {
		return Node{}, fmt.Errorf("%w: got %d nodes", ErrNotSingleRoot, len(nodes))
	}
	return nodes[0], nil
}

// Walk visits the node and its descendants depth-first.
func (n Node) Walk(fn func(node Node, depth int)) {
	n.walk(fn, 0)
}

func (n Node) walk(fn func(node Node, depth int), depth int) {
	fn(n, depth)
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Find returns every node of the given type, in document order.
func (n Node) Find(typ string) []Node {
	var out []Node
	n.Walk(func(node Node, _ int) {
		if node.Type == typ {
			out = append(out, node)
		}
	})
	return out
}
