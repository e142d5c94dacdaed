package domain

// TreeNode is the builder's representation of one classified entity.
// Attributes are filled once by the family's extractor and not modified afterwards.
type TreeNode struct {
	Family     Family
	Behavior   Behavior
	Attributes Attributes
	Children   []*TreeNode
}

// Walk visits the node and its descendants depth-first, parents before children.
// Returning false from fn skips the node's children.
func (n *TreeNode) Walk(fn func(node *TreeNode, depth int) bool) {
	n.walk(fn, 0)
}

func (n *TreeNode) walk(fn func(node *TreeNode, depth int) bool, depth int) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}

// Count returns the number of nodes in the subtree, including n.
func (n *TreeNode) Count() int {
	count := 0
	n.Walk(func(*TreeNode, int) bool {
		count++
		return true
	})
	return count
}

// Clone returns a deep copy of the subtree.
func (n *TreeNode) Clone() *TreeNode {
	if n == nil {
		return nil
	}
	out := &TreeNode{
		Family:     n.Family,
		Behavior:   n.Behavior,
		Attributes: n.Attributes.Clone(),
	}
	if n.Children != nil {
		out.Children = make([]*TreeNode, len(n.Children))
		for i, child := range n.Children {
			out.Children[i] = child.Clone()
		}
	}
	return out
}

// Diagnostic records a per-entity failure recovered during a build.
type Diagnostic struct {
	Family  Family `json:"family" yaml:"family"`
	Source  string `json:"source,omitempty" yaml:"source,omitempty"`
	Depth   int    `json:"depth" yaml:"depth"`
	Message string `json:"message" yaml:"message"`
}
