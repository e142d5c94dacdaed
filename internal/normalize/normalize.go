// Package normalize rewrites a built launch tree into its canonical shape.
//
// Normalization runs three passes, each over the whole tree and bottom-up:
//
//  1. drop-invalid removes ignored nodes, unregistered families and families marked Invalid;
//  2. splice-transparent replaces spliced nodes and Transparent families by their children;
//  3. drop-empty removes Container families left without children.
//
// Every pass is idempotent, so the pipeline is too. The root node is never removed.
package normalize

import (
	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/registry"
)

// Pass rewrites the children of one node. Passes receive children already rewritten.
type Pass struct {
	Name    string
	Rewrite func(r *registry.Registry, n *domain.TreeNode) []*domain.TreeNode
}

// Passes returns the default pipeline, in execution order.
func Passes() []Pass {
	return []Pass{
		{Name: "drop-invalid", Rewrite: dropInvalid},
		{Name: "splice-transparent", Rewrite: spliceTransparent},
		{Name: "drop-empty", Rewrite: dropEmpty},
	}
}

// Normalize applies the default pipeline to a copy of root.
func Normalize(root *domain.TreeNode, r *registry.Registry) *domain.TreeNode {
	return Apply(root, r, Passes()...)
}

// Apply runs passes in order on a copy of root. A nil root stays nil.
func Apply(root *domain.TreeNode, r *registry.Registry, passes ...Pass) *domain.TreeNode {
	if root == nil {
		return nil
	}
	out := root.Clone()
	for _, p := range passes {
		apply(out, r, p)
	}
	return out
}

func apply(n *domain.TreeNode, r *registry.Registry, p Pass) {
	for _, child := range n.Children {
		apply(child, r, p)
	}
	n.Children = p.Rewrite(r, n)
}

func dropInvalid(r *registry.Registry, n *domain.TreeNode) []*domain.TreeNode {
	return filter(n.Children, func(c *domain.TreeNode) bool {
		if c.Behavior == domain.BehaviorIgnored {
			return false
		}
		reg, ok := r.Lookup(c.Family)
		return ok && !reg.Invalid && reg.Behavior != domain.BehaviorIgnored
	})
}

func spliceTransparent(r *registry.Registry, n *domain.TreeNode) []*domain.TreeNode {
	if !anyMatch(n.Children, func(c *domain.TreeNode) bool { return spliced(r, c) }) {
		return n.Children
	}
	out := make([]*domain.TreeNode, 0, len(n.Children))
	for _, c := range n.Children {
		if spliced(r, c) {
			out = append(out, c.Children...)
			continue
		}
		out = append(out, c)
	}
	return out
}

func spliced(r *registry.Registry, n *domain.TreeNode) bool {
	if n.Behavior == domain.BehaviorSpliced {
		return true
	}
	reg, ok := r.Lookup(n.Family)
	return ok && (reg.Transparent || reg.Behavior == domain.BehaviorSpliced)
}

func dropEmpty(r *registry.Registry, n *domain.TreeNode) []*domain.TreeNode {
	return filter(n.Children, func(c *domain.TreeNode) bool {
		if len(c.Children) > 0 {
			return true
		}
		reg, ok := r.Lookup(c.Family)
		return !ok || !reg.Container
	})
}

func filter(nodes []*domain.TreeNode, keep func(*domain.TreeNode) bool) []*domain.TreeNode {
	if !anyMatch(nodes, func(c *domain.TreeNode) bool { return !keep(c) }) {
		return nodes
	}
	out := make([]*domain.TreeNode, 0, len(nodes))
	for _, c := range nodes {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func anyMatch(nodes []*domain.TreeNode, pred func(*domain.TreeNode) bool) bool {
	for _, c := range nodes {
		if pred(c) {
			return true
		}
	}
	return false
}
