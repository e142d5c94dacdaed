package serializer

import (
	"fmt"
	"reflect"
	"sort"
)

// Diff lists the nodes that changed between two documents.
// Nodes are identified by their path: the types of their ancestors with the
// position among same-type siblings, e.g. "/IncludeLaunchDescription[0]/Node[1]".
type Diff struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Changed []string `json:"changed,omitempty"`
}

// Compare calculates the difference between oldDoc and newDoc.
// If oldDoc is nil, every node of newDoc is reported as added.
func Compare(oldDoc, newDoc *Node) *Diff {
	before := index(oldDoc)
	after := index(newDoc)

	d := &Diff{}
	for path, n := range after {
		old, ok := before[path]
		if !ok {
			d.Added = append(d.Added, path)
			continue
		}
		if !reflect.DeepEqual(old.Fields, n.Fields) {
			d.Changed = append(d.Changed, path)
		}
	}
	for path := range before {
		if _, ok := after[path]; !ok {
			d.Removed = append(d.Removed, path)
		}
	}
	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Strings(d.Changed)
	return d
}

// IsEmpty reports whether the documents are equivalent.
func (d *Diff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

func index(root *Node) map[string]Node {
	out := make(map[string]Node)
	if root == nil {
		return out
	}
	root.WalkPaths(func(path string, n Node, _ int) {
		out[path] = n
	})
	return out
}

// WalkPaths visits the node and its descendants depth-first, passing each node's
// path in the form used by Diff.
func (n Node) WalkPaths(fn func(path string, node Node, depth int)) {
	n.walkPaths("", 0, 0, fn)
}

func (n Node) walkPaths(prefix string, pos, depth int, fn func(string, Node, int)) {
	path := fmt.Sprintf("%s/%s[%d]", prefix, n.Type, pos)
	fn(path, n, depth)
	seen := make(map[string]int)
	for _, c := range n.Children {
		c.walkPaths(path, seen[c.Type], depth+1, fn)
		seen[c.Type]++
	}
}
