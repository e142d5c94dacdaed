package normalize_test

import (
	"testing"

	"github.com/aretw0/launchtree/internal/normalize"
	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/registry"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *registry.Registry {
	r := registry.NewRegistry()
	r.Register("Root", registry.Registration{Behavior: domain.BehaviorStructural})
	r.Register("Description", registry.Registration{Behavior: domain.BehaviorSpliced, Transparent: true})
	r.Register("Group", registry.Registration{Behavior: domain.BehaviorStructural, Container: true})
	r.Register("Node", registry.Registration{Behavior: domain.BehaviorLeaf})
	r.Register("Let", registry.Registration{Behavior: domain.BehaviorIgnored, Visit: true})
	r.Register("Push", registry.Registration{Behavior: domain.BehaviorIgnored, Visit: true, Invalid: true})
	return r
}

func node(family domain.Family, b domain.Behavior, children ...*domain.TreeNode) *domain.TreeNode {
	return &domain.TreeNode{Family: family, Behavior: b, Children: children}
}

func families(n *domain.TreeNode) []string {
	var out []string
	n.Walk(func(n *domain.TreeNode, _ int) bool {
		out = append(out, string(n.Family))
		return true
	})
	return out
}

func TestNormalize_Passes(t *testing.T) {
	r := testRegistry()
	root := node("Root", domain.BehaviorStructural,
		node("Let", domain.BehaviorIgnored),
		node("Description", domain.BehaviorSpliced,
			node("Node", domain.BehaviorLeaf),
			node("Description", domain.BehaviorSpliced,
				node("Node", domain.BehaviorLeaf),
			),
		),
		node("Group", domain.BehaviorStructural,
			node("Let", domain.BehaviorIgnored),
			node("Description", domain.BehaviorSpliced),
		),
		node("Unknown:foo", domain.BehaviorIgnored),
		node("Push", domain.BehaviorIgnored),
	)

	got := normalize.Normalize(root, r)
	assert.Equal(t, []string{"Root", "Node", "Node"}, families(got))

	// The input is left untouched.
	assert.Len(t, root.Children, 5)
}

func TestNormalize_GenericEqualsClassified(t *testing.T) {
	r := testRegistry()
	classified := node("Root", domain.BehaviorStructural,
		node("Let", domain.BehaviorIgnored),
		node("Group", domain.BehaviorStructural,
			node("Description", domain.BehaviorSpliced, node("Node", domain.BehaviorLeaf)),
		),
	)
	generic := node("Root", domain.BehaviorStructural,
		node("Let", domain.BehaviorStructural),
		node("Group", domain.BehaviorStructural,
			node("Description", domain.BehaviorStructural, node("Node", domain.BehaviorStructural)),
		),
		node("Unknown:bar", domain.BehaviorStructural),
	)

	a := normalize.Normalize(classified, r)
	b := normalize.Normalize(generic, r)
	assert.Equal(t, families(a), families(b))
}

func TestNormalize_CascadingEmptyContainers(t *testing.T) {
	r := testRegistry()
	root := node("Root", domain.BehaviorStructural,
		node("Group", domain.BehaviorStructural,
			node("Group", domain.BehaviorStructural,
				node("Let", domain.BehaviorIgnored),
			),
		),
	)
	got := normalize.Normalize(root, r)
	assert.Empty(t, got.Children)
}

func TestNormalize_Idempotent(t *testing.T) {
	r := testRegistry()
	root := node("Root", domain.BehaviorStructural,
		node("Description", domain.BehaviorSpliced,
			node("Group", domain.BehaviorStructural, node("Description", domain.BehaviorSpliced)),
			node("Group", domain.BehaviorStructural, node("Node", domain.BehaviorLeaf)),
			node("Push", domain.BehaviorIgnored),
		),
	)
	once := normalize.Normalize(root, r)
	twice := normalize.Normalize(once, r)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("normalization is not idempotent (-once +twice):\n%s", diff)
	}

	for _, p := range normalize.Passes() {
		first := normalize.Apply(root, r, p)
		second := normalize.Apply(first, r, p)
		require.Empty(t, cmp.Diff(first, second), "pass %s is not idempotent", p.Name)
	}
}

func TestNormalize_RootIsKept(t *testing.T) {
	r := testRegistry()
	root := node("Description", domain.BehaviorSpliced)
	got := normalize.Normalize(root, r)
	require.NotNil(t, got)
	assert.Equal(t, domain.Family("Description"), got.Family)
	assert.Nil(t, normalize.Normalize(nil, r))
}
