package domain_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributes_MarshalKeepsOrder(t *testing.T) {
	attrs := domain.Attributes{
		{Key: "zeta", Value: "1"},
		{Key: "alpha", Value: true},
		{Key: "params", Value: domain.Attributes{{Key: "b", Value: "2"}, {Key: "a", Value: []any{"x", "y"}}}},
		{Key: "package", Value: nil},
	}

	data, err := json.Marshal(attrs)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":"1","alpha":true,"params":{"b":"2","a":["x","y"]},"package":null}`, string(data))
}

func TestAttributes_SetAndGet(t *testing.T) {
	var attrs domain.Attributes
	attrs = attrs.Set("name", "talker")
	attrs = attrs.Set("namespace", "/")
	attrs = attrs.Set("name", "listener")

	assert.Equal(t, []string{"name", "namespace"}, attrs.Keys())
	assert.Equal(t, "listener", attrs.String("name"))

	_, ok := attrs.Get("missing")
	assert.False(t, ok)
	assert.Empty(t, attrs.String("missing"))
}

func TestAttributes_CloneIsDeep(t *testing.T) {
	nested := domain.Attributes{{Key: "rate", Value: "10"}}
	orig := domain.Attributes{{Key: "parameters", Value: nested}}

	clone := orig.Clone()
	clone[0].Value.(domain.Attributes)[0].Value = "20"

	assert.Equal(t, "10", nested[0].Value)
}

func TestAttributes_CloneKeepsEmptyAndNilLists(t *testing.T) {
	orig := domain.Attributes{
		{Key: "arguments", Value: []string{}},
		{Key: "extra", Value: []string(nil)},
	}

	clone := orig.Clone()
	args, _ := clone.Get("arguments")
	assert.NotNil(t, args)
	assert.Equal(t, []string{}, args)
	extra, _ := clone.Get("extra")
	assert.Nil(t, extra)
}

func TestTreeNode_WalkAndClone(t *testing.T) {
	root := &domain.TreeNode{
		Family:   "IncludeLaunchDescription",
		Behavior: domain.BehaviorStructural,
		Children: []*domain.TreeNode{
			{Family: "Node", Behavior: domain.BehaviorLeaf},
			{Family: "GroupAction", Behavior: domain.BehaviorStructural, Children: []*domain.TreeNode{
				{Family: "Node", Behavior: domain.BehaviorLeaf},
			}},
		},
	}

	assert.Equal(t, 4, root.Count())

	var seen []string
	root.Walk(func(n *domain.TreeNode, depth int) bool {
		seen = append(seen, string(n.Family))
		return n.Family != "GroupAction"
	})
	assert.Equal(t, []string{"IncludeLaunchDescription", "Node", "GroupAction"}, seen)

	clone := root.Clone()
	clone.Children[1].Children = nil
	assert.Len(t, root.Children[1].Children, 1)
}

func TestBuildHooks_Merge(t *testing.T) {
	var calls []string
	a := domain.BuildHooks{
		OnEntityEnter: func(context.Context, *domain.EntityEvent) { calls = append(calls, "a") },
	}
	b := domain.BuildHooks{
		OnEntityEnter: func(context.Context, *domain.EntityEvent) { calls = append(calls, "b") },
		OnBuildDone:   func(context.Context, *domain.BuildEvent) { calls = append(calls, "done") },
	}

	merged := a.Merge(b)
	merged.OnEntityEnter(context.Background(), &domain.EntityEvent{})
	merged.OnBuildDone(context.Background(), &domain.BuildEvent{})
	assert.Nil(t, merged.OnEntityLeave)
	assert.Equal(t, []string{"a", "b", "done"}, calls)
}

func TestBehavior_String(t *testing.T) {
	assert.Equal(t, "spliced", domain.BehaviorSpliced.String())
	assert.True(t, domain.BehaviorLeaf.Labeled())
	assert.False(t, domain.BehaviorIgnored.Labeled())
}
