package registry_test

import (
	"testing"

	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/registry"
	"github.com/stretchr/testify/assert"
)

type stubEntity struct{ family domain.Family }

func (s stubEntity) Family() domain.Family        { return s.family }
func (s stubEntity) Condition() *domain.Condition { return nil }

func TestRegistry_Classify(t *testing.T) {
	r := registry.NewRegistry()
	r.Register("Node", registry.Registration{Behavior: domain.BehaviorLeaf})
	r.Register("SetLaunchConfiguration", registry.Registration{Behavior: domain.BehaviorIgnored, Visit: true})

	assert.Equal(t, domain.BehaviorLeaf, r.Classify(stubEntity{"Node"}).Behavior)
	assert.True(t, r.Classify(stubEntity{"SetLaunchConfiguration"}).Visit)

	unknown := r.Classify(stubEntity{"Unknown:foo"})
	assert.Equal(t, domain.BehaviorIgnored, unknown.Behavior)
	assert.False(t, unknown.Visit)
	assert.Nil(t, unknown.Extract)
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	r := registry.NewRegistry()
	r.Register("GroupAction", registry.Registration{Behavior: domain.BehaviorSpliced})
	r.Register("GroupAction", registry.Registration{Behavior: domain.BehaviorStructural, Container: true})

	reg, ok := r.Lookup("GroupAction")
	assert.True(t, ok)
	assert.Equal(t, domain.BehaviorStructural, reg.Behavior)
	assert.True(t, reg.Container)
}

func TestRegistry_FamiliesAndClone(t *testing.T) {
	r := registry.NewRegistry()
	r.Register("Node", registry.Registration{})
	r.Register("GroupAction", registry.Registration{})

	clone := r.Clone()
	clone.Register("TimerAction", registry.Registration{})

	assert.Equal(t, []domain.Family{"GroupAction", "Node"}, r.Families())
	assert.Equal(t, []domain.Family{"GroupAction", "Node", "TimerAction"}, clone.Families())
}
