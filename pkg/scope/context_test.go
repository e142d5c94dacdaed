package scope_test

import (
	"testing"

	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/scope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func TestContext_VariableShadowing(t *testing.T) {
	c := scope.NewContext(nil, scope.WithGetenv(noEnv), scope.WithVariables(map[string]string{"x": "1"}))

	leave := c.Enter(scope.Frame{Mask: scope.Variables})
	c.Bind("x", "2")
	c.Bind("y", "3")

	v, ok := c.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "2", v)
	assert.Equal(t, map[string]string{"x": "2", "y": "3"}, c.Variables())

	require.NoError(t, leave())

	v, _ = c.Lookup("x")
	assert.Equal(t, "1", v)
	_, ok = c.Lookup("y")
	assert.False(t, ok, "binding must not leak out of the scope")
}

func TestContext_IsolatedFrameHidesOuterBindings(t *testing.T) {
	c := scope.NewContext(nil, scope.WithVariables(map[string]string{"x": "1"}))

	leave := c.Enter(scope.Frame{Mask: scope.Variables, Isolated: true})
	_, ok := c.Lookup("x")
	assert.False(t, ok)
	assert.Empty(t, c.Variables())
	require.NoError(t, leave())

	_, ok = c.Lookup("x")
	assert.True(t, ok)
}

func TestContext_EnterRestoresDepths(t *testing.T) {
	c := scope.NewContext(nil)
	start := c.Depths()

	leave := c.Enter(scope.Frame{Mask: scope.All, Namespace: "robot"})
	c.PushEnvironment()
	c.PushVariables(true)
	c.PushNamespace("inner")
	c.PushParameters(nil)
	c.PushRemaps()
	assert.NotEqual(t, start, c.Depths())

	require.NoError(t, leave())
	assert.Equal(t, start, c.Depths())

	// Calling leave twice is harmless.
	require.NoError(t, leave())
	assert.Equal(t, start, c.Depths())
}

func TestContext_PopBelowScopeFloor(t *testing.T) {
	c := scope.NewContext(nil)

	err := c.PopEnvironment()
	assert.ErrorIs(t, err, scope.ErrScopeUnderflow)

	leave := c.Enter(scope.Frame{Mask: scope.Environment | scope.Variables})
	assert.ErrorIs(t, c.PopEnvironment(), scope.ErrScopeUnderflow)
	assert.ErrorIs(t, c.PopVariables(), scope.ErrScopeUnderflow)

	c.PushEnvironment()
	assert.NoError(t, c.PopEnvironment())
	require.NoError(t, leave())
}

func TestContext_ExplicitPushOutsideScope(t *testing.T) {
	c := scope.NewContext(nil)
	c.PushEnvironment()

	// An unscoped region may pop a frame pushed before it.
	leave := c.Enter(scope.Frame{Mask: scope.Namespace})
	assert.NoError(t, c.PopEnvironment())
	assert.NoError(t, leave())
}

func TestContext_Environment(t *testing.T) {
	c := scope.NewContext(nil, scope.WithGetenv(func(name string) (string, bool) {
		if name == "HOME" {
			return "/home/ros", true
		}
		return "", false
	}))

	v, ok := c.Getenv("HOME")
	require.True(t, ok)
	assert.Equal(t, "/home/ros", v)

	leave := c.Enter(scope.Frame{Mask: scope.Environment})
	c.SetEnv("ROS_DOMAIN_ID", "7")
	c.UnsetEnv("HOME")

	v, ok = c.Getenv("ROS_DOMAIN_ID")
	require.True(t, ok)
	assert.Equal(t, "7", v)
	_, ok = c.Getenv("HOME")
	assert.False(t, ok)

	require.NoError(t, leave())
	_, ok = c.Getenv("ROS_DOMAIN_ID")
	assert.False(t, ok)
	_, ok = c.Getenv("HOME")
	assert.True(t, ok)
}

func TestContext_Namespace(t *testing.T) {
	c := scope.NewContext(nil)
	assert.Equal(t, "", c.Namespace())

	leave := c.Enter(scope.Frame{Mask: scope.Namespace, Namespace: "robot"})
	assert.Equal(t, "/robot", c.Namespace())
	c.ApplyNamespace("arm")
	assert.Equal(t, "/robot/arm", c.Namespace())
	c.ApplyNamespace("/abs")
	assert.Equal(t, "/abs", c.Namespace())
	require.NoError(t, leave())

	assert.Equal(t, "", c.Namespace())
}

func TestJoinNamespace(t *testing.T) {
	tests := []struct {
		base, ns, want string
	}{
		{"", "", ""},
		{"", "a", "/a"},
		{"/a", "b", "/a/b"},
		{"/a/", "/b/", "/b"},
		{"/a", "/", "/"},
		{"/a", "b/c/", "/a/b/c"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scope.JoinNamespace(tt.base, tt.ns), "JoinNamespace(%q, %q)", tt.base, tt.ns)
	}
}

func TestContext_ParametersAndRemaps(t *testing.T) {
	c := scope.NewContext(nil)
	c.AddParameters(domain.Attributes{{Key: "use_sim_time", Value: "true"}})
	c.AddRemap("/cmd_vel", "/mux/cmd_vel")

	leave := c.Enter(scope.Frame{Mask: scope.Parameters | scope.Remaps})
	c.AddParameters(domain.Attributes{{Key: "use_sim_time", Value: "false"}, {Key: "rate", Value: "10"}})
	c.AddRemap("/odom", "/odom_filtered")

	assert.Equal(t, domain.Attributes{
		{Key: "use_sim_time", Value: "false"},
		{Key: "rate", Value: "10"},
	}, c.Parameters())
	assert.Equal(t, []scope.Remap{
		{From: "/cmd_vel", To: "/mux/cmd_vel"},
		{From: "/odom", To: "/odom_filtered"},
	}, c.Remaps())

	require.NoError(t, leave())
	assert.Equal(t, domain.Attributes{{Key: "use_sim_time", Value: "true"}}, c.Parameters())
	assert.Len(t, c.Remaps(), 1)
}

func TestContext_Containers(t *testing.T) {
	c := scope.NewContext(nil)
	c.DeclareContainer("container", "/robot/container")

	fqn, ok := c.LookupContainer("container")
	require.True(t, ok)
	assert.Equal(t, "/robot/container", fqn)

	fqn, ok = c.LookupContainer("/robot/container")
	require.True(t, ok)
	assert.Equal(t, "/robot/container", fqn)

	_, ok = c.LookupContainer("other")
	assert.False(t, ok)
}

func TestContext_AnonIsStable(t *testing.T) {
	c := scope.NewContext(nil, scope.WithSeed(42))
	first := c.Anon("talker")
	assert.Equal(t, first, c.Anon("talker"))
	assert.NotEqual(t, first, c.Anon("listener"))
	assert.Contains(t, first, "talker")
}

func TestContext_NoResolver(t *testing.T) {
	c := scope.NewContext(nil)
	ok, err := c.EvaluateCondition(nil)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = c.ResolveSubstitution(nil)
	assert.Error(t, err)
}

func TestMask_String(t *testing.T) {
	assert.Equal(t, "none", scope.None.String())
	assert.Equal(t, "variables|namespace", (scope.Variables | scope.Namespace).String())
}

func TestContext_EnterBindings(t *testing.T) {
	c := scope.NewContext(nil, scope.WithVariables(map[string]string{"robot": "r1", "secret": "s"}))

	leave := c.Enter(scope.Frame{Mask: scope.Variables, Isolated: true, Bindings: map[string]string{"robot": "r1"}})
	assert.Equal(t, map[string]string{"robot": "r1"}, c.Variables())
	require.NoError(t, leave())

	_, ok := c.Lookup("secret")
	assert.True(t, ok)
}
