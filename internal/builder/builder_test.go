package builder_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/launchtree/internal/builder"
	"github.com/aretw0/launchtree/internal/normalize"
	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/dsl"
	"github.com/aretw0/launchtree/pkg/launch"
	"github.com/aretw0/launchtree/pkg/registry"
	"github.com/aretw0/launchtree/pkg/scope"
	"github.com/aretw0/launchtree/pkg/serializer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	doc    serializer.Node
	tree   *domain.TreeNode
	reg    *registry.Registry
	report *builder.Report
	err    error
	before scope.Depths
	after  scope.Depths
}

func rootInclude(path string, args ...launch.Binding) *launch.IncludeLaunchDescription {
	return &launch.IncludeLaunchDescription{File: launch.Lit(path), Arguments: args}
}

func arg(name, value string) launch.Binding {
	return launch.Binding{Name: name, Value: launch.Lit(value)}
}

func run(t *testing.T, b *dsl.Builder, root domain.Entity, opts ...builder.Option) result {
	t.Helper()
	return runContext(context.Background(), t, b, root, nil, opts...)
}

func runContext(ctx context.Context, t *testing.T, b *dsl.Builder, root domain.Entity, engineOpts []launch.Option, opts ...builder.Option) result {
	t.Helper()
	loader, err := b.Build()
	require.NoError(t, err)
	engine := launch.NewEngine(loader, engineOpts...)
	reg := engine.NewRegistry()
	sc := scope.NewContext(engine, scope.WithGetenv(func(string) (string, bool) { return "", false }))

	res := result{before: sc.Depths(), reg: reg}
	tree, report, err := builder.New(engine, reg, opts...).Build(ctx, sc, root)
	res.after = sc.Depths()
	res.tree, res.report, res.err = tree, report, err
	if err != nil {
		return res
	}
	doc, err := serializer.Serialize(normalize.Normalize(tree, reg))
	require.NoError(t, err)
	res.doc = doc
	return res
}

func field(t *testing.T, n serializer.Node, key string) any {
	t.Helper()
	v, ok := n.Field(key)
	require.True(t, ok, "node %s has no field %s", n.Type, key)
	return v
}

func types(n serializer.Node) []string {
	var out []string
	n.Walk(func(node serializer.Node, _ int) {
		out = append(out, node.Type)
	})
	return out
}

func TestBuild_ArgumentOverrideReachesIncludedNode(t *testing.T) {
	b := dsl.New()
	root := b.File("/ws/root.launch.xml")
	root.Arg("x").Default("0")
	root.Group().Include("/ws/child.launch.xml")
	b.File("/ws/child.launch.xml").Node("demo", "talker").Name("talker").Param("value", "$(var x)")

	res := run(t, b, rootInclude("/ws/root.launch.xml", arg("x", "1")))
	require.NoError(t, res.err)

	assert.Equal(t, "IncludeLaunchDescription", res.doc.Type)
	assert.Equal(t, "/ws/root.launch.xml", field(t, res.doc, "path"))
	assert.Equal(t, []string{"IncludeLaunchDescription", "GroupAction", "IncludeLaunchDescription", "Node"}, types(res.doc))

	nodes := res.doc.Find("Node")
	require.Len(t, nodes, 1)
	params := field(t, nodes[0], "parameters").(domain.Attributes)
	v, _ := params.Get("value")
	assert.Equal(t, "1", v)
}

func TestBuild_DefaultArgumentWithoutOverride(t *testing.T) {
	b := dsl.New()
	root := b.File("/ws/root.launch.xml")
	root.Arg("x").Default("0")
	root.Node("demo", "talker").Name("n$(var x)")

	res := run(t, b, rootInclude("/ws/root.launch.xml"))
	require.NoError(t, res.err)
	assert.Equal(t, "n0", field(t, res.doc.Find("Node")[0], "name"))
}

func TestBuild_FalseConditionLeavesNoTrace(t *testing.T) {
	b := dsl.New()
	root := b.File("/ws/root.launch.xml")
	g := root.Group().Unscoped().If("false")
	g.Let("leak", "yes")
	g.Node("demo", "hidden")
	root.Node("demo", "visible").Name("$(var leak none)")

	res := run(t, b, rootInclude("/ws/root.launch.xml"))
	require.NoError(t, res.err)

	assert.Equal(t, []string{"IncludeLaunchDescription", "Node"}, types(res.doc))
	node := res.doc.Find("Node")[0]
	assert.Equal(t, "visible", field(t, node, "executable"))
	assert.Equal(t, "none", field(t, node, "name"))
	assert.Empty(t, res.report.Diagnostics)
	assert.Equal(t, res.before, res.after)
}

func TestBuild_SplicedDescriptionsFlatten(t *testing.T) {
	b := dsl.New()
	root := b.File("/ws/root.launch.xml")
	root.Node("demo", "a")
	root.Include("/ws/mid.launch.xml")
	root.Timer("1.0").Node("demo", "delayed")
	b.File("/ws/mid.launch.xml").Node("demo", "b")

	res := run(t, b, rootInclude("/ws/root.launch.xml"))
	require.NoError(t, res.err)

	assert.Equal(t, []string{"IncludeLaunchDescription", "Node", "IncludeLaunchDescription", "Node", "Node"}, types(res.doc))
	for _, typ := range types(res.doc) {
		assert.NotEqual(t, string(launch.FamilyLaunchDescription), typ)
		assert.NotEqual(t, string(launch.FamilyTimer), typ)
	}
	assert.Equal(t, []string{"/ws/root.launch.xml", "/ws/mid.launch.xml"}, res.report.Sources)
}

func TestBuild_FailureIsIsolatedAndScopesRestored(t *testing.T) {
	b := dsl.New()
	root := b.File("/ws/root.launch.xml")
	g := root.Group().Namespace("robot")
	g.SetEnv("A", "1")
	g.Include("/ws/missing.launch.xml")
	g.Node("demo", "survivor")
	g.Node("demo", "broken").Name("$(var undefined)")
	root.Node("demo", "outside")

	res := run(t, b, rootInclude("/ws/root.launch.xml"))
	require.NoError(t, res.err)
	assert.Equal(t, res.before, res.after)

	require.Len(t, res.report.Diagnostics, 2)
	assert.Equal(t, launch.FamilyInclude, res.report.Diagnostics[0].Family)
	assert.Equal(t, launch.FamilyNode, res.report.Diagnostics[1].Family)
	assert.Equal(t, 2, res.report.Failed)

	nodes := res.doc.Find("Node")
	require.Len(t, nodes, 2)
	assert.Equal(t, "/robot", field(t, nodes[0], "namespace"))
	assert.Equal(t, "/", field(t, nodes[1], "namespace"))
}

func TestBuild_EmptyTrueConditionGroupIsAbsent(t *testing.T) {
	b := dsl.New()
	root := b.File("/ws/root.launch.xml")
	root.Group().If("true").Let("x", "1")
	root.Node("demo", "n")

	res := run(t, b, rootInclude("/ws/root.launch.xml"))
	require.NoError(t, res.err)
	assert.Equal(t, []string{"IncludeLaunchDescription", "Node"}, types(res.doc))

	data, err := json.Marshal(res.doc)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "GroupAction")
}

func TestBuild_LoadCarriesTargetContainer(t *testing.T) {
	b := dsl.New()
	root := b.File("/ws/root.launch.xml")
	root.Container("c").Namespace("ns").Composable("demo", "demo::Talker").Name("talker")
	load := root.Load("c")
	load.Composable("demo", "demo::Listener").Name("listener")
	load.Composable("demo", "demo::Relay").Name("relay")

	res := run(t, b, rootInclude("/ws/root.launch.xml"))
	require.NoError(t, res.err)

	loads := res.doc.Find(string(launch.FamilyLoadComposableNodes))
	require.Len(t, loads, 2)
	for _, l := range loads {
		assert.Equal(t, "/ns/c", field(t, l, "target_container"))
		for _, item := range field(t, l, "loaded_nodes").([]domain.Attributes) {
			target, _ := item.Get("target_container")
			assert.Equal(t, "/ns/c", target)
		}
	}
	assert.Len(t, field(t, loads[1], "loaded_nodes").([]domain.Attributes), 2)
}

func TestBuild_UnknownFamilyIsIgnored(t *testing.T) {
	b := dsl.New()
	root := b.File("/ws/root.launch.xml")
	root.Node("demo", "before")
	root.Unknown("executable_with_a_twist")
	root.Node("demo", "after")

	res := run(t, b, rootInclude("/ws/root.launch.xml"))
	require.NoError(t, res.err)
	assert.Empty(t, res.report.Diagnostics)
	nodes := res.doc.Find("Node")
	require.Len(t, nodes, 2)
	assert.Equal(t, "before", field(t, nodes[0], "executable"))
	assert.Equal(t, "after", field(t, nodes[1], "executable"))
}

func TestBuild_GenericModeMatchesClassified(t *testing.T) {
	newLaunch := func() *dsl.Builder {
		b := dsl.New()
		root := b.File("/ws/root.launch.xml")
		root.Arg("robot").Default("r1")
		root.SetParameter("use_sim_time", "true")
		g := root.Group().Namespace("$(var robot)")
		g.Node("demo", "talker").Name("talker").Remap("chatter", "talk")
		g.Include("/ws/child.launch.xml").Arg("mode", "fast")
		root.Group().If("true").Let("x", "1")
		root.Unknown("mystery")
		root.Container("c").Composable("demo", "demo::Plugin")
		child := b.File("/ws/child.launch.xml")
		child.Arg("mode")
		child.Node("demo", "worker").Args("--mode $(var mode)")
		return b
	}

	classified := run(t, newLaunch(), rootInclude("/ws/root.launch.xml"))
	generic := run(t, newLaunch(), rootInclude("/ws/root.launch.xml"), builder.WithMode(builder.Generic))
	require.NoError(t, classified.err)
	require.NoError(t, generic.err)

	a, err := json.Marshal(classified.doc)
	require.NoError(t, err)
	g, err := json.Marshal(generic.doc)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(g))
}

func TestBuild_NormalizeIsIdempotent(t *testing.T) {
	b := dsl.New()
	root := b.File("/ws/root.launch.xml")
	root.Group().Group().Let("x", "1")
	root.Group().Node("demo", "n")

	res := run(t, b, rootInclude("/ws/root.launch.xml"))
	require.NoError(t, res.err)

	once := normalize.Normalize(res.tree, res.reg)
	twice := normalize.Normalize(once, res.reg)
	assert.Equal(t, once, twice)
}

func TestBuild_IncludeCycle(t *testing.T) {
	b := dsl.New()
	b.File("/ws/a.launch.xml").Include("/ws/b.launch.xml")
	b.File("/ws/b.launch.xml").Include("/ws/a.launch.xml")

	res := run(t, b, rootInclude("/ws/a.launch.xml"))
	require.NoError(t, res.err)
	require.Len(t, res.report.Diagnostics, 1)
	assert.Contains(t, res.report.Diagnostics[0].Message, builder.ErrIncludeCycle.Error())
	assert.Equal(t, res.before, res.after)
}

func TestBuild_MaxDepth(t *testing.T) {
	b := dsl.New()
	b.File("/ws/a.launch.xml").Group().Group().Group().Node("demo", "deep")

	res := run(t, b, rootInclude("/ws/a.launch.xml"), builder.WithMaxDepth(3))
	require.NoError(t, res.err)
	require.Len(t, res.report.Diagnostics, 1)
	assert.Contains(t, res.report.Diagnostics[0].Message, builder.ErrMaxDepth.Error())
	assert.Empty(t, res.doc.Find("Node"))
}

func TestBuild_ScopeUnderflowIsFatal(t *testing.T) {
	b := dsl.New()
	root := b.File("/ws/root.launch.xml")
	root.Node("demo", "a")
	root.Entity(&launch.PopLaunchConfigurations{})
	root.Node("demo", "never")

	res := run(t, b, rootInclude("/ws/root.launch.xml"))
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, scope.ErrScopeUnderflow)
	assert.Nil(t, res.tree)
	assert.Equal(t, res.before, res.after)
}

func TestBuild_ExplicitFramesInsideScopeAreDiscarded(t *testing.T) {
	b := dsl.New()
	root := b.File("/ws/root.launch.xml")
	g := root.Group()
	g.Entity(&launch.PushLaunchConfigurations{})
	g.Entity(&launch.PushEnvironment{})
	g.Let("inner", "1")
	root.Node("demo", "n").Name("$(var inner unset)")

	res := run(t, b, rootInclude("/ws/root.launch.xml"))
	require.NoError(t, res.err)
	assert.Equal(t, res.before, res.after)
	assert.Equal(t, "unset", field(t, res.doc.Find("Node")[0], "name"))
}

func TestBuild_RootFailures(t *testing.T) {
	b := dsl.New()
	b.File("/ws/a.launch.xml").Node("demo", "n")

	res := run(t, b, rootInclude("/ws/missing.launch.xml"))
	assert.ErrorIs(t, res.err, builder.ErrRootFailed)
	assert.ErrorIs(t, res.err, domain.ErrSourceNotFound)

	absent := rootInclude("/ws/a.launch.xml")
	absent.When = launch.If(launch.Lit("false"))
	res = run(t, dsl.New(), absent)
	assert.ErrorIs(t, res.err, builder.ErrRootFailed)
}

func TestBuild_PanicIsRecovered(t *testing.T) {
	b := dsl.New()
	root := b.File("/ws/root.launch.xml")
	root.Node("demo", "bad").Name("$(boom)")
	root.Node("demo", "good")

	boom := launch.WithSubstitution("boom", func(*launch.Engine, *scope.Context, launch.Call, []string) (string, error) {
		panic("kaboom")
	})
	res := runContext(context.Background(), t, b, rootInclude("/ws/root.launch.xml"), []launch.Option{boom})
	require.NoError(t, res.err)
	require.Len(t, res.report.Diagnostics, 1)
	assert.Contains(t, res.report.Diagnostics[0].Message, "kaboom")
	assert.Len(t, res.doc.Find("Node"), 1)
}

func TestBuild_Hooks(t *testing.T) {
	b := dsl.New()
	root := b.File("/ws/root.launch.xml")
	root.Node("demo", "n")
	root.Node("demo", "broken").Name("$(var nope)")

	var entered, left, failed, done int
	hooks := domain.BuildHooks{
		OnEntityEnter: func(context.Context, *domain.EntityEvent) { entered++ },
		OnEntityLeave: func(context.Context, *domain.EntityEvent) { left++ },
		OnEntityFailed: func(_ context.Context, e *domain.EntityEvent) {
			failed++
			assert.Error(t, e.Err)
			assert.Equal(t, "run-1", e.RunID)
		},
		OnBuildDone: func(_ context.Context, e *domain.BuildEvent) {
			done++
			assert.Equal(t, 1, e.Failed)
			assert.Equal(t, 4, e.Visited)
		},
	}
	res := run(t, b, rootInclude("/ws/root.launch.xml"), builder.WithHooks(hooks), builder.WithRunID("run-1"))
	require.NoError(t, res.err)
	// include, description, two nodes
	assert.Equal(t, 4, entered)
	assert.Equal(t, 3, left)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, done)
}

func TestBuild_Cancelled(t *testing.T) {
	b := dsl.New()
	b.File("/ws/root.launch.xml").Node("demo", "n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := runContext(ctx, t, b, rootInclude("/ws/root.launch.xml"), nil)
	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, context.Canceled))
	assert.True(t, res.report.Interrupted)
	assert.NotNil(t, res.tree)
}
