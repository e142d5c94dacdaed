package dsl

import (
	"github.com/aretw0/launchtree/internal/frontend"
	"github.com/aretw0/launchtree/pkg/launch"
)

// Node declares a process.
func (s *Block) Node(pkg, exec string) *NodeBuilder {
	n := &launch.Node{Base: s.base(), Package: s.sub(pkg), Executable: s.sub(exec)}
	s.add(n)
	return &NodeBuilder{block: s, node: n}
}

// NodeBuilder configures a node.
type NodeBuilder struct {
	block *Block
	node  *launch.Node
}

// Name sets the node name.
func (n *NodeBuilder) Name(name string) *NodeBuilder {
	n.node.Name = n.block.sub(name)
	return n
}

// Namespace sets the node namespace, relative to the enclosing one unless absolute.
func (n *NodeBuilder) Namespace(ns string) *NodeBuilder {
	n.node.Namespace = n.block.sub(ns)
	return n
}

// Param sets a parameter. The value is kept as text.
func (n *NodeBuilder) Param(name, value string) *NodeBuilder {
	n.node.Parameters = append(n.node.Parameters, n.block.param(name, value, ""))
	return n
}

// TypedParam sets a parameter coerced to typ (int, float, bool, yaml, list_of_*).
func (n *NodeBuilder) TypedParam(name, value, typ string) *NodeBuilder {
	n.node.Parameters = append(n.node.Parameters, n.block.param(name, value, typ))
	return n
}

// ParamFile loads parameters from a file.
func (n *NodeBuilder) ParamFile(path string) *NodeBuilder {
	n.node.Parameters = append(n.node.Parameters, launch.Parameter{From: n.block.sub(path)})
	return n
}

// Remap renames a topic or service.
func (n *NodeBuilder) Remap(from, to string) *NodeBuilder {
	n.node.Remappings = append(n.node.Remappings, launch.Remapping{From: n.block.sub(from), To: n.block.sub(to)})
	return n
}

// Args sets the command line arguments, split on whitespace.
func (n *NodeBuilder) Args(args string) *NodeBuilder {
	n.node.Arguments = frontend.SplitWords(n.block.sub(args))
	return n
}

// If makes the node conditional.
func (n *NodeBuilder) If(expr string) *NodeBuilder {
	n.block.condition(&n.node.Base, expr, false)
	return n
}

// Unless makes the node conditional on expr being false.
func (n *NodeBuilder) Unless(expr string) *NodeBuilder {
	n.block.condition(&n.node.Base, expr, true)
	return n
}

func (s *Block) param(name, value, typ string) launch.Parameter {
	return launch.Parameter{Name: name, Value: s.sub(value), Type: typ}
}

// Container declares a component container named name.
func (s *Block) Container(name string) *ContainerBuilder {
	c := &launch.ComposableNodeContainer{Node: launch.Node{
		Base:       s.base(),
		Package:    launch.Lit("rclcpp_components"),
		Executable: launch.Lit("component_container"),
		Name:       s.sub(name),
	}}
	s.add(c)
	return &ContainerBuilder{block: s, container: c}
}

// ContainerBuilder configures a component container.
type ContainerBuilder struct {
	block     *Block
	container *launch.ComposableNodeContainer
}

// Namespace sets the container namespace.
func (c *ContainerBuilder) Namespace(ns string) *ContainerBuilder {
	c.container.Namespace = c.block.sub(ns)
	return c
}

// Executable overrides the container package and executable.
func (c *ContainerBuilder) Executable(pkg, exec string) *ContainerBuilder {
	c.container.Package = c.block.sub(pkg)
	c.container.Executable = c.block.sub(exec)
	return c
}

// If makes the container conditional.
func (c *ContainerBuilder) If(expr string) *ContainerBuilder {
	c.block.condition(&c.container.Base, expr, false)
	return c
}

// Composable adds a component started with the container.
func (c *ContainerBuilder) Composable(pkg, plugin string) *ComposableBuilder {
	cn := c.block.composable(pkg, plugin)
	c.container.Nodes = append(c.container.Nodes, cn)
	return &ComposableBuilder{block: c.block, node: cn}
}

// Load loads components into a running container.
func (s *Block) Load(target string) *LoadBuilder {
	l := &launch.LoadComposableNodes{Base: s.base(), Target: s.sub(target)}
	s.add(l)
	return &LoadBuilder{block: s, load: l}
}

// LoadBuilder configures a load action.
type LoadBuilder struct {
	block *Block
	load  *launch.LoadComposableNodes
}

// Composable adds a component to load.
func (l *LoadBuilder) Composable(pkg, plugin string) *ComposableBuilder {
	cn := l.block.composable(pkg, plugin)
	l.load.Nodes = append(l.load.Nodes, cn)
	return &ComposableBuilder{block: l.block, node: cn}
}

// If makes the load conditional.
func (l *LoadBuilder) If(expr string) *LoadBuilder {
	l.block.condition(&l.load.Base, expr, false)
	return l
}

func (s *Block) composable(pkg, plugin string) *launch.ComposableNode {
	return &launch.ComposableNode{Base: s.base(), Package: s.sub(pkg), Plugin: s.sub(plugin)}
}

// ComposableBuilder configures a component.
type ComposableBuilder struct {
	block *Block
	node  *launch.ComposableNode
}

// Name sets the component name.
func (c *ComposableBuilder) Name(name string) *ComposableBuilder {
	c.node.Name = c.block.sub(name)
	return c
}

// Namespace sets the component namespace.
func (c *ComposableBuilder) Namespace(ns string) *ComposableBuilder {
	c.node.Namespace = c.block.sub(ns)
	return c
}

// Param sets a component parameter.
func (c *ComposableBuilder) Param(name, value string) *ComposableBuilder {
	c.node.Parameters = append(c.node.Parameters, c.block.param(name, value, ""))
	return c
}

// Remap renames a topic or service of the component.
func (c *ComposableBuilder) Remap(from, to string) *ComposableBuilder {
	c.node.Remappings = append(c.node.Remappings, launch.Remapping{From: c.block.sub(from), To: c.block.sub(to)})
	return c
}

// If makes the component conditional.
func (c *ComposableBuilder) If(expr string) *ComposableBuilder {
	c.block.condition(&c.node.Base, expr, false)
	return c
}
