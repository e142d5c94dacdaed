package launch

import (
	"fmt"

	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/scope"
)

func (e *Engine) extractInclude(_ *scope.Context, ent domain.Entity, x *domain.Expansion) (domain.Attributes, error) {
	if x == nil || x.Resolved[ResolvedPath] == "" {
		return nil, fmt.Errorf("include %T was not expanded", ent)
	}
	path := e.resolveSymlink(x.Resolved[ResolvedPath])
	var pkg any
	if e.packages != nil {
		if name := e.packages.PackageOf(path); name != "" {
			pkg = name
		}
	}
	return domain.Attributes{
		{Key: "path", Value: path},
		{Key: "package", Value: pkg},
	}, nil
}

func (e *Engine) extractGroup(_ *scope.Context, ent domain.Entity, _ *domain.Expansion) (domain.Attributes, error) {
	g, ok := ent.(*GroupAction)
	if !ok {
		return nil, fmt.Errorf("expected *GroupAction, got %T", ent)
	}
	return domain.Attributes{
		{Key: "scoped", Value: g.Scoped},
		{Key: "forwarding", Value: g.Forwarding},
	}, nil
}

func (e *Engine) extractNode(c *scope.Context, ent domain.Entity, _ *domain.Expansion) (domain.Attributes, error) {
	var n *Node
	switch v := ent.(type) {
	case *Node:
		n = v
	case *ComposableNodeContainer:
		n = &v.Node
	default:
		return nil, fmt.Errorf("expected a node, got %T", ent)
	}

	pkg, err := e.ResolveSubstitution(c, n.Package)
	if err != nil {
		return nil, err
	}
	exec, err := e.ResolveSubstitution(c, n.Executable)
	if err != nil {
		return nil, err
	}
	name, err := e.resolveOptional(c, n.Name)
	if err != nil {
		return nil, err
	}
	ns, err := e.nodeNamespace(c, n.Namespace)
	if err != nil {
		return nil, err
	}
	params, err := e.nodeParameters(c, n.Parameters)
	if err != nil {
		return nil, err
	}
	remaps, err := e.nodeRemappings(c, n.Remappings)
	if err != nil {
		return nil, err
	}
	args := make([]string, 0, len(n.Arguments))
	for _, arg := range n.Arguments {
		v, err := e.ResolveSubstitution(c, arg)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	return domain.Attributes{
		{Key: "package", Value: pkg},
		{Key: "executable", Value: exec},
		{Key: "name", Value: name},
		{Key: "namespace", Value: ns},
		{Key: "parameters", Value: params},
		{Key: "remappings", Value: remaps},
		{Key: "arguments", Value: args},
	}, nil
}

func (e *Engine) extractLoad(c *scope.Context, ent domain.Entity, x *domain.Expansion) (domain.Attributes, error) {
	load, ok := ent.(*LoadComposableNodes)
	if !ok {
		return nil, fmt.Errorf("expected *LoadComposableNodes, got %T", ent)
	}
	if x == nil || x.Resolved[ResolvedTargetContainer] == "" {
		return nil, fmt.Errorf("load target was not resolved")
	}
	target := x.Resolved[ResolvedTargetContainer]

	loaded := make([]domain.Attributes, 0, len(load.Nodes))
	for _, cn := range load.Nodes {
		ok, err := e.EvaluateCondition(c, cn.Condition())
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		attrs, err := e.composableNode(c, cn, target)
		if err != nil {
			return nil, err
		}
		loaded = append(loaded, attrs)
	}

	return domain.Attributes{
		{Key: "target_container", Value: target},
		{Key: "loaded_nodes", Value: loaded},
	}, nil
}

func (e *Engine) composableNode(c *scope.Context, cn *ComposableNode, target string) (domain.Attributes, error) {
	pkg, err := e.ResolveSubstitution(c, cn.Package)
	if err != nil {
		return nil, err
	}
	plugin, err := e.ResolveSubstitution(c, cn.Plugin)
	if err != nil {
		return nil, err
	}
	name, err := e.resolveOptional(c, cn.Name)
	if err != nil {
		return nil, err
	}
	ns, err := e.nodeNamespace(c, cn.Namespace)
	if err != nil {
		return nil, err
	}
	params, err := e.nodeParameters(c, cn.Parameters)
	if err != nil {
		return nil, err
	}
	remaps, err := e.nodeRemappings(c, cn.Remappings)
	if err != nil {
		return nil, err
	}
	return domain.Attributes{
		{Key: "package", Value: pkg},
		{Key: "plugin", Value: plugin},
		{Key: "namespace", Value: ns},
		{Key: "name", Value: name},
		{Key: "parameters", Value: params},
		{Key: "remappings", Value: remaps},
		{Key: "target_container", Value: target},
	}, nil
}

// nodeRemappings lists the global remap overlay followed by the node's own remappings.
func (e *Engine) nodeRemappings(c *scope.Context, own []Remapping) ([]domain.Attributes, error) {
	global := c.Remaps()
	out := make([]domain.Attributes, 0, len(global)+len(own))
	for _, r := range global {
		out = append(out, domain.Attributes{{Key: "from", Value: r.From}, {Key: "to", Value: r.To}})
	}
	for _, r := range own {
		from, err := e.ResolveSubstitution(c, r.From)
		if err != nil {
			return nil, err
		}
		to, err := e.ResolveSubstitution(c, r.To)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Attributes{{Key: "from", Value: from}, {Key: "to", Value: to}})
	}
	return out, nil
}
