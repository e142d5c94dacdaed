package frontend

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/launchtree/internal/dto"
	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/launch"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// decoder turns generic launch maps into entities for one file.
type decoder struct {
	path string
}

// decodeDescription decodes the root map of a fragment.
func (d *decoder) decodeDescription(root map[string]any) (*launch.LaunchDescription, error) {
	var l dto.Launch
	if err := d.decode(root, &l); err != nil {
		return nil, err
	}
	entities, err := d.entities(l.Children)
	if err != nil {
		return nil, err
	}
	return &launch.LaunchDescription{
		Base:     launch.Base{File: d.path, Line: l.Line},
		Path:     d.path,
		Entities: entities,
	}, nil
}

func (d *decoder) decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(input); err != nil {
		return &ParseError{Path: d.path, Line: lineFrom(input), Msg: "invalid entity", Err: err}
	}
	return nil
}

func (d *decoder) entities(children []map[string]any) ([]domain.Entity, error) {
	out := make([]domain.Entity, 0, len(children))
	for _, child := range children {
		if len(child) != 1 {
			keys := make([]string, 0, len(child))
			for k := range child {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			return nil, &ParseError{Path: d.path, Msg: fmt.Sprintf("entity must have exactly one key, got %v", keys)}
		}
		for tag, body := range child {
			fields, _ := body.(map[string]any)
			if fields == nil {
				fields = map[string]any{}
			}
			ent, err := d.entity(normalizeKey(tag), fields)
			if err != nil {
				return nil, err
			}
			out = append(out, ent)
		}
	}
	return out, nil
}

func (d *decoder) entity(tag string, fields map[string]any) (domain.Entity, error) {
	switch tag {
	case "arg":
		return d.arg(fields)
	case "let":
		var v dto.Let
		if err := d.decode(fields, &v); err != nil {
			return nil, err
		}
		base, err := d.base(v.Common)
		if err != nil {
			return nil, err
		}
		value, err := d.subst(v.Value, v.Line)
		if err != nil {
			return nil, err
		}
		return &launch.SetLaunchConfiguration{Base: base, Name: launch.Lit(v.Name), Value: value}, nil
	case "include":
		return d.include(fields)
	case "group":
		return d.group(fields)
	case "node":
		var v dto.Node
		if err := d.decode(fields, &v); err != nil {
			return nil, err
		}
		return d.node(v)
	case "node_container":
		var v dto.Node
		if err := d.decode(fields, &v); err != nil {
			return nil, err
		}
		node, err := d.node(v)
		if err != nil {
			return nil, err
		}
		nodes, err := d.composables(v.Composable)
		if err != nil {
			return nil, err
		}
		return &launch.ComposableNodeContainer{Node: *node, Nodes: nodes}, nil
	case "load_composable_node":
		var v dto.LoadComposable
		if err := d.decode(fields, &v); err != nil {
			return nil, err
		}
		base, err := d.base(v.Common)
		if err != nil {
			return nil, err
		}
		target, err := d.subst(v.Target, v.Line)
		if err != nil {
			return nil, err
		}
		nodes, err := d.composables(v.Composable)
		if err != nil {
			return nil, err
		}
		return &launch.LoadComposableNodes{Base: base, Target: target, Nodes: nodes}, nil
	case "set_env", "unset_env":
		var v dto.Env
		if err := d.decode(fields, &v); err != nil {
			return nil, err
		}
		base, err := d.base(v.Common)
		if err != nil {
			return nil, err
		}
		name, err := d.subst(v.Name, v.Line)
		if err != nil {
			return nil, err
		}
		if tag == "unset_env" {
			return &launch.UnsetEnvironmentVariable{Base: base, Name: name}, nil
		}
		value, err := d.subst(v.Value, v.Line)
		if err != nil {
			return nil, err
		}
		return &launch.SetEnvironmentVariable{Base: base, Name: name, Value: value}, nil
	case "push_env", "pop_env", "push_launch_configurations", "pop_launch_configurations":
		var v dto.Common
		if err := d.decode(fields, &v); err != nil {
			return nil, err
		}
		base, err := d.base(v)
		if err != nil {
			return nil, err
		}
		switch tag {
		case "push_env":
			return &launch.PushEnvironment{Base: base}, nil
		case "pop_env":
			return &launch.PopEnvironment{Base: base}, nil
		case "push_launch_configurations":
			return &launch.PushLaunchConfigurations{Base: base}, nil
		default:
			return &launch.PopLaunchConfigurations{Base: base}, nil
		}
	case "push_ros_namespace":
		var v dto.RosNamespace
		if err := d.decode(fields, &v); err != nil {
			return nil, err
		}
		base, err := d.base(v.Common)
		if err != nil {
			return nil, err
		}
		ns, err := d.subst(v.Namespace, v.Line)
		if err != nil {
			return nil, err
		}
		return &launch.PushRosNamespace{Base: base, Namespace: ns}, nil
	case "set_parameter":
		var v dto.SetParameter
		if err := d.decode(fields, &v); err != nil {
			return nil, err
		}
		base, err := d.base(v.Common)
		if err != nil {
			return nil, err
		}
		text, typ := valueText(v.Value, v.Type)
		value, err := d.subst(text, v.Line)
		if err != nil {
			return nil, err
		}
		return &launch.SetParameter{Base: base, Name: v.Name, Value: value, Type: typ}, nil
	case "set_remap":
		var v dto.SetRemap
		if err := d.decode(fields, &v); err != nil {
			return nil, err
		}
		base, err := d.base(v.Common)
		if err != nil {
			return nil, err
		}
		from, err := d.subst(v.From, v.Line)
		if err != nil {
			return nil, err
		}
		to, err := d.subst(v.To, v.Line)
		if err != nil {
			return nil, err
		}
		return &launch.SetRemap{Base: base, From: from, To: to}, nil
	case "timer":
		var v dto.Timer
		if err := d.decode(fields, &v); err != nil {
			return nil, err
		}
		base, err := d.base(v.Common)
		if err != nil {
			return nil, err
		}
		period, err := d.subst(v.Period, v.Line)
		if err != nil {
			return nil, err
		}
		children, err := d.entities(v.Children)
		if err != nil {
			return nil, err
		}
		return &launch.TimerAction{Base: base, Period: period, Entities: children}, nil
	default:
		return &launch.Unknown{Base: launch.Base{File: d.path, Line: lineFrom(fields)}, Tag: tag}, nil
	}
}

func (d *decoder) arg(fields map[string]any) (domain.Entity, error) {
	var v dto.Arg
	if err := d.decode(fields, &v); err != nil {
		return nil, err
	}
	base, err := d.base(v.Common)
	if err != nil {
		return nil, err
	}
	decl := &launch.DeclareLaunchArgument{Base: base, Name: v.Name, Description: v.Description}
	if v.Default != nil {
		decl.HasDefault = true
		if decl.Default, err = d.subst(*v.Default, v.Line); err != nil {
			return nil, err
		}
	}
	for _, c := range v.Choices {
		decl.Choices = append(decl.Choices, c.Value)
	}
	return decl, nil
}

func (d *decoder) include(fields map[string]any) (domain.Entity, error) {
	var v dto.Include
	if err := d.decode(fields, &v); err != nil {
		return nil, err
	}
	base, err := d.base(v.Common)
	if err != nil {
		return nil, err
	}
	file, err := d.subst(v.File, v.Line)
	if err != nil {
		return nil, err
	}
	if file.IsZero() {
		return nil, &ParseError{Path: d.path, Line: v.Line, Msg: "include without file"}
	}
	args, err := d.bindings(v.Args, v.Line)
	if err != nil {
		return nil, err
	}
	return &launch.IncludeLaunchDescription{Base: base, File: file, Arguments: args, Scoped: v.Scoped}, nil
}

func (d *decoder) group(fields map[string]any) (domain.Entity, error) {
	var v dto.Group
	if err := d.decode(fields, &v); err != nil {
		return nil, err
	}
	base, err := d.base(v.Common)
	if err != nil {
		return nil, err
	}
	ns, err := d.subst(v.Namespace, v.Line)
	if err != nil {
		return nil, err
	}
	keep, err := d.bindings(v.Keep, v.Line)
	if err != nil {
		return nil, err
	}
	children, err := d.entities(v.Children)
	if err != nil {
		return nil, err
	}
	return &launch.GroupAction{
		Base:       base,
		Scoped:     v.Scoped == nil || *v.Scoped,
		Forwarding: v.Forwarding == nil || *v.Forwarding,
		Namespace:  ns,
		Keep:       keep,
		Entities:   children,
	}, nil
}

func (d *decoder) node(v dto.Node) (*launch.Node, error) {
	base, err := d.base(v.Common)
	if err != nil {
		return nil, err
	}
	n := &launch.Node{Base: base}
	for _, f := range []struct {
		dst *domain.Substitution
		src string
	}{
		{&n.Package, v.Package},
		{&n.Executable, v.Executable},
		{&n.Name, v.Name},
		{&n.Namespace, v.Namespace},
	} {
		if *f.dst, err = d.subst(f.src, v.Line); err != nil {
			return nil, err
		}
	}
	args, err := d.subst(v.Args, v.Line)
	if err != nil {
		return nil, err
	}
	n.Arguments = SplitWords(args)
	if n.Parameters, err = d.params(v.Params, v.Line); err != nil {
		return nil, err
	}
	if n.Remappings, err = d.remaps(v.Remaps, v.Line); err != nil {
		return nil, err
	}
	return n, nil
}

func (d *decoder) composables(items []dto.ComposableNode) ([]*launch.ComposableNode, error) {
	out := make([]*launch.ComposableNode, 0, len(items))
	for _, item := range items {
		base, err := d.base(item.Common)
		if err != nil {
			return nil, err
		}
		cn := &launch.ComposableNode{Base: base}
		for _, f := range []struct {
			dst *domain.Substitution
			src string
		}{
			{&cn.Package, item.Package},
			{&cn.Plugin, item.Plugin},
			{&cn.Name, item.Name},
			{&cn.Namespace, item.Namespace},
		} {
			if *f.dst, err = d.subst(f.src, item.Line); err != nil {
				return nil, err
			}
		}
		if cn.Parameters, err = d.params(item.Params, item.Line); err != nil {
			return nil, err
		}
		if cn.Remappings, err = d.remaps(item.Remaps, item.Line); err != nil {
			return nil, err
		}
		out = append(out, cn)
	}
	return out, nil
}

func (d *decoder) params(items []dto.Param, line int) ([]launch.Parameter, error) {
	out := make([]launch.Parameter, 0, len(items))
	for _, item := range items {
		p := launch.Parameter{Name: item.Name, Sep: item.Sep}
		var err error
		if item.From != "" {
			if p.From, err = d.subst(item.From, line); err != nil {
				return nil, err
			}
			out = append(out, p)
			continue
		}
		if len(item.Children) > 0 {
			if p.Children, err = d.params(item.Children, line); err != nil {
				return nil, err
			}
			out = append(out, p)
			continue
		}
		text, typ := valueText(item.Value, item.Type)
		p.Type = typ
		if p.Value, err = d.subst(text, line); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (d *decoder) remaps(items []dto.Remap, line int) ([]launch.Remapping, error) {
	out := make([]launch.Remapping, 0, len(items))
	for _, item := range items {
		from, err := d.subst(item.From, line)
		if err != nil {
			return nil, err
		}
		to, err := d.subst(item.To, line)
		if err != nil {
			return nil, err
		}
		out = append(out, launch.Remapping{From: from, To: to})
	}
	return out, nil
}

func (d *decoder) bindings(items []dto.NameValue, line int) ([]launch.Binding, error) {
	out := make([]launch.Binding, 0, len(items))
	for _, item := range items {
		b := launch.Binding{Name: item.Name}
		if item.Value != nil {
			v, err := d.subst(*item.Value, line)
			if err != nil {
				return nil, err
			}
			if v == nil {
				v = domain.Substitution{launch.Text("")}
			}
			b.Value = v
		}
		out = append(out, b)
	}
	return out, nil
}

func (d *decoder) base(c dto.Common) (launch.Base, error) {
	base := launch.Base{File: d.path, Line: c.Line}
	switch {
	case c.If != "" && c.Unless != "":
		return base, &ParseError{Path: d.path, Line: c.Line, Msg: "'if' and 'unless' are mutually exclusive"}
	case c.If != "":
		expr, err := d.subst(c.If, c.Line)
		if err != nil {
			return base, err
		}
		base.When = launch.If(expr)
	case c.Unless != "":
		expr, err := d.subst(c.Unless, c.Line)
		if err != nil {
			return base, err
		}
		base.When = launch.Unless(expr)
	}
	return base, nil
}

func (d *decoder) subst(s string, line int) (domain.Substitution, error) {
	out, err := ParseSubstitution(s, d.path)
	if err != nil {
		return nil, &ParseError{Path: d.path, Line: line, Msg: "invalid substitution", Err: err}
	}
	return out, nil
}

// valueText renders a decoded parameter value as text. Non-string YAML values
// are typed as yaml so they keep their type through coercion.
func valueText(v any, typ string) (string, string) {
	switch val := v.(type) {
	case nil:
		return "", typ
	case string:
		return val, typ
	case bool:
		return strconv.FormatBool(val), orYAML(typ)
	case int:
		return strconv.Itoa(val), orYAML(typ)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), orYAML(typ)
	default:
		out, err := yaml.Marshal(val)
		if err != nil {
			return fmt.Sprint(val), typ
		}
		return strings.TrimSpace(string(out)), orYAML(typ)
	}
}

func orYAML(typ string) string {
	if typ == "" {
		return "yaml"
	}
	return typ
}

func lineFrom(input any) int {
	if m, ok := input.(map[string]any); ok {
		return lineOf(m)
	}
	return 0
}
