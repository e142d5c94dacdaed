package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/launchtree/internal/frontend"
	"github.com/aretw0/launchtree/pkg/adapters/memory"
	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/launch"
)

// Builder collects launch files.
type Builder struct {
	files map[string]*File
	order []string
	errs  []error
}

// New creates a new launch builder.
func New() *Builder {
	return &Builder{files: make(map[string]*File)}
}

// File starts a launch file at path.
// If the file already exists, it returns the existing builder.
func (b *Builder) File(path string) *File {
	if f, ok := b.files[path]; ok {
		return f
	}
	desc := &launch.LaunchDescription{Base: launch.Base{File: path}, Path: path}
	f := &File{Block: Block{b: b, file: path, add: func(e domain.Entity) {
		desc.Entities = append(desc.Entities, e)
	}}, desc: desc}
	b.files[path] = f
	b.order = append(b.order, path)
	return f
}

// Build compiles the files into a memory loader.
// It fails if any substitution could not be parsed.
func (b *Builder) Build() (*memory.Loader, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	descs := make([]*launch.LaunchDescription, 0, len(b.order))
	for _, path := range b.order {
		descs = append(descs, b.files[path].desc)
	}
	loader, err := memory.NewFromDescriptions(descs...)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}

// File is the root block of one launch file.
type File struct {
	Block
	desc *launch.LaunchDescription
}

// Description returns the launch description built so far.
func (f *File) Description() *launch.LaunchDescription {
	return f.desc
}

// Block appends entities to a file, group or timer.
type Block struct {
	b    *Builder
	file string
	add  func(domain.Entity)
}

func (s *Block) sub(str string) domain.Substitution {
	out, err := frontend.ParseSubstitution(str, s.file)
	if err != nil {
		s.b.errs = append(s.b.errs, fmt.Errorf("%s: %w", s.file, err))
		return nil
	}
	return out
}

func (s *Block) base() launch.Base {
	return launch.Base{File: s.file}
}

func (s *Block) condition(base *launch.Base, expr string, unless bool) {
	if unless {
		base.When = launch.Unless(s.sub(expr))
		return
	}
	base.When = launch.If(s.sub(expr))
}

// Let binds a launch configuration.
func (s *Block) Let(name, value string) *Block {
	s.add(&launch.SetLaunchConfiguration{Base: s.base(), Name: launch.Lit(name), Value: s.sub(value)})
	return s
}

// SetEnv sets an environment variable for later entities.
func (s *Block) SetEnv(name, value string) *Block {
	s.add(&launch.SetEnvironmentVariable{Base: s.base(), Name: s.sub(name), Value: s.sub(value)})
	return s
}

// UnsetEnv removes an environment variable for later entities.
func (s *Block) UnsetEnv(name string) *Block {
	s.add(&launch.UnsetEnvironmentVariable{Base: s.base(), Name: s.sub(name)})
	return s
}

// PushRosNamespace nests later entities under ns.
func (s *Block) PushRosNamespace(ns string) *Block {
	s.add(&launch.PushRosNamespace{Base: s.base(), Namespace: s.sub(ns)})
	return s
}

// SetParameter sets a parameter on every later node.
func (s *Block) SetParameter(name, value string) *Block {
	s.add(&launch.SetParameter{Base: s.base(), Name: name, Value: s.sub(value)})
	return s
}

// SetRemap adds a remapping to every later node.
func (s *Block) SetRemap(from, to string) *Block {
	s.add(&launch.SetRemap{Base: s.base(), From: s.sub(from), To: s.sub(to)})
	return s
}

// Entity appends a prebuilt entity.
func (s *Block) Entity(e domain.Entity) *Block {
	s.add(e)
	return s
}

// Unknown appends an entity of a family nothing knows how to handle.
func (s *Block) Unknown(tag string) *Block {
	s.add(&launch.Unknown{Base: s.base(), Tag: tag})
	return s
}

// Arg declares a launch argument.
func (s *Block) Arg(name string) *ArgBuilder {
	a := &launch.DeclareLaunchArgument{Base: s.base(), Name: name}
	s.add(a)
	return &ArgBuilder{block: s, arg: a}
}

// Include loads another launch file.
func (s *Block) Include(file string) *IncludeBuilder {
	inc := &launch.IncludeLaunchDescription{Base: s.base(), File: s.sub(file)}
	s.add(inc)
	return &IncludeBuilder{block: s, inc: inc}
}

// Group starts a scoped, forwarding group.
func (s *Block) Group() *GroupBuilder {
	g := &launch.GroupAction{Base: s.base(), Scoped: true, Forwarding: true}
	s.add(g)
	return &GroupBuilder{
		Block: Block{b: s.b, file: s.file, add: func(e domain.Entity) { g.Entities = append(g.Entities, e) }},
		group: g,
	}
}

// Timer starts a timer action. Its children are launched after period seconds.
func (s *Block) Timer(period string) *TimerBuilder {
	t := &launch.TimerAction{Base: s.base(), Period: s.sub(period)}
	s.add(t)
	return &TimerBuilder{
		Block: Block{b: s.b, file: s.file, add: func(e domain.Entity) { t.Entities = append(t.Entities, e) }},
		timer: t,
	}
}

// ArgBuilder configures a declared argument.
type ArgBuilder struct {
	block *Block
	arg   *launch.DeclareLaunchArgument
}

// Default sets the default value.
func (a *ArgBuilder) Default(value string) *ArgBuilder {
	a.arg.Default = a.block.sub(value)
	a.arg.HasDefault = true
	return a
}

// Description documents the argument.
func (a *ArgBuilder) Description(text string) *ArgBuilder {
	a.arg.Description = text
	return a
}

// Choices restricts the accepted values.
func (a *ArgBuilder) Choices(values ...string) *ArgBuilder {
	a.arg.Choices = append(a.arg.Choices, values...)
	return a
}

// If makes the declaration conditional.
func (a *ArgBuilder) If(expr string) *ArgBuilder {
	a.block.condition(&a.arg.Base, expr, false)
	return a
}

// IncludeBuilder configures an include.
type IncludeBuilder struct {
	block *Block
	inc   *launch.IncludeLaunchDescription
}

// Arg passes a launch configuration to the included file.
func (i *IncludeBuilder) Arg(name, value string) *IncludeBuilder {
	v := i.block.sub(value)
	if v == nil {
		v = domain.Substitution{launch.Text("")}
	}
	i.inc.Arguments = append(i.inc.Arguments, launch.Binding{Name: name, Value: v})
	return i
}

// Scoped keeps the included file's launch configurations from leaking into later siblings.
func (i *IncludeBuilder) Scoped() *IncludeBuilder {
	i.inc.Scoped = true
	return i
}

// If makes the include conditional.
func (i *IncludeBuilder) If(expr string) *IncludeBuilder {
	i.block.condition(&i.inc.Base, expr, false)
	return i
}

// Unless makes the include conditional on expr being false.
func (i *IncludeBuilder) Unless(expr string) *IncludeBuilder {
	i.block.condition(&i.inc.Base, expr, true)
	return i
}

// GroupBuilder configures a group and appends its children.
type GroupBuilder struct {
	Block
	group *launch.GroupAction
}

// Namespace nests the group's children under ns.
func (g *GroupBuilder) Namespace(ns string) *GroupBuilder {
	g.group.Namespace = g.sub(ns)
	return g
}

// Unscoped lets changes made inside the group leak to later siblings.
func (g *GroupBuilder) Unscoped() *GroupBuilder {
	g.group.Scoped = false
	return g
}

// Isolated hides outer launch configurations except the kept ones.
func (g *GroupBuilder) Isolated() *GroupBuilder {
	g.group.Forwarding = false
	return g
}

// Keep forwards a launch configuration into an isolated group.
// An empty value keeps the current binding.
func (g *GroupBuilder) Keep(name, value string) *GroupBuilder {
	g.group.Keep = append(g.group.Keep, launch.Binding{Name: name, Value: g.sub(value)})
	return g
}

// If makes the group conditional.
func (g *GroupBuilder) If(expr string) *GroupBuilder {
	g.condition(&g.group.Base, expr, false)
	return g
}

// Unless makes the group conditional on expr being false.
func (g *GroupBuilder) Unless(expr string) *GroupBuilder {
	g.condition(&g.group.Base, expr, true)
	return g
}

// TimerBuilder appends the children of a timer.
type TimerBuilder struct {
	Block
	timer *launch.TimerAction
}

// If makes the timer conditional.
func (t *TimerBuilder) If(expr string) *TimerBuilder {
	t.condition(&t.timer.Base, expr, false)
	return t
}
