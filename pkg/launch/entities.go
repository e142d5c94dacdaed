package launch

import (
	"fmt"

	"github.com/aretw0/launchtree/pkg/domain"
)

// Base carries the fields shared by every entity.
type Base struct {
	When *domain.Condition
	// File and Line locate the entity in its source, when known.
	File string
	Line int
}

// Condition returns the entity's predicate, nil when unconditional.
func (b *Base) Condition() *domain.Condition {
	return b.When
}

// Location returns "file:line", or just the file when the line is unknown.
func (b *Base) Location() string {
	if b.Line > 0 {
		return fmt.Sprintf("%s:%d", b.File, b.Line)
	}
	return b.File
}

// Binding is a name/value pair such as an include argument or a group "keep" entry.
type Binding struct {
	Name  string
	Value domain.Substitution
}

// LaunchDescription is the content of one launch fragment.
type LaunchDescription struct {
	Base
	Path     string
	Entities []domain.Entity
}

func (*LaunchDescription) Family() domain.Family { return FamilyLaunchDescription }

// IncludeLaunchDescription loads another fragment. Arguments are bound as launch
// configurations before the fragment's entities run.
type IncludeLaunchDescription struct {
	Base
	File      domain.Substitution
	Arguments []Binding
	// Scoped isolates the included fragment's launch configurations from later siblings.
	Scoped bool
}

func (*IncludeLaunchDescription) Family() domain.Family { return FamilyInclude }

// GroupAction groups entities, optionally inside a scope.
type GroupAction struct {
	Base
	Scoped     bool
	Forwarding bool
	Namespace  domain.Substitution
	// Keep lists the launch configurations visible inside a non-forwarding group.
	Keep     []Binding
	Entities []domain.Entity
}

func (*GroupAction) Family() domain.Family { return FamilyGroup }

// Parameter is one parameter declaration of a node.
// Exactly one of Value, From or Children is meaningful.
type Parameter struct {
	Name     string
	Value    domain.Substitution
	Type     string
	Sep      string
	From     domain.Substitution
	Children []Parameter
}

// Remapping renames a topic or service for one node.
type Remapping struct {
	From domain.Substitution
	To   domain.Substitution
}

// Node declares a process.
type Node struct {
	Base
	Package    domain.Substitution
	Executable domain.Substitution
	Name       domain.Substitution
	Namespace  domain.Substitution
	Parameters []Parameter
	Remappings []Remapping
	Arguments  []domain.Substitution
}

func (*Node) Family() domain.Family { return FamilyNode }

// ComposableNode is a plugin loaded into a container.
type ComposableNode struct {
	Base
	Package    domain.Substitution
	Plugin     domain.Substitution
	Name       domain.Substitution
	Namespace  domain.Substitution
	Parameters []Parameter
	Remappings []Remapping
}

// ComposableNodeContainer is a node hosting composable nodes.
// Inline composable nodes are loaded into the container itself.
type ComposableNodeContainer struct {
	Node
	Nodes []*ComposableNode
}

func (*ComposableNodeContainer) Family() domain.Family { return FamilyContainer }

// LoadComposableNodes loads composable nodes into a previously declared container.
type LoadComposableNodes struct {
	Base
	Target domain.Substitution
	Nodes  []*ComposableNode
}

func (*LoadComposableNodes) Family() domain.Family { return FamilyLoadComposableNodes }

// DeclareLaunchArgument declares a launch argument and binds its default when unset.
type DeclareLaunchArgument struct {
	Base
	Name        string
	Default     domain.Substitution
	HasDefault  bool
	Description string
	Choices     []string
}

func (*DeclareLaunchArgument) Family() domain.Family { return FamilyDeclareArgument }

// SetLaunchConfiguration binds a launch configuration in the current scope.
type SetLaunchConfiguration struct {
	Base
	Name  domain.Substitution
	Value domain.Substitution
}

func (*SetLaunchConfiguration) Family() domain.Family { return FamilySetLaunchConfiguration }

// PushLaunchConfigurations opens a launch configuration frame.
type PushLaunchConfigurations struct{ Base }

func (*PushLaunchConfigurations) Family() domain.Family { return FamilyPushLaunchConfigurations }

// PopLaunchConfigurations closes a launch configuration frame.
type PopLaunchConfigurations struct{ Base }

func (*PopLaunchConfigurations) Family() domain.Family { return FamilyPopLaunchConfigurations }

// SetEnvironmentVariable overrides an environment variable.
type SetEnvironmentVariable struct {
	Base
	Name  domain.Substitution
	Value domain.Substitution
}

func (*SetEnvironmentVariable) Family() domain.Family { return FamilySetEnvironment }

// UnsetEnvironmentVariable hides an environment variable.
type UnsetEnvironmentVariable struct {
	Base
	Name domain.Substitution
}

func (*UnsetEnvironmentVariable) Family() domain.Family { return FamilyUnsetEnvironment }

// PushEnvironment opens an environment frame.
type PushEnvironment struct{ Base }

func (*PushEnvironment) Family() domain.Family { return FamilyPushEnvironment }

// PopEnvironment closes an environment frame.
type PopEnvironment struct{ Base }

func (*PopEnvironment) Family() domain.Family { return FamilyPopEnvironment }

// PushRosNamespace joins a namespace onto the current one until the enclosing scope ends.
type PushRosNamespace struct {
	Base
	Namespace domain.Substitution
}

func (*PushRosNamespace) Family() domain.Family { return FamilyPushRosNamespace }

// SetParameter sets a parameter on every node declared later in the same scope.
type SetParameter struct {
	Base
	Name  string
	Value domain.Substitution
	Type  string
}

func (*SetParameter) Family() domain.Family { return FamilySetParameter }

// SetRemap adds a remapping to every node declared later in the same scope.
type SetRemap struct {
	Base
	From domain.Substitution
	To   domain.Substitution
}

func (*SetRemap) Family() domain.Family { return FamilySetRemap }

// TimerAction delays its entities. The delay does not affect the analysis.
type TimerAction struct {
	Base
	Period   domain.Substitution
	Entities []domain.Entity
}

func (*TimerAction) Family() domain.Family { return FamilyTimer }

// Unknown stands for an element the frontend does not recognize.
type Unknown struct {
	Base
	Tag string
}

func (u *Unknown) Family() domain.Family { return domain.Family(unknownPrefix + u.Tag) }
