package dto

// The types below describe launch entities as decoded from a generic map.
// Both the XML and the YAML frontends turn their input into maps shaped like
// the YAML launch format, which are then decoded with mapstructure.

// Keys synthesized by the frontends. They are not valid XML names, so they
// never collide with attributes.
const (
	LineKey     = "#line"
	ChildrenKey = "#children"
)

// Common holds the fields every entity may carry.
type Common struct {
	If     string `mapstructure:"if"`
	Unless string `mapstructure:"unless"`
	Line   int    `mapstructure:"#line"`
}

// Launch is the root of a fragment.
type Launch struct {
	Common   `mapstructure:",squash"`
	Children []map[string]any `mapstructure:"#children"`
}

// Arg declares a launch argument.
type Arg struct {
	Common      `mapstructure:",squash"`
	Name        string   `mapstructure:"name"`
	Default     *string  `mapstructure:"default"`
	Description string   `mapstructure:"description"`
	Choices     []Choice `mapstructure:"choice"`
}

// Choice is one allowed value of an argument.
type Choice struct {
	Value string `mapstructure:"value"`
}

// Let binds a launch configuration.
type Let struct {
	Common `mapstructure:",squash"`
	Name   string `mapstructure:"name"`
	Value  string `mapstructure:"value"`
}

// NameValue is a name/value pair (include arguments, group keep entries).
type NameValue struct {
	Name  string  `mapstructure:"name"`
	Value *string `mapstructure:"value"`
}

// Include loads another fragment.
type Include struct {
	Common `mapstructure:",squash"`
	File   string      `mapstructure:"file"`
	Scoped bool        `mapstructure:"scoped"`
	Args   []NameValue `mapstructure:"arg"`
}

// Group groups entities.
type Group struct {
	Common     `mapstructure:",squash"`
	Scoped     *bool            `mapstructure:"scoped"`
	Forwarding *bool            `mapstructure:"forwarding"`
	Namespace  string           `mapstructure:"ns"`
	Keep       []NameValue      `mapstructure:"keep"`
	Children   []map[string]any `mapstructure:"#children"`
}

// Param is a node parameter, a nested parameter group or a parameter file.
type Param struct {
	Name     string  `mapstructure:"name"`
	Value    any     `mapstructure:"value"`
	Type     string  `mapstructure:"type"`
	Sep      string  `mapstructure:"value_sep"`
	From     string  `mapstructure:"from"`
	Children []Param `mapstructure:"param"`
}

// Remap renames a topic or service.
type Remap struct {
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
}

// Node declares a process. Containers share the same shape.
type Node struct {
	Common     `mapstructure:",squash"`
	Package    string           `mapstructure:"pkg"`
	Executable string           `mapstructure:"exec"`
	Name       string           `mapstructure:"name"`
	Namespace  string           `mapstructure:"namespace"`
	Args       string           `mapstructure:"args"`
	Params     []Param          `mapstructure:"param"`
	Remaps     []Remap          `mapstructure:"remap"`
	Composable []ComposableNode `mapstructure:"composable_node"`
}

// ComposableNode is a plugin loaded into a container.
type ComposableNode struct {
	Common    `mapstructure:",squash"`
	Package   string  `mapstructure:"pkg"`
	Plugin    string  `mapstructure:"plugin"`
	Name      string  `mapstructure:"name"`
	Namespace string  `mapstructure:"namespace"`
	Params    []Param `mapstructure:"param"`
	Remaps    []Remap `mapstructure:"remap"`
}

// LoadComposable loads composable nodes into an existing container.
type LoadComposable struct {
	Common     `mapstructure:",squash"`
	Target     string           `mapstructure:"target"`
	Composable []ComposableNode `mapstructure:"composable_node"`
}

// Env sets or unsets an environment variable.
type Env struct {
	Common `mapstructure:",squash"`
	Name   string `mapstructure:"name"`
	Value  string `mapstructure:"value"`
}

// RosNamespace pushes a namespace.
type RosNamespace struct {
	Common    `mapstructure:",squash"`
	Namespace string `mapstructure:"namespace"`
}

// SetParameter sets a global parameter.
type SetParameter struct {
	Common `mapstructure:",squash"`
	Name   string `mapstructure:"name"`
	Value  any    `mapstructure:"value"`
	Type   string `mapstructure:"type"`
}

// Timer delays its children.
type Timer struct {
	Common   `mapstructure:",squash"`
	Period   string           `mapstructure:"period"`
	Children []map[string]any `mapstructure:"#children"`
}

// SetRemap adds a global remapping.
type SetRemap struct {
	Common `mapstructure:",squash"`
	From   string `mapstructure:"from"`
	To     string `mapstructure:"to"`
}
