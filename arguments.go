package launchtree

import (
	"context"
	"path/filepath"

	"github.com/aretw0/launchtree/pkg/launch"
	"github.com/aretw0/launchtree/pkg/scope"
)

// Argument describes a launch argument declared by a fragment.
type Argument struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Default     *string  `json:"default"`
	Choices     []string `json:"choices,omitempty"`
	// Conditional is set when the declaration sits under a condition.
	Conditional bool `json:"conditionally_included"`
}

// Arguments lists the arguments declared by the fragment at path, in document order.
// Included fragments are not followed. Defaults are resolved against an empty
// scope; a default that cannot be resolved there is reported as its source text.
func (a *Analyzer) Arguments(ctx context.Context, path string) ([]Argument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	loader := a.newLoader()
	root, err := loader.Load(path)
	if err != nil {
		return nil, err
	}

	engine := launch.NewEngine(loader, append([]launch.Option{
		launch.WithPackages(a.packages),
		launch.WithLogger(a.logger),
	}, a.engine...)...)
	sc := scope.NewContext(engine, scope.WithGetenv(a.getenv))

	declared := launch.DeclaredArguments(root)
	out := make([]Argument, 0, len(declared))
	for _, d := range declared {
		arg := Argument{
			Name:        d.Name,
			Description: d.Description,
			Choices:     d.Choices,
			Conditional: d.Conditional,
		}
		if d.HasDefault {
			value, err := sc.ResolveSubstitution(d.Default)
			if err != nil {
				value = d.Default.Describe()
			}
			arg.Default = &value
		}
		out = append(out, arg)
	}
	return out, nil
}
