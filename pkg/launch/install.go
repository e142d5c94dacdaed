package launch

import (
	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/registry"
	"github.com/aretw0/launchtree/pkg/scope"
)

// scopedMask is the set of overlays a scoped group or include isolates.
const scopedMask = scope.Variables | scope.Environment | scope.Namespace | scope.Parameters | scope.Remaps

// Install registers every launch family in r, with extractors bound to e.
func (e *Engine) Install(r *registry.Registry) {
	r.Register(FamilyLaunchDescription, registry.Registration{
		Behavior:    domain.BehaviorSpliced,
		Transparent: true,
	})
	r.Register(FamilyTimer, registry.Registration{
		Behavior:    domain.BehaviorSpliced,
		Transparent: true,
	})
	r.Register(FamilyInclude, registry.Registration{
		Behavior: domain.BehaviorStructural,
		Extract:  e.extractInclude,
		Scope:    includeScope,
	})
	r.Register(FamilyGroup, registry.Registration{
		Behavior:  domain.BehaviorStructural,
		Extract:   e.extractGroup,
		Scope:     e.groupScope,
		Container: true,
	})
	r.Register(FamilyNode, registry.Registration{
		Behavior: domain.BehaviorLeaf,
		Extract:  e.extractNode,
	})
	r.Register(FamilyContainer, registry.Registration{
		Behavior: domain.BehaviorStructural,
		Extract:  e.extractNode,
	})
	r.Register(FamilyLoadComposableNodes, registry.Registration{
		Behavior: domain.BehaviorLeaf,
		Extract:  e.extractLoad,
	})

	for _, f := range []domain.Family{
		FamilyDeclareArgument,
		FamilySetLaunchConfiguration,
		FamilyPushLaunchConfigurations,
		FamilyPopLaunchConfigurations,
		FamilySetEnvironment,
		FamilyUnsetEnvironment,
		FamilyPushEnvironment,
		FamilyPopEnvironment,
		FamilyPushRosNamespace,
		FamilySetParameter,
		FamilySetRemap,
	} {
		r.Register(f, registry.Registration{
			Behavior: domain.BehaviorIgnored,
			Visit:    true,
			Invalid:  true,
		})
	}
}

// NewRegistry returns a registry with every launch family installed.
func (e *Engine) NewRegistry() *registry.Registry {
	r := registry.NewRegistry()
	e.Install(r)
	return r
}

func includeScope(_ *scope.Context, ent domain.Entity) (scope.Frame, error) {
	inc, ok := ent.(*IncludeLaunchDescription)
	if !ok || !inc.Scoped {
		return scope.Frame{}, nil
	}
	return scope.Frame{Mask: scopedMask}, nil
}

func (e *Engine) groupScope(c *scope.Context, ent domain.Entity) (scope.Frame, error) {
	g, ok := ent.(*GroupAction)
	if !ok || !g.Scoped {
		return scope.Frame{}, nil
	}
	frame := scope.Frame{Mask: scopedMask, Isolated: !g.Forwarding}
	if len(g.Keep) > 0 {
		frame.Bindings = make(map[string]string, len(g.Keep))
		for _, k := range g.Keep {
			if k.Value.IsZero() {
				if v, ok := c.Lookup(k.Name); ok {
					frame.Bindings[k.Name] = v
				}
				continue
			}
			v, err := e.ResolveSubstitution(c, k.Value)
			if err != nil {
				return scope.Frame{}, err
			}
			frame.Bindings[k.Name] = v
		}
	}
	return frame, nil
}
