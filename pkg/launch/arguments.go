package launch

import "github.com/aretw0/launchtree/pkg/domain"

// DeclaredArgument is an argument declaration found in a fragment.
type DeclaredArgument struct {
	*DeclareLaunchArgument
	// Conditional is set when the declaration sits under a condition,
	// so it may not take effect on every launch.
	Conditional bool
}

// DeclaredArguments lists the argument declarations of one fragment in document order.
// It descends into groups and timers but not into included fragments.
func DeclaredArguments(root domain.Entity) []DeclaredArgument {
	var out []DeclaredArgument
	collectArguments(root, false, &out)
	return out
}

func collectArguments(ent domain.Entity, conditional bool, out *[]DeclaredArgument) {
	if ent == nil {
		return
	}
	conditional = conditional || ent.Condition() != nil
	switch v := ent.(type) {
	case *DeclareLaunchArgument:
		*out = append(*out, DeclaredArgument{DeclareLaunchArgument: v, Conditional: conditional})
	case *LaunchDescription:
		for _, child := range v.Entities {
			collectArguments(child, conditional, out)
		}
	case *GroupAction:
		for _, child := range v.Entities {
			collectArguments(child, conditional, out)
		}
	case *TimerAction:
		for _, child := range v.Entities {
			collectArguments(child, conditional, out)
		}
	}
}
