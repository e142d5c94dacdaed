package domain

// Behavior classifies how an entity family contributes to the output tree.
type Behavior int

const (
	// BehaviorIgnored contributes nothing. It may still be visited for its scope side effects.
	BehaviorIgnored Behavior = iota
	// BehaviorSpliced contributes exactly its children's output.
	BehaviorSpliced
	// BehaviorStructural contributes a labeled node with attributes and children.
	BehaviorStructural
	// BehaviorLeaf contributes a labeled node with attributes and its declared items only.
	BehaviorLeaf
)

func (b Behavior) String() string {
	switch b {
	case BehaviorIgnored:
		return "ignored"
	case BehaviorSpliced:
		return "spliced"
	case BehaviorStructural:
		return "structural"
	case BehaviorLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// Labeled reports whether nodes of this behavior carry their own type and attributes.
func (b Behavior) Labeled() bool {
	return b == BehaviorStructural || b == BehaviorLeaf
}
