package scope

import (
	"fmt"

	"github.com/aretw0/launchtree/pkg/domain"
)

// PushParameters opens a parameter overlay holding values.
func (c *Context) PushParameters(values domain.Attributes) {
	c.params = append(c.params, values.Clone())
}

// PopParameters closes the innermost parameter overlay.
func (c *Context) PopParameters() error {
	if len(c.params) <= c.floors.Parameters {
		return fmt.Errorf("%w: pop parameters", ErrScopeUnderflow)
	}
	c.params = c.params[:len(c.params)-1]
	return nil
}

// AddParameters merges values into the innermost parameter overlay.
func (c *Context) AddParameters(values domain.Attributes) {
	top := len(c.params) - 1
	for _, attr := range values {
		c.params[top] = c.params[top].Set(attr.Key, attr.Value)
	}
}

// Parameters merges all overlays, inner values replacing outer ones.
func (c *Context) Parameters() domain.Attributes {
	var out domain.Attributes
	for _, frame := range c.params {
		for _, attr := range frame {
			out = out.Set(attr.Key, attr.Value)
		}
	}
	return out
}

// PushRemaps opens a remap overlay.
func (c *Context) PushRemaps() {
	c.remaps = append(c.remaps, nil)
}

// PopRemaps closes the innermost remap overlay.
func (c *Context) PopRemaps() error {
	if len(c.remaps) <= c.floors.Remaps {
		return fmt.Errorf("%w: pop remaps", ErrScopeUnderflow)
	}
	c.remaps = c.remaps[:len(c.remaps)-1]
	return nil
}

// AddRemap appends a remapping to the innermost overlay.
func (c *Context) AddRemap(from, to string) {
	top := len(c.remaps) - 1
	c.remaps[top] = append(c.remaps[top], Remap{From: from, To: to})
}

// Remaps returns all remappings, outermost first.
func (c *Context) Remaps() []Remap {
	var out []Remap
	for _, frame := range c.remaps {
		out = append(out, frame...)
	}
	return out
}
