package scope

import (
	"fmt"
	"maps"
)

// PushVariables opens a variable frame. A non-forwarding frame hides outer bindings.
func (c *Context) PushVariables(forwarding bool) {
	c.vars = append(c.vars, varFrame{values: map[string]string{}, isolated: !forwarding})
}

// PopVariables closes the innermost variable frame.
func (c *Context) PopVariables() error {
	if len(c.vars) <= c.floors.Variables {
		return fmt.Errorf("%w: pop launch configurations", ErrScopeUnderflow)
	}
	c.vars = c.vars[:len(c.vars)-1]
	return nil
}

// Bind sets a launch configuration in the innermost frame.
func (c *Context) Bind(name, value string) {
	c.vars[len(c.vars)-1].values[name] = value
}

// Lookup returns the innermost visible binding of name.
func (c *Context) Lookup(name string) (string, bool) {
	for i := len(c.vars) - 1; i >= 0; i-- {
		if v, ok := c.vars[i].values[name]; ok {
			return v, true
		}
		if c.vars[i].isolated {
			break
		}
	}
	return "", false
}

// Variables returns every visible binding, inner frames shadowing outer ones.
func (c *Context) Variables() map[string]string {
	start := 0
	for i := len(c.vars) - 1; i >= 0; i-- {
		if c.vars[i].isolated {
			start = i
			break
		}
	}
	out := map[string]string{}
	for _, f := range c.vars[start:] {
		maps.Copy(out, f.values)
	}
	return out
}
