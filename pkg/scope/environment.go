package scope

import "fmt"

// PushEnvironment opens an environment frame.
func (c *Context) PushEnvironment() {
	c.env = append(c.env, envFrame{})
}

// PopEnvironment closes the innermost environment frame.
func (c *Context) PopEnvironment() error {
	if len(c.env) <= c.floors.Environment {
		return fmt.Errorf("%w: pop environment", ErrScopeUnderflow)
	}
	c.env = c.env[:len(c.env)-1]
	return nil
}

// SetEnv overrides an environment variable in the innermost frame.
func (c *Context) SetEnv(name, value string) {
	c.env[len(c.env)-1][name] = &value
}

// UnsetEnv hides an environment variable in the innermost frame.
func (c *Context) UnsetEnv(name string) {
	c.env[len(c.env)-1][name] = nil
}

// Getenv looks name up in the overlay, then in the process environment.
func (c *Context) Getenv(name string) (string, bool) {
	for i := len(c.env) - 1; i >= 0; i-- {
		if v, ok := c.env[i][name]; ok {
			if v == nil {
				return "", false
			}
			return *v, true
		}
	}
	if c.getenv == nil {
		return "", false
	}
	return c.getenv(name)
}
