package scope

import (
	"fmt"
	"strings"
)

// PushNamespace opens a namespace frame joined with prefix.
func (c *Context) PushNamespace(prefix string) {
	c.ns = append(c.ns, JoinNamespace(c.Namespace(), prefix))
}

// PopNamespace closes the innermost namespace frame.
func (c *Context) PopNamespace() error {
	if len(c.ns) <= c.floors.Namespace {
		return fmt.Errorf("%w: pop namespace", ErrScopeUnderflow)
	}
	c.ns = c.ns[:len(c.ns)-1]
	return nil
}

// ApplyNamespace joins ns onto the innermost frame. It lasts until that frame is popped.
func (c *Context) ApplyNamespace(ns string) {
	top := len(c.ns) - 1
	c.ns[top] = JoinNamespace(c.ns[top], ns)
}

// Namespace returns the current namespace, "" when none is set.
func (c *Context) Namespace() string {
	return c.ns[len(c.ns)-1]
}

// JoinNamespace appends a relative namespace to base. An absolute ns replaces base.
func JoinNamespace(base, ns string) string {
	ns = strings.TrimSpace(ns)
	if ns == "" {
		return base
	}
	if strings.HasPrefix(ns, "/") {
		return "/" + strings.Trim(ns, "/")
	}
	base = strings.TrimRight(base, "/")
	return base + "/" + strings.Trim(ns, "/")
}
