/*
Package scope implements the overlay stacks threaded through a tree build.

A Context holds five independent stacks: launch configuration variables, environment
overrides, the namespace prefix, parameter overlays and remap overlays. Lookups always
see the innermost binding. Scoped subtrees are bracketed with Enter, whose returned leave
function restores every stack it touched, so state never leaks out of a scope even when
the subtree fails.

A Context is created for one build and must not be shared between concurrent builds.
*/
package scope
