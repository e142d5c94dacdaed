/*
Package launch implements the collaborator engine for ROS 2 style launch descriptions.

It defines the entity families produced by the frontends (nodes, includes, groups,
composable node containers, scope actions), the substitution and condition language,
the parameter model, and the expansion semantics the builder relies on.
Engine.Install registers every family with its behavior, extractor and scope boundary:

	engine := launch.NewEngine(loader, launch.WithPackages(resolver))
	reg := registry.NewRegistry()
	engine.Install(reg)

The engine never spawns processes or evaluates code: eval and command substitutions
are recognized but fail, which drops only the entity that uses them.
*/
package launch
