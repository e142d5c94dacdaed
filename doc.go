/*
Package launchtree builds the tree of what a ROS 2 style launch invocation would run,
without running it.

A launch invocation names a root fragment that transitively includes other fragments,
conditional groups, nodes with parameters and remappings, and composable node
containers. The analyzer walks that hierarchy with every condition and substitution
resolved, drops what is disabled, flattens what is purely organizational, and returns
a normalized tree that serializes to JSON or YAML.

# Architecture

  - pkg/registry classifies every entity family (ignored, spliced, structural, leaf).
  - pkg/scope holds the overlay stacks (launch configurations, environment,
    namespace, parameters, remaps) that scoped families push and pop.
  - internal/builder walks the entities; a failing entity is dropped with a
    diagnostic and never aborts the build.
  - internal/normalize removes invalid and empty nodes and splices transparent ones.
  - pkg/serializer turns the tree into ordered documents.

The launch language itself (families, substitutions, conditions, parameters) lives
in pkg/launch, behind the ports.Engine interface.

# Usage

	analyzer := launchtree.New(
		launchtree.WithLogger(logger),
		launchtree.WithCache(memory.NewCache()),
	)

	res, err := analyzer.Analyze(ctx, "ros2 launch demo robot.launch.xml use_sim:=true")
	if err != nil {
		log.Fatal(err)
	}
	out, _ := json.MarshalIndent(res.Tree, "", "  ")
	fmt.Println(string(out))

	for _, d := range res.Diagnostics {
		fmt.Printf("%s: %s\n", d.Family, d.Message)
	}
*/
package launchtree
