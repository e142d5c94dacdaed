/*
Package dsl provides a fluent Go API for writing launch descriptions without launch files.

It is useful for tests, for generating launch trees programmatically and for embedding
fixtures in tools. Every string argument uses the "$(...)" substitution grammar of the
XML and YAML frontends.

Example usage:

	b := dsl.New()

	root := b.File("/ws/robot.launch.xml")
	root.Arg("robot").Default("r1")
	root.Include("/ws/sensors.launch.xml").Arg("robot", "$(var robot)")

	g := root.Group().Namespace("$(var robot)").If("$(var use_sim)")
	g.Node("demo", "talker").Name("talker").Param("rate", "10")

	b.File("/ws/sensors.launch.xml").Node("demo", "lidar")

	loader, err := b.Build()
	// loader implements ports.SourceLoader
*/
package dsl
