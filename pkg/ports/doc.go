/*
Package ports defines the driven ports (interfaces) of the launch analyzer.

These interfaces decouple the tree builder from the launch language, the file system
and storage backends, so the core can run against in-memory fixtures in tests.

# Key Interfaces

  - Engine: expands entities and resolves substitutions and conditions.
  - SourceLoader: parses a launch fragment into its root entity.
  - PackageResolver: maps package names to share directories and launch fragments.
  - ResultCache: persists analysis results (memory, file, Redis).
*/
package ports
