/*
Package domain contains the core models shared by every stage of a launch analysis.

It defines the contract between the tree builder and the collaborator engine that
understands a concrete launch language, and the tree the builder produces. This
package is kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Entity: an opaque node of the launch hierarchy, identified by its Family.
  - Expansion: what the collaborator engine produced when visiting an Entity.
  - Behavior: how a family contributes to the output (Ignored, Spliced, Structural, Leaf).
  - TreeNode: the builder's in-memory tree, with ordered resolved Attributes.
  - Diagnostic: a per-entity failure recovered during the build.
*/
package domain
