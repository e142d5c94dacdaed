/*
Package observability provides monitoring for the tree builder.

It turns build hooks into Prometheus metrics and structured log records. Both are plain
domain.BuildHooks values and can be merged into a single set passed to the builder.
*/
package observability
