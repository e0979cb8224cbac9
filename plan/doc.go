// Package plan models the query engine's operator tree as the tracer
// sees it: a read-only tree of nodes carrying cost estimates and,
// when instrumentation was requested, per-node runtime statistics.
// The tracer never mutates a node; the engine owns the tree.
package plan
