package hooking

import "github.com/tracelab/qtrace/plan"

// Param is one bind value attached to a query. Value carries the
// engine's textual rendering; pretty-printing is the engine's concern.
type Param struct {
	Index int
	Type  string
	Value string
	Null  bool
}

// Query is the engine's view of one statement moving through the
// lifecycle. The engine populates Plan during planning and accumulates
// RowsProcessed across executor runs; handlers may request
// instrumentation before execution starts and otherwise only read.
type Query struct {
	SQL    string
	Params []Param

	// Plan is set by the engine when planning completes. Read-only for
	// handlers.
	Plan *plan.Node

	// WantInstrumentation asks the engine to collect full per-node
	// statistics. Must be set before the engine's executor-start logic
	// runs.
	WantInstrumentation bool

	// RowsProcessed accumulates across ExecutorRun calls.
	RowsProcessed int64
}
