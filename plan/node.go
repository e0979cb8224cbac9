package plan

// Kind tags the operator type of a node.
type Kind string

// Operator kinds known to the target-name registry. The renderer
// handles any other kind generically; only name resolution is
// per-kind.
const (
	KindResult          Kind = "Result"
	KindSeqScan         Kind = "SeqScan"
	KindSampleScan      Kind = "SampleScan"
	KindIndexScan       Kind = "IndexScan"
	KindIndexOnlyScan   Kind = "IndexOnlyScan"
	KindBitmapIndexScan Kind = "BitmapIndexScan"
	KindBitmapHeapScan  Kind = "BitmapHeapScan"
	KindNestLoop        Kind = "NestLoop"
	KindMergeJoin       Kind = "MergeJoin"
	KindHashJoin        Kind = "HashJoin"
	KindHash            Kind = "Hash"
	KindSort            Kind = "Sort"
	KindAggregate       Kind = "Aggregate"
	KindMaterialize     Kind = "Materialize"
	KindLimit           Kind = "Limit"
	KindAppend          Kind = "Append"
	KindSubqueryScan    Kind = "SubqueryScan"
)

// BufferUsage holds per-node buffer pool activity collected by the
// engine's instrumentation.
type BufferUsage struct {
	SharedHit     int64
	SharedRead    int64
	SharedDirtied int64
	SharedWritten int64

	LocalHit     int64
	LocalRead    int64
	LocalWritten int64

	TempRead    int64
	TempWritten int64

	// ReadTimeMicros is the I/O wait attributed to this node's shared
	// reads. HasReadTime distinguishes "zero wait" from "not tracked".
	ReadTimeMicros float64
	HasReadTime    bool
}

// WALUsage holds per-node write-ahead-log activity.
type WALUsage struct {
	Records        int64
	FullPageImages int64
	Bytes          int64
}

// Instrumentation carries the runtime statistics the engine collected
// for one node. Loops is zero when the node never executed.
type Instrumentation struct {
	Loops          float64
	Rows           float64
	StartupSeconds float64
	TotalSeconds   float64
	Buffer         BufferUsage
	WAL            WALUsage
}

// Node is one operator in the execution plan.
type Node struct {
	Kind Kind

	StartupCost float64
	TotalCost   float64
	PlanRows    float64
	PlanWidth   int

	// RelationID and IndexID identify the stored objects a scan-like
	// node touches, resolvable through a Catalog. Empty when not
	// applicable.
	RelationID string
	IndexID    string

	// Instr is nil when instrumentation was not collected.
	Instr *Instrumentation

	// Children holds all child operators, whatever the fan-out. Unary,
	// binary, and N-ary nodes are traversed uniformly through this
	// slice.
	Children []*Node
}

// Catalog resolves object identifiers to human-readable names. It is
// annotation only; a failed lookup never affects correctness.
type Catalog interface {
	ResolveName(id string) (string, bool)
}

// Walk visits the tree depth-first, pre-order. The visit function
// receives each node with its depth; returning false prunes that
// node's subtree.
func Walk(root *Node, visit func(n *Node, depth int) bool) {
	walk(root, 0, visit)
}

func walk(n *Node, depth int, visit func(*Node, int) bool) {
	if n == nil {
		return
	}
	if !visit(n, depth) {
		return
	}
	for _, child := range n.Children {
		walk(child, depth+1, visit)
	}
}
