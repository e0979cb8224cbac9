package trace

import (
	"fmt"
	"strings"

	"github.com/tracelab/qtrace/plan"
	"github.com/tracelab/qtrace/tiering"
)

// RenderPlan renders the operator tree with its runtime statistics,
// two spaces of indent per level. Nodes whose instrumentation carries
// per-node read timing get a cache-tier estimate using the same blend
// as the query-level summary.
func RenderPlan(root *plan.Node, thresholdMicros int, cat plan.Catalog) string {
	var b strings.Builder
	plan.Walk(root, func(n *plan.Node, depth int) bool {
		writePlanNode(&b, n, depth, thresholdMicros, cat)
		return true
	})
	return b.String()
}

func writePlanNode(
	b *strings.Builder,
	n *plan.Node,
	depth, thresholdMicros int,
	cat plan.Catalog,
) {
	indent := strings.Repeat("  ", depth)

	fmt.Fprintf(b, "%s-> %s (cost=%.2f..%.2f rows=%.0f width=%d)",
		indent, n.Kind, n.StartupCost, n.TotalCost, n.PlanRows, n.PlanWidth)
	if n.Instr != nil && n.Instr.Loops > 0 {
		fmt.Fprintf(b, " (actual rows=%.0f loops=%.0f)",
			n.Instr.Rows, n.Instr.Loops)
	}
	b.WriteString("\n")

	sub := indent + "   "
	for _, line := range plan.TargetLines(n, cat) {
		fmt.Fprintf(b, "%s%s\n", sub, line)
	}

	// A node that never executed has nothing further to report.
	if n.Instr == nil || n.Instr.Loops == 0 {
		return
	}
	instr := n.Instr

	fmt.Fprintf(b, "%sTiming: startup=%.3f ms, total=%.3f ms",
		sub, instr.StartupSeconds*1000.0, instr.TotalSeconds*1000.0)
	if instr.Loops > 1 {
		fmt.Fprintf(b, ", avg=%.3f ms/loop",
			instr.TotalSeconds*1000.0/instr.Loops)
	}
	b.WriteString("\n")

	writePlanNodeBuffers(b, sub, instr, thresholdMicros)

	buf := instr.Buffer
	if buf.LocalHit > 0 || buf.LocalRead > 0 {
		fmt.Fprintf(b, "%sLocal Buffers: hit=%d read=%d",
			sub, buf.LocalHit, buf.LocalRead)
		if buf.LocalWritten > 0 {
			fmt.Fprintf(b, " written=%d", buf.LocalWritten)
		}
		b.WriteString("\n")
	}
	if buf.TempRead > 0 || buf.TempWritten > 0 {
		fmt.Fprintf(b, "%sTemp Buffers: read=%d written=%d\n",
			sub, buf.TempRead, buf.TempWritten)
	}
	if instr.WAL.Records > 0 || instr.WAL.Bytes > 0 {
		fmt.Fprintf(b, "%sWAL: records=%d fpi=%d bytes=%d\n",
			sub, instr.WAL.Records, instr.WAL.FullPageImages,
			instr.WAL.Bytes)
	}
}

func writePlanNodeBuffers(
	b *strings.Builder,
	sub string,
	instr *plan.Instrumentation,
	thresholdMicros int,
) {
	buf := instr.Buffer
	total := buf.SharedHit + buf.SharedRead
	if total == 0 {
		return
	}

	fmt.Fprintf(b, "%sBuffers: shared hit=%d read=%d",
		sub, buf.SharedHit, buf.SharedRead)
	if buf.SharedDirtied > 0 {
		fmt.Fprintf(b, " dirtied=%d", buf.SharedDirtied)
	}
	if buf.SharedWritten > 0 {
		fmt.Fprintf(b, " written=%d", buf.SharedWritten)
	}
	fmt.Fprintf(b, " (%.1f%% cache hit)\n",
		100.0*float64(buf.SharedHit)/float64(total))

	if buf.SharedRead == 0 {
		return
	}

	if !buf.HasReadTime {
		fmt.Fprintf(b, "%s(I/O timing not tracked, no I/O detail available)\n", sub)
		return
	}

	counts, _ := tiering.Classify(0, buf.SharedRead,
		buf.ReadTimeMicros, thresholdMicros)

	fmt.Fprintf(b, "%sI/O Detail: total=%.3f ms, avg=%.1f us/block",
		sub, buf.ReadTimeMicros/1000.0,
		buf.ReadTimeMicros/float64(buf.SharedRead))
	if counts.OSCache > 0 {
		fmt.Fprintf(b, ", ~%d from OS cache", counts.OSCache)
	}
	if counts.Disk > 0 {
		fmt.Fprintf(b, ", ~%d from disk", counts.Disk)
	}
	b.WriteString("\n")

	ioMillis := buf.ReadTimeMicros / 1000.0
	totalMillis := instr.TotalSeconds * 1000.0
	if cpuMillis := totalMillis - ioMillis; cpuMillis > 0 && totalMillis > 0 {
		fmt.Fprintf(b,
			"%sTime breakdown (est.): CPU ~%.3f ms (%.1f%%), I/O ~%.3f ms (%.1f%%)\n",
			sub,
			cpuMillis, 100.0*cpuMillis/totalMillis,
			ioMillis, 100.0*ioMillis/totalMillis)
	}
}
