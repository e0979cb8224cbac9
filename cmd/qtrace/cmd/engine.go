package cmd

import (
	"fmt"
	"math/rand"

	"github.com/tracelab/qtrace/hooking"
	"github.com/tracelab/qtrace/plan"
	"github.com/tracelab/qtrace/procstats"
	"github.com/tracelab/qtrace/trace"
)

// demoEngine is a synthetic workload generator standing in for a real
// database backend. It plays both roles the trace engine needs from a
// host: the lifecycle endpoints and the counter sources.
type demoEngine struct {
	rng      *rand.Rand
	counters procstats.PoolCounters
	pending  []trace.BlockSample
	current  *demoStatement
}

type demoStatement struct {
	sql      string
	params   []hooking.Param
	relation string
	hits     int64
	misses   int64
	// avgMissMicros shapes the workload: small values look like warm OS
	// cache, large ones like cold disk.
	avgMissMicros float64
	rows          int64
	makePlan      func(st *demoStatement) *plan.Node
}

func newDemoEngine(seed int64) *demoEngine {
	return &demoEngine{rng: rand.New(rand.NewSource(seed))}
}

var demoWorkload = []demoStatement{
	{
		sql:           "SELECT * FROM orders WHERE customer_id = $1",
		params:        []hooking.Param{{Index: 1, Type: "int8", Value: "1042"}},
		relation:      "orders",
		hits:          4200,
		misses:        80,
		avgMissMicros: 120,
		rows:          38,
		makePlan:      indexScanPlan,
	},
	{
		sql:           "SELECT count(*) FROM events WHERE occurred_at > now() - interval '1 day'",
		relation:      "events",
		hits:          900,
		misses:        2600,
		avgMissMicros: 1400,
		rows:          1,
		makePlan:      seqScanAggregatePlan,
	},
	{
		sql:           "SELECT * FROM orders o JOIN customers c ON c.id = o.customer_id LIMIT 100",
		relation:      "orders",
		hits:          7800,
		misses:        400,
		avgMissMicros: 500,
		rows:          100,
		makePlan:      hashJoinPlan,
	},
}

func (e *demoEngine) Plan(q *hooking.Query) error {
	for i := range demoWorkload {
		if demoWorkload[i].sql == q.SQL {
			e.current = &demoWorkload[i]
			q.Params = e.current.params
			q.Plan = e.current.makePlan(e.current)
			return nil
		}
	}
	return fmt.Errorf("unknown demo statement: %s", q.SQL)
}

func (e *demoEngine) ExecutorStart(q *hooking.Query) error {
	return nil
}

func (e *demoEngine) ExecutorRun(q *hooking.Query) error {
	st := e.current
	if st == nil {
		return fmt.Errorf("executor run without a planned statement")
	}

	e.counters.Hits += st.hits
	e.counters.Misses += st.misses

	for i := int64(0); i < st.misses; i++ {
		// Jitter each miss around the statement's average.
		micros := st.avgMissMicros * (0.5 + e.rng.Float64())
		e.counters.IOTimeMicros += micros

		if len(e.pending) < trace.DefaultSampleLimit {
			e.pending = append(e.pending, trace.BlockSample{
				LocationID:   fmt.Sprintf("rel/%s:%d", st.relation, i),
				Relation:     st.relation,
				TimingMicros: micros,
			})
		}
	}

	q.RowsProcessed += st.rows
	return nil
}

func (e *demoEngine) ExecutorEnd(q *hooking.Query) error {
	e.current = nil
	return nil
}

// PoolCounters and TracksIOTiming make the engine its own pool counter
// source.
func (e *demoEngine) PoolCounters() procstats.PoolCounters {
	return e.counters
}

func (e *demoEngine) TracksIOTiming() bool {
	return true
}

// Samples drains the block accesses recorded since the last pull.
func (e *demoEngine) Samples(limit int) []trace.BlockSample {
	n := len(e.pending)
	if n > limit {
		n = limit
	}
	out := append([]trace.BlockSample(nil), e.pending[:n]...)
	e.pending = e.pending[:0]
	return out
}

// ResolveName lets the plan renderer name the demo tables.
func (e *demoEngine) ResolveName(id string) (string, bool) {
	switch id {
	case "orders", "customers", "events", "orders_customer_id_idx":
		return id, true
	}
	return "", false
}

func indexScanPlan(st *demoStatement) *plan.Node {
	return &plan.Node{
		Kind:        plan.KindIndexScan,
		StartupCost: 0.43, TotalCost: 164.2,
		PlanRows: 40, PlanWidth: 97,
		RelationID: st.relation,
		IndexID:    "orders_customer_id_idx",
		Instr:      instrumentFor(st, 0.004),
	}
}

func seqScanAggregatePlan(st *demoStatement) *plan.Node {
	scan := &plan.Node{
		Kind:        plan.KindSeqScan,
		StartupCost: 0, TotalCost: 4833.1,
		PlanRows: 52000, PlanWidth: 16,
		RelationID: st.relation,
		Instr:      instrumentFor(st, 0.8),
	}
	return &plan.Node{
		Kind:        plan.KindAggregate,
		StartupCost: 4963.1, TotalCost: 4963.11,
		PlanRows: 1, PlanWidth: 8,
		Instr: &plan.Instrumentation{
			Loops: 1, Rows: 1, TotalSeconds: 0.9,
		},
		Children: []*plan.Node{scan},
	}
}

func hashJoinPlan(st *demoStatement) *plan.Node {
	outer := &plan.Node{
		Kind:        plan.KindSeqScan,
		StartupCost: 0, TotalCost: 2210.4,
		PlanRows: 80000, PlanWidth: 97,
		RelationID: "orders",
		Instr:      instrumentFor(st, 0.05),
	}
	inner := &plan.Node{
		Kind:        plan.KindSeqScan,
		StartupCost: 0, TotalCost: 310.2,
		PlanRows: 9000, PlanWidth: 64,
		RelationID: "customers",
		Instr: &plan.Instrumentation{
			Loops: 1, Rows: 9000, TotalSeconds: 0.002,
			Buffer: plan.BufferUsage{SharedHit: 220},
		},
	}
	hash := &plan.Node{
		Kind:        plan.KindHash,
		StartupCost: 310.2, TotalCost: 310.2,
		PlanRows: 9000, PlanWidth: 64,
		Instr: &plan.Instrumentation{
			Loops: 1, Rows: 9000, TotalSeconds: 0.004,
		},
		Children: []*plan.Node{inner},
	}
	return &plan.Node{
		Kind:        plan.KindHashJoin,
		StartupCost: 422.7, TotalCost: 3128.9,
		PlanRows: 100, PlanWidth: 161,
		Instr: &plan.Instrumentation{
			Loops: 1, Rows: float64(st.rows), TotalSeconds: 0.07,
		},
		Children: []*plan.Node{outer, hash},
	}
}

func instrumentFor(st *demoStatement, seconds float64) *plan.Instrumentation {
	return &plan.Instrumentation{
		Loops: 1, Rows: float64(st.rows),
		TotalSeconds: seconds,
		Buffer: plan.BufferUsage{
			SharedHit:      st.hits,
			SharedRead:     st.misses,
			ReadTimeMicros: st.avgMissMicros * float64(st.misses),
			HasReadTime:    true,
		},
	}
}
