package trace

import (
	"time"

	"github.com/tracelab/qtrace/hooking"
	"github.com/tracelab/qtrace/procstats"
	"github.com/tracelab/qtrace/tiering"
	"github.com/tracelab/qtrace/waitprobe"
)

// Tracer observes the query lifecycle and writes the per-query trace
// block through its Session. It always delegates to the rest of the
// chain, traced or not; a disabled session costs one branch per phase.
type Tracer struct {
	session  *Session
	samples  SampleSource
	feed     waitprobe.Feed
	registry *waitprobe.Registry

	// active is the cursor currently moving through the lifecycle. One
	// at a time, like the backend itself.
	active *QueryContext
}

var _ hooking.Handler = (*Tracer)(nil)

// NewTracer creates a tracer bound to a session.
func NewTracer(session *Session) *Tracer {
	return &Tracer{session: session}
}

// WithSampleSource attaches a provider of per-block access samples.
func (t *Tracer) WithSampleSource(src SampleSource) *Tracer {
	t.samples = src
	return t
}

// WithWaitProbe attaches an external probe feed plus the registry used
// to advertise this backend's active cursor to the probe.
func (t *Tracer) WithWaitProbe(
	feed waitprobe.Feed,
	registry *waitprobe.Registry,
) *Tracer {
	t.feed = feed
	t.registry = registry
	return t
}

// Plan opens a cursor for the statement, times the planner underneath
// it, and writes the PARSE block. Utility statements with no SQL text
// pass through untraced.
func (t *Tracer) Plan(q *hooking.Query, next hooking.PlanFunc) error {
	if !t.session.Enabled() || q.SQL == "" {
		return next(q)
	}

	// A context still present here belonged to a query that errored
	// before executor shutdown; it is abandoned.
	t.active = &QueryContext{
		CursorID:    t.session.nextCursorID(),
		SQL:         q.SQL,
		ParseStart:  time.Now(),
		sampleLimit: t.session.cfg.SampleLimit,
	}

	err := next(q)

	t.active.ParseEnd = time.Now()
	t.session.writeParse(t.active)
	return err
}

// ExecutorStart requests instrumentation, anchors the counter
// baseline, advertises the cursor to the wait probe, and writes the
// BINDS block.
func (t *Tracer) ExecutorStart(q *hooking.Query, next hooking.StartFunc) error {
	if qc := t.traced(); qc != nil {
		q.WantInstrumentation = true

		qc.StartSnapshot = t.session.capture()
		qc.lastSnapshot = qc.StartSnapshot

		if t.registry != nil {
			t.registry.Bind(t.session.pid(), qc.CursorID)
		}
		if len(q.Params) > 0 {
			t.session.writeBinds(qc, q.Params)
		}
	}
	return next(q)
}

// ExecutorRun brackets one run pass with counter snapshots, folds the
// delta into the tier totals, pulls block samples, and writes the EXEC
// timing line. Partial executions accumulate additively.
func (t *Tracer) ExecutorRun(q *hooking.Query, next hooking.RunFunc) error {
	qc := t.traced()
	if qc == nil {
		return next(q)
	}

	if qc.ExecStart.IsZero() {
		qc.ExecStart = time.Now()
		t.session.writeExecHeader(qc)
	}

	qc.accumulate(t.session.capture(), t.session.Threshold())
	runStart := time.Now()

	err := next(q)

	qc.accumulate(t.session.capture(), t.session.Threshold())
	if t.samples != nil && len(qc.Samples) < qc.sampleLimit {
		batch := t.samples.Samples(qc.sampleLimit - len(qc.Samples))
		qc.addSamples(t.tierSamples(batch))
	}

	t.session.writeExecTime(time.Since(runStart), q.RowsProcessed)
	return err
}

// ExecutorEnd takes the final snapshot, reconciles probe events, and
// writes the summary sections plus the plan report, then retires the
// cursor.
func (t *Tracer) ExecutorEnd(q *hooking.Query, next hooking.EndFunc) error {
	if qc := t.traced(); qc != nil {
		final := t.session.capture()
		qc.accumulate(final, t.session.Threshold())

		if t.feed != nil {
			if events, err := t.feed.Events(qc.CursorID); err == nil {
				qc.applyProbeEvents(events, t.session.Threshold())
			}
		}
		if t.registry != nil {
			t.registry.Unbind(t.session.pid())
		}

		total := procstats.Diff(qc.StartSnapshot, final)
		t.session.writeBufferStats(total)
		t.session.writeCPUStats(total)
		t.session.writeWaitEvents(qc)
		t.session.writeBlockIOSummary(qc, total)
		t.session.writePlanTree(qc, q.Plan)
		t.session.writeQueryFooter()

		t.active = nil
	}
	return next(q)
}

// traced returns the active context only while the session is live, so
// a query already in flight when tracing stops falls silent instead of
// writing to a closed sink.
func (t *Tracer) traced() *QueryContext {
	if !t.session.Enabled() {
		return nil
	}
	return t.active
}

// tierSamples assigns a tier to heuristic samples. Probe events may
// later override these with literal timings.
func (t *Tracer) tierSamples(batch []BlockSample) []BlockSample {
	thr := t.session.Threshold()
	for i := range batch {
		if batch[i].PoolHit {
			batch[i].Tier = tiering.TierPool
			batch[i].TimingMicros = 0
			continue
		}
		batch[i].Tier = tiering.ClassifyOne(batch[i].TimingMicros, thr)
	}
	return batch
}
