package trace

import (
	"github.com/tracelab/qtrace/hooking"
	"github.com/tracelab/qtrace/plan"
	"github.com/tracelab/qtrace/procstats"
	"github.com/tracelab/qtrace/waitprobe"
)

// fakePool is a settable buffer pool counter source.
type fakePool struct {
	counters procstats.PoolCounters
	ioTiming bool
}

func (p *fakePool) PoolCounters() procstats.PoolCounters {
	return p.counters
}

func (p *fakePool) TracksIOTiming() bool {
	return p.ioTiming
}

func (p *fakePool) advance(hits, misses int64, ioMicros float64) {
	p.counters.Hits += hits
	p.counters.Misses += misses
	p.counters.IOTimeMicros += ioMicros
}

type fakeOS struct {
	counters procstats.OSCounters
	err      error
}

func (o *fakeOS) ReadCounters(pid int32) (procstats.OSCounters, error) {
	if o.err != nil {
		return procstats.OSCounters{}, o.err
	}
	return o.counters, nil
}

// scriptedEngine mutates the pool counters during its run callback,
// the way real execution would, and records which phases it saw.
type scriptedEngine struct {
	pool *fakePool
	plan *plan.Node

	runHits     int64
	runMisses   int64
	runIOMicros float64
	runRows     int64

	phases []string
}

func (e *scriptedEngine) Plan(q *hooking.Query) error {
	e.phases = append(e.phases, "plan")
	if e.plan != nil {
		q.Plan = e.plan
	}
	return nil
}

func (e *scriptedEngine) ExecutorStart(q *hooking.Query) error {
	e.phases = append(e.phases, "start")
	return nil
}

func (e *scriptedEngine) ExecutorRun(q *hooking.Query) error {
	e.phases = append(e.phases, "run")
	if e.pool != nil {
		e.pool.advance(e.runHits, e.runMisses, e.runIOMicros)
	}
	q.RowsProcessed += e.runRows
	return nil
}

func (e *scriptedEngine) ExecutorEnd(q *hooking.Query) error {
	e.phases = append(e.phases, "end")
	return nil
}

type fakeSamples struct {
	batch []BlockSample
}

func (s *fakeSamples) Samples(limit int) []BlockSample {
	out := s.batch
	if limit < len(out) {
		out = out[:limit]
	}
	return append([]BlockSample(nil), out...)
}

type fakeFeed struct {
	events map[int64][]waitprobe.Event
	err    error
}

func (f *fakeFeed) Events(cursorID int64) ([]waitprobe.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.events[cursorID], nil
}

type mapCatalog map[string]string

func (c mapCatalog) ResolveName(id string) (string, bool) {
	name, ok := c[id]
	return name, ok
}
