package trace

import (
	"time"

	"github.com/tracelab/qtrace/procstats"
	"github.com/tracelab/qtrace/tiering"
	"github.com/tracelab/qtrace/waitprobe"
)

// ForkKind identifies which physical fork of a relation a sampled
// block belongs to.
type ForkKind int

const (
	ForkMain ForkKind = iota
	ForkFreeSpaceMap
	ForkVisibilityMap
	ForkInit
)

func (f ForkKind) String() string {
	switch f {
	case ForkMain:
		return "main"
	case ForkFreeSpaceMap:
		return "fsm"
	case ForkVisibilityMap:
		return "vm"
	case ForkInit:
		return "init"
	}
	return "unknown"
}

// BlockSample records one observed block access. TimingMicros is zero
// for pool hits; for misses it is either a heuristic share of the
// aggregate I/O time or, when the wait probe saw the read, the literal
// syscall latency.
type BlockSample struct {
	LocationID   string
	Relation     string
	Fork         ForkKind
	TimingMicros float64
	PoolHit      bool
	Tier         tiering.Tier
}

// SampleSource exposes the engine's recent block accesses. Samples
// must return already-copied data the caller may keep.
type SampleSource interface {
	Samples(limit int) []BlockSample
}

// QueryContext accumulates one traced query's statistics from parse to
// executor shutdown. It belongs to a single cursor and is discarded
// after its trace block is written.
type QueryContext struct {
	CursorID int64
	SQL      string

	ParseStart time.Time
	ParseEnd   time.Time
	ExecStart  time.Time

	// StartSnapshot anchors the whole-query counter diff.
	StartSnapshot procstats.Snapshot

	Tiers         tiering.Counts
	TierTimes     tiering.Times
	Samples       []BlockSample
	ClampedDeltas bool

	// lastSnapshot advances segment by segment so that the per-segment
	// deltas telescope: their sum equals Diff(StartSnapshot, final).
	lastSnapshot procstats.Snapshot
	sampleLimit  int
}

// accumulate classifies the counter delta since the last snapshot,
// folds it into the running tier totals, and advances the snapshot.
func (qc *QueryContext) accumulate(now procstats.Snapshot, thresholdMicros int) {
	delta := procstats.Diff(qc.lastSnapshot, now)

	counts, times := tiering.Classify(
		delta.Pool.Hits, delta.Pool.Misses,
		delta.Pool.IOTimeMicros, thresholdMicros)
	qc.Tiers.Add(counts)
	qc.TierTimes.Add(times)

	if delta.Clamped {
		qc.ClampedDeltas = true
	}
	qc.lastSnapshot = now
}

// addSamples appends samples up to the per-query cap.
func (qc *QueryContext) addSamples(batch []BlockSample) {
	for _, s := range batch {
		if len(qc.Samples) >= qc.sampleLimit {
			return
		}
		qc.Samples = append(qc.Samples, s)
	}
}

// applyProbeEvents upgrades heuristic samples with literal probe
// timings. A probe event for a location already sampled replaces that
// sample's timing and tier; events for unseen locations are appended
// within the cap.
func (qc *QueryContext) applyProbeEvents(
	events []waitprobe.Event,
	thresholdMicros int,
) {
	byLocation := make(map[string]int, len(qc.Samples))
	for i, s := range qc.Samples {
		byLocation[s.LocationID] = i
	}

	for _, e := range events {
		tier := tiering.ClassifyOne(e.TimingMicros, thresholdMicros)
		if i, ok := byLocation[e.LocationID]; ok {
			qc.Samples[i].TimingMicros = e.TimingMicros
			qc.Samples[i].Tier = tier
			qc.Samples[i].PoolHit = tier == tiering.TierPool
			continue
		}
		if len(qc.Samples) < qc.sampleLimit {
			qc.Samples = append(qc.Samples, BlockSample{
				LocationID:   e.LocationID,
				TimingMicros: e.TimingMicros,
				Tier:         tier,
				PoolHit:      tier == tiering.TierPool,
			})
		}
	}
}
