package procstats

import "time"

// PoolCounters are the engine's in-process buffer pool counters,
// cumulative since backend start. Reading them is cheap; they live in
// process-local instrumentation state.
type PoolCounters struct {
	Hits    int64
	Misses  int64
	Dirtied int64
	Written int64

	// IOTimeMicros is the cumulative wait time for block reads.
	// Meaningful only when the engine tracks I/O timing.
	IOTimeMicros float64
}

// PoolStatsProvider hands out read-only buffer pool counter snapshots.
// Implementations must copy values out rather than exposing engine
// internals.
type PoolStatsProvider interface {
	PoolCounters() PoolCounters

	// TracksIOTiming reports whether IOTimeMicros carries real data.
	TracksIOTiming() bool
}

// OSCounters are per-process counters read from the operating system.
// Valid is false when the source could not be read; consumers must
// treat invalid counters as unknown, never as zero.
type OSCounters struct {
	CPUUserSeconds   float64
	CPUSystemSeconds float64
	ReadBytes        uint64
	WriteBytes       uint64
	Valid            bool
}

// TotalCPUSeconds returns user plus system CPU time.
func (c OSCounters) TotalCPUSeconds() float64 {
	return c.CPUUserSeconds + c.CPUSystemSeconds
}

// OSCounterSource reads OS-level counters for a process. A failed read
// must not fail the traced query; callers downgrade to pool-only
// statistics.
type OSCounterSource interface {
	ReadCounters(pid int32) (OSCounters, error)
}

// Snapshot is a point-in-time capture of pool and OS counters.
type Snapshot struct {
	Pool  PoolCounters
	OS    OSCounters
	Taken time.Time

	// Clamped is set on a Diff result when a negative delta was
	// observed and forced to zero. Counters are assumed monotonic, so
	// a negative delta signals an inconsistency worth noting.
	Clamped bool
}

// Diff returns the elementwise difference b-a with every component
// clamped at zero. OS counters in the result are valid only when both
// inputs were valid; invalidity propagates rather than reading as
// zero.
func Diff(a, b Snapshot) Snapshot {
	d := Snapshot{Taken: b.Taken}

	d.Pool.Hits = clampInt64(b.Pool.Hits-a.Pool.Hits, &d.Clamped)
	d.Pool.Misses = clampInt64(b.Pool.Misses-a.Pool.Misses, &d.Clamped)
	d.Pool.Dirtied = clampInt64(b.Pool.Dirtied-a.Pool.Dirtied, &d.Clamped)
	d.Pool.Written = clampInt64(b.Pool.Written-a.Pool.Written, &d.Clamped)
	d.Pool.IOTimeMicros = clampFloat(
		b.Pool.IOTimeMicros-a.Pool.IOTimeMicros, &d.Clamped)

	if a.OS.Valid && b.OS.Valid {
		d.OS.CPUUserSeconds = clampFloat(
			b.OS.CPUUserSeconds-a.OS.CPUUserSeconds, &d.Clamped)
		d.OS.CPUSystemSeconds = clampFloat(
			b.OS.CPUSystemSeconds-a.OS.CPUSystemSeconds, &d.Clamped)
		d.OS.ReadBytes = clampUint64(
			a.OS.ReadBytes, b.OS.ReadBytes, &d.Clamped)
		d.OS.WriteBytes = clampUint64(
			a.OS.WriteBytes, b.OS.WriteBytes, &d.Clamped)
		d.OS.Valid = true
	}

	return d
}

func clampInt64(v int64, clamped *bool) int64 {
	if v < 0 {
		*clamped = true
		return 0
	}
	return v
}

func clampFloat(v float64, clamped *bool) float64 {
	if v < 0 {
		*clamped = true
		return 0
	}
	return v
}

func clampUint64(a, b uint64, clamped *bool) uint64 {
	if b < a {
		*clamped = true
		return 0
	}
	return b - a
}
