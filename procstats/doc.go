// Package procstats captures point-in-time resource snapshots around
// query phases: the engine's buffer pool counters through an injected
// provider, and per-process OS counters through gopsutil. Snapshots
// are immutable once captured; phase attribution works on clamped
// deltas between consecutive snapshots.
package procstats
