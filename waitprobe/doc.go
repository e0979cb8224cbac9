// Package waitprobe integrates an optional external low-level wait
// probe. The probe observes literal per-block I/O timings (for example
// through eBPF uprobes on the engine's wait-report functions) and
// writes them to a shared SQLite database. When a feed is wired in,
// its literal events take precedence over the tracer's latency
// heuristic for matching blocks; when absent, nothing else degrades.
package waitprobe
