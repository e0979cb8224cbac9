// Package tiering infers which cache tier served a batch of block
// accesses from aggregate timing alone.
//
// The engine's buffer pool counters only separate hits from misses. A
// miss may still have been served by the OS page cache at near-memory
// speed, or by the storage device one or two orders of magnitude
// slower. The classifier exploits that latency separation: the average
// I/O wait per missed block is compared against a configurable
// threshold, and misses are bucketed into the osCache and disk tiers
// accordingly. The result is an estimate, not a measurement.
package tiering
