// Package trace produces per-query execution traces for one database
// session: SQL text and binds, parse and execution timing, buffer pool
// and OS resource deltas, an inferred cache-tier breakdown, and a
// per-operator plan report. The Session owns the output sink and the
// session-wide state; the Tracer hooks the query lifecycle and drives
// snapshot capture, classification, and rendering.
package trace
