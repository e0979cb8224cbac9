package procstats

import "time"

// Collector captures resource snapshots for one backend process. It is
// stateless across calls; callers retain the snapshots they need.
type Collector struct {
	pool PoolStatsProvider
	os   OSCounterSource
	pid  int32
}

// NewCollector creates a Collector. The OS source may be nil, in which
// case every snapshot carries invalid OS counters.
func NewCollector(
	pool PoolStatsProvider,
	osSource OSCounterSource,
	pid int32,
) *Collector {
	return &Collector{
		pool: pool,
		os:   osSource,
		pid:  pid,
	}
}

// Capture reads all counters now. A failing OS source leaves the OS
// portion marked invalid; it never raises.
func (c *Collector) Capture() Snapshot {
	s := Snapshot{Taken: time.Now()}

	if c.pool != nil {
		s.Pool = c.pool.PoolCounters()
	}

	if c.os != nil {
		counters, err := c.os.ReadCounters(c.pid)
		if err == nil {
			s.OS = counters
		}
	}

	return s
}

// TracksIOTiming reports whether the pool provider records block read
// wait time.
func (c *Collector) TracksIOTiming() bool {
	return c.pool != nil && c.pool.TracksIOTiming()
}

// PID returns the process the collector reads OS counters for.
func (c *Collector) PID() int32 {
	return c.pid
}
