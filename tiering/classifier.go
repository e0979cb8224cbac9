package tiering

import "math"

// Tier identifies the cache layer that served a block access.
type Tier int

const (
	// TierPool is the engine's own buffer pool. A hit here costs no
	// I/O wait.
	TierPool Tier = iota

	// TierOSCache is the operating system's page cache, inferred from
	// sub-threshold miss latency.
	TierOSCache

	// TierDisk is the storage device, inferred from at-or-above
	// threshold latency.
	TierDisk
)

func (t Tier) String() string {
	switch t {
	case TierPool:
		return "pool"
	case TierOSCache:
		return "os_cache"
	case TierDisk:
		return "disk"
	}
	return "unknown"
}

// Counts buckets block accesses by the tier that served them.
type Counts struct {
	Pool    int64
	OSCache int64
	Disk    int64
}

// Total returns the number of blocks accounted for across all tiers.
func (c Counts) Total() int64 {
	return c.Pool + c.OSCache + c.Disk
}

// Add accumulates another set of counts into c.
func (c *Counts) Add(o Counts) {
	c.Pool += o.Pool
	c.OSCache += o.OSCache
	c.Disk += o.Disk
}

// Times apportions the aggregate I/O wait across the two miss tiers.
// Pool hits carry no wait time.
type Times struct {
	OSCacheMicros float64
	DiskMicros    float64
}

// Add accumulates another set of times into t.
func (t *Times) Add(o Times) {
	t.OSCacheMicros += o.OSCacheMicros
	t.DiskMicros += o.DiskMicros
}

// Classify buckets a batch of block accesses into cache tiers.
//
// poolHits and poolMisses are counter deltas for the batch, and
// ioTimeMicros is the aggregate I/O wait observed for the misses. When
// the average wait per miss is strictly below thresholdMicros, all
// misses are attributed to the OS cache. Otherwise the misses are
// blended between the osCache and disk tiers by
//
//	diskRatio = clamp((avg - thr/2) / (avg + thr/2), 0, 1)
//
// and the wait time is apportioned proportionally to the resulting
// counts. Classify never fails; degenerate inputs (zero or negative
// deltas) produce a best-effort result. The invariant
// Counts.Total() == poolHits + poolMisses holds for all non-negative
// inputs.
func Classify(
	poolHits, poolMisses int64,
	ioTimeMicros float64,
	thresholdMicros int,
) (Counts, Times) {
	counts := Counts{Pool: poolHits}
	if counts.Pool < 0 {
		counts.Pool = 0
	}

	if poolMisses <= 0 {
		return counts, Times{}
	}

	if ioTimeMicros < 0 || math.IsNaN(ioTimeMicros) {
		ioTimeMicros = 0
	}

	avgMicrosPerMiss := ioTimeMicros / float64(poolMisses)
	if avgMicrosPerMiss < float64(thresholdMicros) {
		counts.OSCache = poolMisses
		return counts, Times{OSCacheMicros: ioTimeMicros}
	}

	halfThreshold := float64(thresholdMicros) / 2.0
	diskRatio := (avgMicrosPerMiss - halfThreshold) /
		(avgMicrosPerMiss + halfThreshold)
	if diskRatio < 0 {
		diskRatio = 0
	}
	if diskRatio > 1 {
		diskRatio = 1
	}

	counts.Disk = int64(math.Round(float64(poolMisses) * diskRatio))
	counts.OSCache = poolMisses - counts.Disk

	times := Times{}
	misses := counts.OSCache + counts.Disk
	if misses > 0 {
		times.DiskMicros = ioTimeMicros * float64(counts.Disk) / float64(misses)
		times.OSCacheMicros = ioTimeMicros - times.DiskMicros
	}

	return counts, times
}

// ClassifyOne assigns a tier to a single block access with a literal
// timing, as supplied by a low-level wait probe. A zero timing means
// the block never left the buffer pool.
func ClassifyOne(timingMicros float64, thresholdMicros int) Tier {
	if timingMicros <= 0 {
		return TierPool
	}
	if timingMicros < float64(thresholdMicros) {
		return TierOSCache
	}
	return TierDisk
}
