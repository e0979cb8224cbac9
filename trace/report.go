package trace

import (
	"time"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/tracelab/qtrace/hooking"
	"github.com/tracelab/qtrace/plan"
	"github.com/tracelab/qtrace/procstats"
)

const (
	queryLine   = "=====================================================================\n"
	sectionLine = "---------------------------------------------------------------------\n"

	// maxWaitLines caps the WAIT EVENTS section; very large scans would
	// otherwise dominate the file.
	maxWaitLines = 100
)

func (s *Session) writeParse(qc *QueryContext) {
	s.printf(queryLine)
	s.printf("PARSE #%d\n", qc.CursorID)
	s.printf("SQL: %s\n", qc.SQL)

	// The fingerprint groups executions of the same statement shape
	// across bind values, like a statement digest.
	if fp, err := pg_query.Fingerprint(qc.SQL); err == nil {
		s.printf("SQL ID: %s\n", fp)
	}
	if norm, err := pg_query.Normalize(qc.SQL); err == nil && norm != qc.SQL {
		s.printf("SQL (normalized): %s\n", norm)
	}

	s.printf("PARSE TIME: %.6f sec\n", qc.ParseEnd.Sub(qc.ParseStart).Seconds())
}

func (s *Session) writeBinds(qc *QueryContext, params []hooking.Param) {
	s.printf(sectionLine)
	s.printf("BINDS #%d:\n", qc.CursorID)
	for _, p := range params {
		if p.Null {
			s.printf(" Bind#%d type=%s value=NULL\n", p.Index, p.Type)
			continue
		}
		s.printf(" Bind#%d type=%s value=%q\n", p.Index, p.Type, p.Value)
	}
}

func (s *Session) writeExecHeader(qc *QueryContext) {
	s.printf(sectionLine)
	s.printf("EXEC #%d\n", qc.CursorID)
}

func (s *Session) writeExecTime(elapsed time.Duration, rows int64) {
	s.printf("EXEC TIME: ela=%.6f sec rows=%d\n", elapsed.Seconds(), rows)
}

func (s *Session) writeBufferStats(total procstats.Snapshot) {
	s.printf(sectionLine)
	s.printf("BUFFER STATS: cr=%d pr=%d", total.Pool.Hits, total.Pool.Misses)
	if total.Pool.Dirtied > 0 {
		s.printf(" dirtied=%d", total.Pool.Dirtied)
	}
	if total.Pool.Written > 0 {
		s.printf(" written=%d", total.Pool.Written)
	}
	s.printf("\n")
}

func (s *Session) writeCPUStats(total procstats.Snapshot) {
	if !total.OS.Valid {
		s.printf("CPU: unavailable (OS counters could not be read)\n")
		return
	}

	s.printf("CPU: user=%.3f sec system=%.3f sec total=%.3f sec",
		total.OS.CPUUserSeconds, total.OS.CPUSystemSeconds,
		total.OS.TotalCPUSeconds())
	if total.OS.TotalCPUSeconds() < 0.01 {
		s.printf(" (OS CPU accounting is coarse; fast queries may read 0.000)")
	}
	s.printf("\n")
	s.printf("OS I/O: read=%d bytes write=%d bytes\n",
		total.OS.ReadBytes, total.OS.WriteBytes)
}

func (s *Session) writeWaitEvents(qc *QueryContext) {
	if len(qc.Samples) == 0 {
		return
	}

	s.printf(sectionLine)
	s.printf("WAIT EVENTS:\n")

	shown := 0
	for _, sample := range qc.Samples {
		if sample.PoolHit || sample.TimingMicros <= 0 {
			continue
		}
		s.printf("WAIT #%d: nam='db file sequential read' ela=%.0f file=%s fork=%s tier=%s\n",
			qc.CursorID, sample.TimingMicros, sample.LocationID,
			sample.Fork, sample.Tier)
		if sample.Relation != "" {
			s.printf("  table='%s'\n", sample.Relation)
		}
		shown++
		if shown >= maxWaitLines {
			s.printf("  ... (showing first %d I/O samples only, total: %d)\n",
				maxWaitLines, len(qc.Samples))
			break
		}
	}
	if shown == 0 {
		s.printf("  (no physical I/O - all sampled blocks served from cache)\n")
	}
}

func (s *Session) writeBlockIOSummary(qc *QueryContext, total procstats.Snapshot) {
	if qc.Tiers.Total() == 0 {
		return
	}

	s.printf(sectionLine)
	s.printf("BLOCK I/O SUMMARY:\n")
	s.printf("Total blocks accessed: %d\n", qc.Tiers.Total())
	s.printf("  Buffer pool hits (cr): %d blocks - no I/O\n", qc.Tiers.Pool)
	if qc.Tiers.OSCache > 0 {
		s.printf("  OS cache reads: ~%d blocks (%.2f ms)\n",
			qc.Tiers.OSCache, qc.TierTimes.OSCacheMicros/1000.0)
	}
	if qc.Tiers.Disk > 0 {
		s.printf("  Disk reads: ~%d blocks (%.2f ms)\n",
			qc.Tiers.Disk, qc.TierTimes.DiskMicros/1000.0)
	}

	misses := qc.Tiers.OSCache + qc.Tiers.Disk
	ioMicros := qc.TierTimes.OSCacheMicros + qc.TierTimes.DiskMicros
	if misses > 0 {
		s.printf("  Average I/O time: %.1f microseconds/block\n",
			ioMicros/float64(misses))
		s.printf("  Total I/O time: %.2f ms\n", ioMicros/1000.0)
	}
	if qc.ClampedDeltas {
		s.printf("  NOTE: counter inconsistency observed; negative deltas clamped to zero\n")
	}

	if total.OS.Valid && s.cfg.BlockSize > 0 {
		osBlocks := int64(total.OS.ReadBytes) / int64(s.cfg.BlockSize)
		s.printf("\n")
		s.printf("Verification from OS counters:\n")
		s.printf("  Physical reads: %d bytes (%d blocks)\n",
			total.OS.ReadBytes, osBlocks)
		switch {
		case osBlocks == qc.Tiers.Disk:
			s.printf("  Matches the estimated disk read count\n")
		case osBlocks < qc.Tiers.Disk:
			s.printf("  Note: some reads classified as disk were likely served by the OS cache\n")
		default:
			s.printf("  Note: the OS observed more physical reads than attributed to this query\n")
		}
	}
}

func (s *Session) writePlanTree(qc *QueryContext, root *plan.Node) {
	if root == nil {
		return
	}
	s.printf(sectionLine)
	s.printf("EXECUTION PLAN #%d:\n", qc.CursorID)
	s.printf("%s", RenderPlan(root, s.thresholdMicros, s.catalog))
}

func (s *Session) writeQueryFooter() {
	s.printf(queryLine)
	s.printf("\n")
}
