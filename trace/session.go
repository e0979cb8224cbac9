package trace

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/tracelab/qtrace/plan"
	"github.com/tracelab/qtrace/procstats"
)

const timeLayout = "2006-01-02 15:04:05.000000 MST"

// Session controls one backend's trace lifecycle. It owns the output
// file, the cursor counter, and the cache threshold. A Session is not
// safe for concurrent use; like the backend it traces, it serves one
// query at a time.
type Session struct {
	cfg       Config
	collector *procstats.Collector
	catalog   plan.Catalog

	thresholdMicros int
	enabled         bool
	writeFailed     bool

	file      *os.File
	w         *bufio.Writer
	path      string
	startedAt time.Time
	cursorSeq int64
}

// NewSession builds a stopped session. collector and catalog may be
// nil; the trace then omits OS counters and relation names.
func NewSession(
	cfg Config,
	collector *procstats.Collector,
	catalog plan.Catalog,
) *Session {
	if cfg.ThresholdMicros == 0 {
		cfg.ThresholdMicros = DefaultThresholdMicros
	}
	if cfg.BlockSize == 0 {
		cfg.BlockSize = DefaultBlockSize
	}
	if cfg.SampleLimit == 0 {
		cfg.SampleLimit = DefaultSampleLimit
	}

	s := &Session{
		cfg:             cfg,
		collector:       collector,
		catalog:         catalog,
		thresholdMicros: cfg.ThresholdMicros,
	}

	atexit.Register(func() {
		if s.enabled && !s.writeFailed && s.w != nil {
			s.w.Flush()
		}
	})

	return s
}

// Start opens a fresh trace file and writes the session header. It is
// idempotent: starting an already-running session returns the current
// file without touching it.
func (s *Session) Start() (string, error) {
	if s.enabled {
		return s.path, nil
	}

	dir := s.cfg.OutputDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &SinkError{Path: dir, Op: "create directory", Err: err}
	}

	pid := s.pid()
	path := filepath.Join(dir,
		fmt.Sprintf("qtrace_%d_%s.trc", pid, xid.New().String()))

	file, err := os.OpenFile(path,
		os.O_WRONLY|os.O_CREATE|os.O_EXCL|os.O_APPEND, 0o644)
	if err != nil {
		return "", &SinkError{Path: path, Op: "open", Err: err}
	}

	s.file = file
	s.w = bufio.NewWriter(file)
	s.path = path
	s.startedAt = time.Now()
	s.cursorSeq = 0
	s.enabled = true
	s.writeFailed = false

	s.writeHeader(pid)
	return path, nil
}

// Stop writes the session footer and closes the file. Stopping a
// stopped session returns ErrNotEnabled.
func (s *Session) Stop() (string, error) {
	if !s.enabled {
		return "", ErrNotEnabled
	}

	s.printf("\n*** Trace ended at %s\n", time.Now().Format(timeLayout))
	s.printf("*** Total queries traced: %d\n", s.cursorSeq)

	path := s.path
	s.enabled = false
	if s.file != nil {
		s.w.Flush()
		s.file.Close()
		s.file = nil
		s.w = nil
	}
	return path, nil
}

// TraceFile reports the active trace file, if any.
func (s *Session) TraceFile() (string, bool) {
	if !s.enabled {
		return "", false
	}
	return s.path, true
}

// SetCacheThreshold changes the classification threshold for queries
// traced from now on. Already-written blocks keep their old tiers.
func (s *Session) SetCacheThreshold(micros int) (int, error) {
	if micros < MinThresholdMicros || micros > MaxThresholdMicros {
		return s.thresholdMicros, fmt.Errorf("%w: got %d",
			ErrThresholdRange, micros)
	}
	s.thresholdMicros = micros
	return micros, nil
}

// Threshold returns the current classification threshold.
func (s *Session) Threshold() int {
	return s.thresholdMicros
}

// Enabled reports whether queries are currently traced. A session
// whose sink failed mid-run reports false even before Stop.
func (s *Session) Enabled() bool {
	return s.enabled && !s.writeFailed
}

// QueriesTraced returns the number of cursors opened this trace run.
func (s *Session) QueriesTraced() int64 {
	return s.cursorSeq
}

func (s *Session) nextCursorID() int64 {
	s.cursorSeq++
	return s.cursorSeq
}

func (s *Session) pid() int32 {
	if s.collector != nil {
		return s.collector.PID()
	}
	return int32(os.Getpid())
}

// capture tolerates a missing collector; the snapshot then carries
// zero pool counters and invalid OS counters.
func (s *Session) capture() procstats.Snapshot {
	if s.collector == nil {
		return procstats.Snapshot{Taken: time.Now()}
	}
	return s.collector.Capture()
}

// printf appends one formatted record to the trace and flushes it, so
// a crashed backend still leaves a readable file. A write error
// disables tracing for the rest of the session and never surfaces to
// the traced query.
func (s *Session) printf(format string, args ...any) {
	if !s.enabled || s.writeFailed || s.w == nil {
		return
	}
	if _, err := fmt.Fprintf(s.w, format, args...); err != nil {
		s.failSink(err)
		return
	}
	if err := s.w.Flush(); err != nil {
		s.failSink(err)
	}
}

func (s *Session) failSink(err error) {
	s.writeFailed = true
	s.enabled = false
	fmt.Fprintf(os.Stderr, "%v; tracing disabled\n",
		&SinkError{Path: s.path, Op: "write", Err: err})

	if s.file != nil {
		// Best effort: the file may still accept a final notice.
		fmt.Fprintf(s.file, "\n*** TRACE WRITE FAILED: %v\n", err)
		s.file.Close()
		s.file = nil
		s.w = nil
	}
}

func (s *Session) writeHeader(pid int32) {
	ioTiming := "OFF"
	if s.collector != nil && s.collector.TracksIOTiming() {
		ioTiming = "ON"
	}
	osCounters := "unavailable"
	if s.collector != nil && s.collector.Capture().OS.Valid {
		osCounters = "available"
	}

	s.printf("***********************************************************************\n")
	s.printf("*** Query execution trace (per-session, per-cursor)\n")
	s.printf("*** PID: %d\n", pid)
	s.printf("*** Start: %s\n", s.startedAt.Format(timeLayout))
	s.printf("*** File: %s\n", s.path)
	s.printf("*** I/O timing: %s\n", ioTiming)
	if ioTiming == "OFF" {
		s.printf("***\n")
		s.printf("*** WARNING: the engine does not track I/O timing.\n")
		s.printf("*** Cache-tier estimates and per-node I/O detail are unavailable.\n")
		s.printf("***\n")
	}
	s.printf("*** OS counters: %s\n", osCounters)
	s.printf("*** OS cache threshold: %d microseconds\n", s.thresholdMicros)
	s.printf("***********************************************************************\n\n")
}
