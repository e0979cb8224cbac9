package trace

import (
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tracelab/qtrace/procstats"
)

var _ = Describe("Session", func() {
	var (
		dir     string
		session *Session
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		collector := procstats.NewCollector(
			&fakePool{ioTiming: true},
			&fakeOS{counters: procstats.OSCounters{Valid: true}},
			4242,
		)
		session = NewSession(
			Config{OutputDir: dir, ThresholdMicros: 500},
			collector, nil)
	})

	It("should open a trace file and write the header", func() {
		path, err := session.Start()

		Expect(err).To(BeNil())
		Expect(filepath.Dir(path)).To(Equal(dir))
		Expect(filepath.Base(path)).To(HavePrefix("qtrace_4242_"))
		Expect(path).To(HaveSuffix(".trc"))

		data, err := os.ReadFile(path)
		Expect(err).To(BeNil())
		Expect(string(data)).To(ContainSubstring("PID: 4242"))
		Expect(string(data)).To(ContainSubstring("I/O timing: ON"))
		Expect(string(data)).To(ContainSubstring("OS counters: available"))
		Expect(string(data)).To(
			ContainSubstring("OS cache threshold: 500 microseconds"))
	})

	It("should be idempotent on start", func() {
		first, err := session.Start()
		Expect(err).To(BeNil())

		second, err := session.Start()
		Expect(err).To(BeNil())
		Expect(second).To(Equal(first))
	})

	It("should write the footer on stop and reject a second stop", func() {
		path, _ := session.Start()

		stopped, err := session.Stop()
		Expect(err).To(BeNil())
		Expect(stopped).To(Equal(path))

		data, _ := os.ReadFile(path)
		Expect(string(data)).To(ContainSubstring("Trace ended at"))
		Expect(string(data)).To(ContainSubstring("Total queries traced: 0"))

		_, err = session.Stop()
		Expect(err).To(MatchError(ErrNotEnabled))
	})

	It("should report the trace file only while running", func() {
		_, ok := session.TraceFile()
		Expect(ok).To(BeFalse())

		path, _ := session.Start()
		got, ok := session.TraceFile()
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal(path))

		session.Stop()
		_, ok = session.TraceFile()
		Expect(ok).To(BeFalse())
	})

	It("should use a fresh file per start", func() {
		first, _ := session.Start()
		session.Stop()

		second, err := session.Start()
		Expect(err).To(BeNil())
		Expect(second).NotTo(Equal(first))
	})

	It("should warn when the engine does not track I/O timing", func() {
		collector := procstats.NewCollector(&fakePool{ioTiming: false}, nil, 1)
		s := NewSession(Config{OutputDir: dir}, collector, nil)

		path, err := s.Start()
		Expect(err).To(BeNil())

		data, _ := os.ReadFile(path)
		Expect(string(data)).To(ContainSubstring("I/O timing: OFF"))
		Expect(string(data)).To(ContainSubstring(
			"WARNING: the engine does not track I/O timing."))
		Expect(string(data)).To(ContainSubstring("OS counters: unavailable"))
	})

	It("should reject out-of-range thresholds and keep the old value", func() {
		_, err := session.SetCacheThreshold(MinThresholdMicros - 1)
		Expect(err).To(MatchError(ErrThresholdRange))
		Expect(session.Threshold()).To(Equal(500))

		_, err = session.SetCacheThreshold(MaxThresholdMicros + 1)
		Expect(err).To(MatchError(ErrThresholdRange))
		Expect(session.Threshold()).To(Equal(500))

		got, err := session.SetCacheThreshold(MinThresholdMicros)
		Expect(err).To(BeNil())
		Expect(got).To(Equal(MinThresholdMicros))
		Expect(session.Threshold()).To(Equal(MinThresholdMicros))
	})

	It("should fail loudly when the sink cannot be opened", func() {
		blocked := filepath.Join(dir, "blocked")
		Expect(os.WriteFile(blocked, []byte("x"), 0o644)).To(Succeed())

		s := NewSession(Config{OutputDir: blocked}, nil, nil)
		_, err := s.Start()

		var sinkErr *SinkError
		Expect(errors.As(err, &sinkErr)).To(BeTrue())
		Expect(s.Enabled()).To(BeFalse())
	})
})
