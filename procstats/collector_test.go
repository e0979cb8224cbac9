package procstats

import (
	"errors"

	gomock "go.uber.org/mock/gomock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Collector", func() {
	var (
		mockCtrl *gomock.Controller
		pool     *MockPoolStatsProvider
		osSource *MockOSCounterSource
		c        *Collector
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		pool = NewMockPoolStatsProvider(mockCtrl)
		osSource = NewMockOSCounterSource(mockCtrl)

		c = NewCollector(pool, osSource, 4242)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should capture pool and OS counters", func() {
		pool.EXPECT().PoolCounters().Return(PoolCounters{
			Hits:         100,
			Misses:       20,
			IOTimeMicros: 1500,
		})
		osSource.EXPECT().ReadCounters(int32(4242)).Return(OSCounters{
			CPUUserSeconds: 0.5,
			ReadBytes:      8192,
			Valid:          true,
		}, nil)

		s := c.Capture()

		Expect(s.Pool.Hits).To(Equal(int64(100)))
		Expect(s.Pool.Misses).To(Equal(int64(20)))
		Expect(s.OS.Valid).To(BeTrue())
		Expect(s.OS.ReadBytes).To(Equal(uint64(8192)))
		Expect(s.Taken).NotTo(BeZero())
	})

	It("should mark OS counters invalid when the source fails", func() {
		pool.EXPECT().PoolCounters().Return(PoolCounters{Hits: 1})
		osSource.EXPECT().ReadCounters(int32(4242)).
			Return(OSCounters{}, errors.New("permission denied"))

		s := c.Capture()

		Expect(s.OS.Valid).To(BeFalse())
		Expect(s.Pool.Hits).To(Equal(int64(1)))
	})

	It("should work without an OS source", func() {
		pool.EXPECT().PoolCounters().Return(PoolCounters{Hits: 7})

		s := NewCollector(pool, nil, 4242).Capture()

		Expect(s.OS.Valid).To(BeFalse())
		Expect(s.Pool.Hits).To(Equal(int64(7)))
	})
})

var _ = Describe("Diff", func() {
	It("should subtract elementwise", func() {
		a := Snapshot{
			Pool: PoolCounters{Hits: 100, Misses: 10, IOTimeMicros: 500},
			OS: OSCounters{
				CPUUserSeconds: 1.0,
				ReadBytes:      1000,
				Valid:          true,
			},
		}
		b := Snapshot{
			Pool: PoolCounters{Hits: 150, Misses: 30, IOTimeMicros: 2500},
			OS: OSCounters{
				CPUUserSeconds: 1.5,
				ReadBytes:      9000,
				Valid:          true,
			},
		}

		d := Diff(a, b)

		Expect(d.Pool.Hits).To(Equal(int64(50)))
		Expect(d.Pool.Misses).To(Equal(int64(20)))
		Expect(d.Pool.IOTimeMicros).To(Equal(2000.0))
		Expect(d.OS.Valid).To(BeTrue())
		Expect(d.OS.CPUUserSeconds).To(BeNumerically("~", 0.5))
		Expect(d.OS.ReadBytes).To(Equal(uint64(8000)))
		Expect(d.Clamped).To(BeFalse())
	})

	It("should clamp negative deltas and flag them", func() {
		a := Snapshot{Pool: PoolCounters{Hits: 100}}
		b := Snapshot{Pool: PoolCounters{Hits: 40, Misses: 5}}

		d := Diff(a, b)

		Expect(d.Pool.Hits).To(Equal(int64(0)))
		Expect(d.Pool.Misses).To(Equal(int64(5)))
		Expect(d.Clamped).To(BeTrue())
	})

	It("should propagate OS invalidity", func() {
		a := Snapshot{OS: OSCounters{Valid: true, ReadBytes: 5}}
		b := Snapshot{OS: OSCounters{Valid: false, ReadBytes: 9}}

		d := Diff(a, b)

		Expect(d.OS.Valid).To(BeFalse())
		Expect(d.OS.ReadBytes).To(Equal(uint64(0)))
	})

	It("should clamp uint wraparound", func() {
		a := Snapshot{OS: OSCounters{Valid: true, ReadBytes: 100}}
		b := Snapshot{OS: OSCounters{Valid: true, ReadBytes: 50}}

		d := Diff(a, b)

		Expect(d.OS.ReadBytes).To(Equal(uint64(0)))
		Expect(d.Clamped).To(BeTrue())
	})
})
