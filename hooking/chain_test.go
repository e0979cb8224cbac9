package hooking

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// recordingEngine notes every callback it receives.
type recordingEngine struct {
	calls   []string
	planErr error
}

func (e *recordingEngine) Plan(q *Query) error {
	e.calls = append(e.calls, "engine.Plan")
	return e.planErr
}

func (e *recordingEngine) ExecutorStart(q *Query) error {
	e.calls = append(e.calls, "engine.Start")
	return nil
}

func (e *recordingEngine) ExecutorRun(q *Query) error {
	e.calls = append(e.calls, "engine.Run")
	return nil
}

func (e *recordingEngine) ExecutorEnd(q *Query) error {
	e.calls = append(e.calls, "engine.End")
	return nil
}

// taggingHandler records its position around the delegation.
type taggingHandler struct {
	tag string
	log *[]string
}

func (h *taggingHandler) Plan(q *Query, next PlanFunc) error {
	*h.log = append(*h.log, h.tag+".Plan.before")
	err := next(q)
	*h.log = append(*h.log, h.tag+".Plan.after")
	return err
}

func (h *taggingHandler) ExecutorStart(q *Query, next StartFunc) error {
	*h.log = append(*h.log, h.tag+".Start")
	return next(q)
}

func (h *taggingHandler) ExecutorRun(q *Query, next RunFunc) error {
	*h.log = append(*h.log, h.tag+".Run")
	return next(q)
}

func (h *taggingHandler) ExecutorEnd(q *Query, next EndFunc) error {
	*h.log = append(*h.log, h.tag+".End")
	return next(q)
}

var _ = Describe("Chain", func() {
	var (
		engine *recordingEngine
		chain  *Chain
		log    []string
	)

	BeforeEach(func() {
		engine = &recordingEngine{}
		chain = NewChain(engine)
		log = nil
	})

	It("should reach the engine with no handlers", func() {
		Expect(chain.Plan(&Query{})).To(Succeed())
		Expect(engine.calls).To(Equal([]string{"engine.Plan"}))
	})

	It("should run the newest handler outermost", func() {
		chain.Use(&taggingHandler{tag: "old", log: &log})
		chain.Use(&taggingHandler{tag: "new", log: &log})

		Expect(chain.Plan(&Query{})).To(Succeed())

		Expect(log).To(Equal([]string{
			"new.Plan.before",
			"old.Plan.before",
			"old.Plan.after",
			"new.Plan.after",
		}))
		Expect(engine.calls).To(Equal([]string{"engine.Plan"}))
	})

	It("should delegate every phase to the engine", func() {
		chain.Use(&taggingHandler{tag: "h", log: &log})

		q := &Query{}
		Expect(chain.Plan(q)).To(Succeed())
		Expect(chain.ExecutorStart(q)).To(Succeed())
		Expect(chain.ExecutorRun(q)).To(Succeed())
		Expect(chain.ExecutorRun(q)).To(Succeed())
		Expect(chain.ExecutorEnd(q)).To(Succeed())

		Expect(engine.calls).To(Equal([]string{
			"engine.Plan",
			"engine.Start",
			"engine.Run",
			"engine.Run",
			"engine.End",
		}))
	})

	It("should propagate engine errors outward", func() {
		engine.planErr = errors.New("syntax error")
		chain.Use(&taggingHandler{tag: "h", log: &log})

		err := chain.Plan(&Query{})

		Expect(err).To(MatchError("syntax error"))
		Expect(log).To(Equal([]string{"h.Plan.before", "h.Plan.after"}))
	})

	It("should nest chains", func() {
		inner := NewChain(engine)
		inner.Use(&taggingHandler{tag: "inner", log: &log})

		outer := NewChain(inner)
		outer.Use(&taggingHandler{tag: "outer", log: &log})

		Expect(outer.ExecutorRun(&Query{})).To(Succeed())
		Expect(log).To(Equal([]string{"outer.Run", "inner.Run"}))
		Expect(engine.calls).To(Equal([]string{"engine.Run"}))
	})
})
