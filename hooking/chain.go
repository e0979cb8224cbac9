package hooking

// Engine is the innermost receiver of the lifecycle callbacks: the
// host engine's own planner and executor.
type Engine interface {
	Plan(q *Query) error
	ExecutorStart(q *Query) error
	ExecutorRun(q *Query) error
	ExecutorEnd(q *Query) error
}

// Delegation continuations handed to handlers. Each points at the rest
// of the chain for one phase.
type (
	PlanFunc  func(q *Query) error
	StartFunc func(q *Query) error
	RunFunc   func(q *Query) error
	EndFunc   func(q *Query) error
)

// Handler observes the query lifecycle. Every method must call next
// exactly once, even when the handler's own logic is inactive:
// skipping the call silently disables whatever was registered before
// this handler.
type Handler interface {
	Plan(q *Query, next PlanFunc) error
	ExecutorStart(q *Query, next StartFunc) error
	ExecutorRun(q *Query, next RunFunc) error
	ExecutorEnd(q *Query, next EndFunc) error
}

// Chain composes handlers around an engine. The handler registered
// last is outermost, mirroring how hook chains stack in the host
// engine: the newest registration sees each callback first and
// delegates inward. Chain itself implements Engine, so chains nest.
type Chain struct {
	engine   Engine
	handlers []Handler
}

// NewChain creates a chain that bottoms out at the given engine.
func NewChain(engine Engine) *Chain {
	return &Chain{engine: engine}
}

// Use appends a handler. The most recently added handler runs first.
func (c *Chain) Use(h Handler) {
	c.handlers = append(c.handlers, h)
}

// Plan drives the plan phase through the chain.
func (c *Chain) Plan(q *Query) error {
	next := PlanFunc(c.engine.Plan)
	for _, h := range c.handlers {
		h, inner := h, next
		next = func(q *Query) error { return h.Plan(q, inner) }
	}
	return next(q)
}

// ExecutorStart drives the executor-start phase through the chain.
func (c *Chain) ExecutorStart(q *Query) error {
	next := StartFunc(c.engine.ExecutorStart)
	for _, h := range c.handlers {
		h, inner := h, next
		next = func(q *Query) error { return h.ExecutorStart(q, inner) }
	}
	return next(q)
}

// ExecutorRun drives one executor-run pass through the chain. A query
// may run multiple times (partial execution through cursors).
func (c *Chain) ExecutorRun(q *Query) error {
	next := RunFunc(c.engine.ExecutorRun)
	for _, h := range c.handlers {
		h, inner := h, next
		next = func(q *Query) error { return h.ExecutorRun(q, inner) }
	}
	return next(q)
}

// ExecutorEnd drives the executor-end phase through the chain.
func (c *Chain) ExecutorEnd(q *Query) error {
	next := EndFunc(c.engine.ExecutorEnd)
	for _, h := range c.handlers {
		h, inner := h, next
		next = func(q *Query) error { return h.ExecutorEnd(q, inner) }
	}
	return next(q)
}
