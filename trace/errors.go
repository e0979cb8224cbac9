package trace

import (
	"errors"
	"fmt"
)

// ErrNotEnabled signals a control operation on a session whose trace
// is not running. It is a notice, not a failure: callers typically
// report it and move on.
var ErrNotEnabled = errors.New("trace not enabled")

// ErrThresholdRange rejects cache thresholds outside the valid range.
// The prior threshold stays in effect.
var ErrThresholdRange = fmt.Errorf(
	"cache threshold must be between %d and %d microseconds",
	MinThresholdMicros, MaxThresholdMicros)

// SinkError reports a failure to open or write the trace output sink.
// Opening fails loudly because the caller asked for a trace; write
// failures mid-session disable tracing without touching the query.
type SinkError struct {
	Path string
	Op   string
	Err  error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("trace sink: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}
