package pregel

import (
	"context"
	"log/slog"
)

// ProgressSink receives progress from the scheduler. BeginSubtask and
// EndSubtask are called once per phase from the scheduler goroutine;
// LogProgress is called concurrently by partition tasks with the number of
// nodes they finished.
//
// A panicking sink is logged and otherwise ignored.
type ProgressSink interface {
	BeginSubtask(name string)
	LogProgress(delta int64)
	EndSubtask(name string)
}

// TerminationFlag is polled before each partition task starts and between
// supersteps. Running returning false cancels the run. A running compute
// phase is not interrupted, so with one partition per worker cancellation
// is observed per superstep.
type TerminationFlag interface {
	Running() bool
}

// TerminationFunc adapts a function to TerminationFlag.
type TerminationFunc func() bool

// Running implements TerminationFlag.
func (f TerminationFunc) Running() bool { return f() }

// AlwaysRunning never requests termination.
var AlwaysRunning TerminationFlag = TerminationFunc(func() bool { return true })

type nopProgress struct{}

func (nopProgress) BeginSubtask(string) {}
func (nopProgress) LogProgress(int64)   {}
func (nopProgress) EndSubtask(string)   {}

// safeProgress shields the run from a failing sink.
type safeProgress struct {
	sink   ProgressSink
	logger *slog.Logger
}

func (s safeProgress) guard(op string) {
	if r := recover(); r != nil {
		s.logger.Warn("progress sink failed", "op", op, "panic", r)
	}
}

func (s safeProgress) BeginSubtask(name string) {
	defer s.guard("begin")
	s.sink.BeginSubtask(name)
}

func (s safeProgress) LogProgress(delta int64) {
	defer s.guard("progress")
	s.sink.LogProgress(delta)
}

func (s safeProgress) EndSubtask(name string) {
	defer s.guard("end")
	s.sink.EndSubtask(name)
}

// stopRequested combines the termination flag with context cancellation.
func stopRequested(ctx context.Context, flag TerminationFlag) bool {
	if ctx.Err() != nil {
		return true
	}
	return !flag.Running()
}
