package pregel

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned by Run when the termination flag fires or the
// context is done. It is a normal terminal outcome, not a failure: the run
// stops between partitions or supersteps and no partial result is reported.
var ErrCancelled = errors.New("pregel: run cancelled")

// ComputeError wraps an error returned (or a panic raised) by compute logic.
//
// Superstep is -1 for the init phase. Node is the dense node id; Original is
// the graph's original id for it.
type ComputeError struct {
	Node      int64
	Original  int64
	Superstep int
	Partition int
	Err       error
}

// Error implements the error interface.
func (e *ComputeError) Error() string {
	phase := fmt.Sprintf("superstep %d", e.Superstep)
	if e.Superstep < 0 {
		phase = "init"
	}
	return fmt.Sprintf("compute failed at node %d (original %d) in %s, partition %d: %v",
		e.Node, e.Original, phase, e.Partition, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ComputeError) Unwrap() error {
	return e.Err
}

// PanicError carries a value recovered from a panicking compute invocation.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// UseAfterScopeError reports a context method called after the compute or
// init invocation it was handed to has returned.
type UseAfterScopeError struct {
	Node      int64
	Superstep int
	Op        string
}

// Error implements the error interface.
func (e *UseAfterScopeError) Error() string {
	return fmt.Sprintf("use after scope: %s on context of node %d, superstep %d", e.Op, e.Node, e.Superstep)
}

// IsComputeError returns true if err wraps a ComputeError.
func IsComputeError(err error) bool {
	var ce *ComputeError
	return errors.As(err, &ce)
}

// IsPanic returns true if err wraps a recovered panic.
func IsPanic(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

// IsUseAfterScopeError returns true if err wraps a UseAfterScopeError.
func IsUseAfterScopeError(err error) bool {
	var ue *UseAfterScopeError
	return errors.As(err, &ue)
}

// IsCancelled returns true if err is or wraps ErrCancelled.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
