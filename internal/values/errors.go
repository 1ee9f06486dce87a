package values

import (
	"errors"
	"fmt"
)

// SchemaError reports a slot that was redeclared, is unknown, or was accessed
// with the wrong type. It indicates a defect in the computation.
type SchemaError struct {
	Slot    string
	Message string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: slot %q: %s", e.Slot, e.Message)
}

// IndexError reports a node id outside [0, NodeCount).
type IndexError struct {
	Node      int64
	NodeCount int64
}

// Error implements the error interface.
func (e *IndexError) Error() string {
	return fmt.Sprintf("index error: node %d out of range [0, %d)", e.Node, e.NodeCount)
}

// IsSchemaError returns true if err wraps a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// IsIndexError returns true if err wraps an IndexError.
func IsIndexError(err error) bool {
	var ie *IndexError
	return errors.As(err, &ie)
}
