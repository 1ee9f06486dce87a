// Package values implements the columnar per-node value store.
//
// A Schema declares named slots, each with a value type. A Store owns one
// backing column per slot, sized to the node count, and indexes it by dense
// node id.
//
// Concurrency: the Store does no locking. Within a superstep every node id
// is owned by exactly one partition task and only that task may write it.
// Values written in one superstep are visible to all tasks in the next one
// because supersteps are separated by a barrier.
package values

import (
	"fmt"
	"slices"
)

// ValueType is the type of a schema slot.
type ValueType int

const (
	// Long is a scalar int64.
	Long ValueType = iota + 1
	// Double is a scalar float64.
	Double
	// LongArray is a []int64, variable length unless a fixed size is declared.
	LongArray
	// DoubleArray is a []float64, variable length unless a fixed size is declared.
	DoubleArray
)

// String returns the lowercase name of the value type.
func (t ValueType) String() string {
	switch t {
	case Long:
		return "long"
	case Double:
		return "double"
	case LongArray:
		return "long_array"
	case DoubleArray:
		return "double_array"
	default:
		return fmt.Sprintf("value_type(%d)", int(t))
	}
}

// IsArray reports whether t is an array type.
func (t ValueType) IsArray() bool {
	return t == LongArray || t == DoubleArray
}

// Visibility controls whether a slot is part of a run's published result.
type Visibility int

const (
	// Public slots are reported in results and persisted.
	Public Visibility = iota
	// Private slots are scratch state for the computation only.
	Private
)

// Element is one declared slot.
type Element struct {
	Name       string
	Type       ValueType
	Size       int // fixed array length; 0 means variable length
	Visibility Visibility
}

// ElementOption configures a slot at declaration time.
type ElementOption func(*Element)

// WithFixedSize declares an array slot with a fixed length.
// Default values for the slot are zero-filled arrays of that length.
func WithFixedSize(n int) ElementOption {
	return func(e *Element) {
		e.Size = n
	}
}

// WithVisibility sets the slot visibility (default Public).
func WithVisibility(v Visibility) ElementOption {
	return func(e *Element) {
		e.Visibility = v
	}
}

// Schema is the ordered set of slots declared for a run.
// It is fixed once a Store has been created from it.
type Schema struct {
	elements []Element
	index    map[string]int
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{index: make(map[string]int)}
}

// Declare adds a slot. Redeclaring a name fails with a SchemaError.
func (s *Schema) Declare(name string, typ ValueType, opts ...ElementOption) error {
	if name == "" {
		return &SchemaError{Slot: name, Message: "slot name must not be empty"}
	}
	if _, exists := s.index[name]; exists {
		return &SchemaError{Slot: name, Message: "slot already declared"}
	}
	if typ < Long || typ > DoubleArray {
		return &SchemaError{Slot: name, Message: fmt.Sprintf("unknown value type %s", typ)}
	}

	e := Element{Name: name, Type: typ}
	for _, opt := range opts {
		opt(&e)
	}
	if e.Size < 0 {
		return &SchemaError{Slot: name, Message: fmt.Sprintf("negative fixed size %d", e.Size)}
	}
	if e.Size > 0 && !typ.IsArray() {
		return &SchemaError{Slot: name, Message: fmt.Sprintf("fixed size is only valid for array types, not %s", typ)}
	}

	s.index[name] = len(s.elements)
	s.elements = append(s.elements, e)
	return nil
}

// Lookup returns the element for name or a SchemaError for unknown slots.
func (s *Schema) Lookup(name string) (Element, error) {
	i, ok := s.index[name]
	if !ok {
		return Element{}, &SchemaError{Slot: name, Message: "unknown slot"}
	}
	return s.elements[i], nil
}

// Elements returns the declared slots in declaration order.
func (s *Schema) Elements() []Element {
	return slices.Clone(s.elements)
}

// Len returns the number of declared slots.
func (s *Schema) Len() int {
	return len(s.elements)
}

// SchemaBuilder declares slots fluently and reports the first failure on Build.
type SchemaBuilder struct {
	schema *Schema
	err    error
}

// NewSchemaBuilder creates a builder over an empty schema.
func NewSchemaBuilder() *SchemaBuilder {
	return &SchemaBuilder{schema: NewSchema()}
}

// Add declares a slot unless an earlier Add failed.
func (b *SchemaBuilder) Add(name string, typ ValueType, opts ...ElementOption) *SchemaBuilder {
	if b.err == nil {
		b.err = b.schema.Declare(name, typ, opts...)
	}
	return b
}

// Build returns the schema or the first declaration error.
func (b *SchemaBuilder) Build() (*Schema, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.schema, nil
}
