package values

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Value is a tagged union of the four slot types.
type Value struct {
	Type    ValueType
	Long    int64
	Double  float64
	Longs   []int64
	Doubles []float64
}

// LongValue wraps an int64.
func LongValue(v int64) Value { return Value{Type: Long, Long: v} }

// DoubleValue wraps a float64.
func DoubleValue(v float64) Value { return Value{Type: Double, Double: v} }

// LongArrayValue wraps a []int64.
func LongArrayValue(v []int64) Value { return Value{Type: LongArray, Longs: v} }

// DoubleArrayValue wraps a []float64.
func DoubleArrayValue(v []float64) Value { return Value{Type: DoubleArray, Doubles: v} }

// String renders the value for reports and persistence.
// Doubles use the shortest representation that round-trips.
func (v Value) String() string {
	switch v.Type {
	case Long:
		return strconv.FormatInt(v.Long, 10)
	case Double:
		return formatDouble(v.Double)
	case LongArray:
		parts := make([]string, len(v.Longs))
		for i, x := range v.Longs {
			parts[i] = strconv.FormatInt(x, 10)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case DoubleArray:
		parts := make([]string, len(v.Doubles))
		for i, x := range v.Doubles {
			parts[i] = formatDouble(x)
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return "<invalid>"
	}
}

// Plain returns the value as int64, float64, []int64 or []float64 for
// encoding. Non-finite doubles become their String form.
func (v Value) Plain() any {
	switch v.Type {
	case Long:
		return v.Long
	case Double:
		return plainDouble(v.Double)
	case LongArray:
		return slices.Clone(v.Longs)
	case DoubleArray:
		out := make([]any, len(v.Doubles))
		for i, x := range v.Doubles {
			out[i] = plainDouble(x)
		}
		return out
	default:
		return nil
	}
}

func plainDouble(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return formatDouble(f)
	}
	return f
}

func formatDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// Reader is the read-only view of a Store handed out in run results.
type Reader interface {
	NodeCount() int64
	Schema() *Schema
	Get(node int64, slot string) (Value, error)
	Long(node int64, slot string) (int64, error)
	Double(node int64, slot string) (float64, error)
	LongArray(node int64, slot string) ([]int64, error)
	DoubleArray(node int64, slot string) ([]float64, error)
}

type column struct {
	elem         Element
	longs        []int64
	doubles      []float64
	longArrays   [][]int64
	doubleArrays [][]float64
}

// Store holds one column per schema slot.
//
// Array getters return the stored slice without copying; callers must not
// retain it past the current superstep. Array setters store variable-length
// slices by reference and copy into fixed-size slots.
type Store struct {
	schema    *Schema
	nodeCount int64
	columns   []column
	index     map[string]int
}

var _ Reader = (*Store)(nil)

// NewStore allocates default-initialized columns for every slot in schema.
func NewStore(schema *Schema, nodeCount int64) (*Store, error) {
	if schema == nil {
		return nil, fmt.Errorf("schema is required")
	}
	if nodeCount < 0 {
		return nil, fmt.Errorf("negative node count %d", nodeCount)
	}

	s := &Store{
		schema: schema,
		index:  make(map[string]int, schema.Len()),
	}
	for i, e := range schema.elements {
		s.columns = append(s.columns, column{elem: e})
		s.index[e.Name] = i
	}
	s.Grow(nodeCount)
	return s, nil
}

// Grow extends every column to nodeCount nodes, default-initializing new
// entries. Shrinking is not supported; a smaller count is a no-op.
// Grow must not run concurrently with any other Store method.
func (s *Store) Grow(nodeCount int64) {
	if nodeCount <= s.nodeCount {
		return
	}
	added := int(nodeCount - s.nodeCount)
	for i := range s.columns {
		c := &s.columns[i]
		switch c.elem.Type {
		case Long:
			c.longs = slices.Grow(c.longs, added)[:nodeCount]
		case Double:
			c.doubles = slices.Grow(c.doubles, added)[:nodeCount]
		case LongArray:
			c.longArrays = slices.Grow(c.longArrays, added)[:nodeCount]
			if c.elem.Size > 0 {
				backing := make([]int64, added*c.elem.Size)
				for j := 0; j < added; j++ {
					c.longArrays[int(s.nodeCount)+j] = backing[j*c.elem.Size : (j+1)*c.elem.Size : (j+1)*c.elem.Size]
				}
			}
		case DoubleArray:
			c.doubleArrays = slices.Grow(c.doubleArrays, added)[:nodeCount]
			if c.elem.Size > 0 {
				backing := make([]float64, added*c.elem.Size)
				for j := 0; j < added; j++ {
					c.doubleArrays[int(s.nodeCount)+j] = backing[j*c.elem.Size : (j+1)*c.elem.Size : (j+1)*c.elem.Size]
				}
			}
		}
	}
	s.nodeCount = nodeCount
}

// NodeCount returns the number of nodes the store is sized for.
func (s *Store) NodeCount() int64 { return s.nodeCount }

// Schema returns the schema the store was created from.
func (s *Store) Schema() *Schema { return s.schema }

// column resolves slot and checks its type and the node id.
func (s *Store) column(node int64, slot string, typ ValueType) (*column, error) {
	i, ok := s.index[slot]
	if !ok {
		return nil, &SchemaError{Slot: slot, Message: "unknown slot"}
	}
	c := &s.columns[i]
	if c.elem.Type != typ {
		return nil, &SchemaError{Slot: slot, Message: fmt.Sprintf("slot has type %s, accessed as %s", c.elem.Type, typ)}
	}
	if node < 0 || node >= s.nodeCount {
		return nil, &IndexError{Node: node, NodeCount: s.nodeCount}
	}
	return c, nil
}

// Long returns the long value of node in slot.
func (s *Store) Long(node int64, slot string) (int64, error) {
	c, err := s.column(node, slot, Long)
	if err != nil {
		return 0, err
	}
	return c.longs[node], nil
}

// SetLong sets the long value of node in slot.
func (s *Store) SetLong(node int64, slot string, v int64) error {
	c, err := s.column(node, slot, Long)
	if err != nil {
		return err
	}
	c.longs[node] = v
	return nil
}

// Double returns the double value of node in slot.
func (s *Store) Double(node int64, slot string) (float64, error) {
	c, err := s.column(node, slot, Double)
	if err != nil {
		return 0, err
	}
	return c.doubles[node], nil
}

// SetDouble sets the double value of node in slot.
func (s *Store) SetDouble(node int64, slot string, v float64) error {
	c, err := s.column(node, slot, Double)
	if err != nil {
		return err
	}
	c.doubles[node] = v
	return nil
}

// LongArray returns the long array of node in slot.
func (s *Store) LongArray(node int64, slot string) ([]int64, error) {
	c, err := s.column(node, slot, LongArray)
	if err != nil {
		return nil, err
	}
	return c.longArrays[node], nil
}

// SetLongArray sets the long array of node in slot.
func (s *Store) SetLongArray(node int64, slot string, v []int64) error {
	c, err := s.column(node, slot, LongArray)
	if err != nil {
		return err
	}
	if c.elem.Size > 0 {
		if len(v) != c.elem.Size {
			return &SchemaError{Slot: slot, Message: fmt.Sprintf("fixed size %d, got array of length %d", c.elem.Size, len(v))}
		}
		copy(c.longArrays[node], v)
		return nil
	}
	c.longArrays[node] = v
	return nil
}

// DoubleArray returns the double array of node in slot.
func (s *Store) DoubleArray(node int64, slot string) ([]float64, error) {
	c, err := s.column(node, slot, DoubleArray)
	if err != nil {
		return nil, err
	}
	return c.doubleArrays[node], nil
}

// SetDoubleArray sets the double array of node in slot.
func (s *Store) SetDoubleArray(node int64, slot string, v []float64) error {
	c, err := s.column(node, slot, DoubleArray)
	if err != nil {
		return err
	}
	if c.elem.Size > 0 {
		if len(v) != c.elem.Size {
			return &SchemaError{Slot: slot, Message: fmt.Sprintf("fixed size %d, got array of length %d", c.elem.Size, len(v))}
		}
		copy(c.doubleArrays[node], v)
		return nil
	}
	c.doubleArrays[node] = v
	return nil
}

// Get returns the value of node in slot, whatever its type.
func (s *Store) Get(node int64, slot string) (Value, error) {
	e, err := s.schema.Lookup(slot)
	if err != nil {
		return Value{}, err
	}
	switch e.Type {
	case Long:
		v, err := s.Long(node, slot)
		return LongValue(v), err
	case Double:
		v, err := s.Double(node, slot)
		return DoubleValue(v), err
	case LongArray:
		v, err := s.LongArray(node, slot)
		return LongArrayValue(v), err
	default:
		v, err := s.DoubleArray(node, slot)
		return DoubleArrayValue(v), err
	}
}

// Set stores v for node in slot. v.Type must match the slot type.
func (s *Store) Set(node int64, slot string, v Value) error {
	switch v.Type {
	case Long:
		return s.SetLong(node, slot, v.Long)
	case Double:
		return s.SetDouble(node, slot, v.Double)
	case LongArray:
		return s.SetLongArray(node, slot, v.Longs)
	case DoubleArray:
		return s.SetDoubleArray(node, slot, v.Doubles)
	default:
		return &SchemaError{Slot: slot, Message: fmt.Sprintf("cannot set value of type %s", v.Type)}
	}
}

// DefaultValue returns the value every node holds before it is first set.
// Arrays are empty unless the slot has a fixed size.
func (s *Store) DefaultValue(slot string) (Value, error) {
	e, err := s.schema.Lookup(slot)
	if err != nil {
		return Value{}, err
	}
	switch e.Type {
	case Long:
		return LongValue(0), nil
	case Double:
		return DoubleValue(0), nil
	case LongArray:
		if e.Size > 0 {
			return LongArrayValue(make([]int64, e.Size)), nil
		}
		return LongArrayValue([]int64{}), nil
	default:
		if e.Size > 0 {
			return DoubleArrayValue(make([]float64, e.Size)), nil
		}
		return DoubleArrayValue([]float64{}), nil
	}
}
