package pregel

import (
	"github.com/roach88/pregel/internal/graph"
	"github.com/roach88/pregel/internal/messages"
	"github.com/roach88/pregel/internal/values"
)

// nodeContext is the part of the per-node API shared by the init and
// compute phases. It is a small value bound to one node and one invocation;
// once the invocation returns, every value or message operation on it fails
// with UseAfterScopeError.
type nodeContext struct {
	w         *worker
	gen       uint64
	node      int64
	superstep int
}

func (c nodeContext) check(op string) error {
	if c.w.gen.Load() == c.gen {
		return nil
	}
	err := &UseAfterScopeError{Node: c.node, Superstep: c.superstep, Op: op}
	c.w.p.recordLateUse(err)
	return err
}

// fail remembers the first schema or index error of the invocation so it
// fails the run even if the computation drops it.
func (c nodeContext) fail(err error) error {
	if err != nil && c.w.fault == nil {
		c.w.fault = err
	}
	return err
}

// NodeID returns the dense id of the node being processed.
func (c nodeContext) NodeID() int64 { return c.node }

// NodeCount returns the number of nodes in the graph.
func (c nodeContext) NodeCount() int64 { return c.w.p.nodeCount }

// Config returns the run configuration.
func (c nodeContext) Config() Config { return c.w.p.cfg }

// Degree returns the number of relationships of the node in dir.
func (c nodeContext) Degree(dir graph.Direction) int {
	return c.w.p.graph.Degree(c.node, dir)
}

// ForEachNeighbor visits the neighbors of the node in dir until fn returns false.
func (c nodeContext) ForEachNeighbor(dir graph.Direction, fn func(target int64, weight float64) bool) {
	c.w.p.graph.ForEachRelationship(c.node, dir, func(_, target int64, weight float64) bool {
		return fn(target, weight)
	})
}

// OriginalID returns the id the node was loaded with.
func (c nodeContext) OriginalID() int64 { return c.w.p.graph.ToOriginalID(c.node) }

// ToOriginalID maps any dense node id to its original id.
func (c nodeContext) ToOriginalID(node int64) int64 { return c.w.p.graph.ToOriginalID(node) }

// ToMappedID maps an original id to its dense node id.
func (c nodeContext) ToMappedID(original int64) (int64, bool) {
	return c.w.p.graph.ToMappedID(original)
}

// Long reads a long slot of the node.
func (c nodeContext) Long(slot string) (int64, error) {
	if err := c.check("Long"); err != nil {
		return 0, err
	}
	v, err := c.w.p.store.Long(c.node, slot)
	return v, c.fail(err)
}

// SetLong writes a long slot of the node.
func (c nodeContext) SetLong(slot string, v int64) error {
	if err := c.check("SetLong"); err != nil {
		return err
	}
	return c.fail(c.w.p.store.SetLong(c.node, slot, v))
}

// Double reads a double slot of the node.
func (c nodeContext) Double(slot string) (float64, error) {
	if err := c.check("Double"); err != nil {
		return 0, err
	}
	v, err := c.w.p.store.Double(c.node, slot)
	return v, c.fail(err)
}

// SetDouble writes a double slot of the node.
func (c nodeContext) SetDouble(slot string, v float64) error {
	if err := c.check("SetDouble"); err != nil {
		return err
	}
	return c.fail(c.w.p.store.SetDouble(c.node, slot, v))
}

// LongArray reads a long array slot of the node. The slice aliases storage.
func (c nodeContext) LongArray(slot string) ([]int64, error) {
	if err := c.check("LongArray"); err != nil {
		return nil, err
	}
	v, err := c.w.p.store.LongArray(c.node, slot)
	return v, c.fail(err)
}

// SetLongArray writes a long array slot of the node.
func (c nodeContext) SetLongArray(slot string, v []int64) error {
	if err := c.check("SetLongArray"); err != nil {
		return err
	}
	return c.fail(c.w.p.store.SetLongArray(c.node, slot, v))
}

// DoubleArray reads a double array slot of the node. The slice aliases storage.
func (c nodeContext) DoubleArray(slot string) ([]float64, error) {
	if err := c.check("DoubleArray"); err != nil {
		return nil, err
	}
	v, err := c.w.p.store.DoubleArray(c.node, slot)
	return v, c.fail(err)
}

// SetDoubleArray writes a double array slot of the node.
func (c nodeContext) SetDoubleArray(slot string, v []float64) error {
	if err := c.check("SetDoubleArray"); err != nil {
		return err
	}
	return c.fail(c.w.p.store.SetDoubleArray(c.node, slot, v))
}

// Value reads any slot of the node.
func (c nodeContext) Value(slot string) (values.Value, error) {
	if err := c.check("Value"); err != nil {
		return values.Value{}, err
	}
	v, err := c.w.p.store.Get(c.node, slot)
	return v, c.fail(err)
}

// SetValue writes any slot of the node.
func (c nodeContext) SetValue(slot string, v values.Value) error {
	if err := c.check("SetValue"); err != nil {
		return err
	}
	return c.fail(c.w.p.store.Set(c.node, slot, v))
}

// InitContext is handed to Initializer.Init once per node before superstep 0.
type InitContext struct {
	nodeContext
}

// NodeProperty reads a numeric node property of the graph.
func (c InitContext) NodeProperty(key string) (float64, bool) {
	return c.w.p.graph.NodeProperty(key, c.node)
}

// ComputeContext is handed to Computation.Compute once per active node per
// superstep.
type ComputeContext struct {
	nodeContext
}

// Superstep returns the current superstep, starting at 0.
func (c ComputeContext) Superstep() int { return c.superstep }

// IsInitialSuperstep reports whether this is superstep 0.
func (c ComputeContext) IsInitialSuperstep() bool { return c.superstep == 0 }

// IsAsynchronous reports whether messages may arrive within the superstep
// they were sent in.
func (c ComputeContext) IsAsynchronous() bool { return c.w.p.cfg.Asynchronous }

// Messages returns the node's messages for this superstep. It is the same
// consuming iterator Compute received, so a second call after the sequence
// was read yields nothing. In superstep 0 it is always empty.
func (c ComputeContext) Messages() (*messages.Iterator, error) {
	if err := c.check("Messages"); err != nil {
		return nil, err
	}
	return &c.w.iter, nil
}

// SendTo sends payload to target. It becomes visible to target in the next
// superstep (or later in this one, in asynchronous mode).
func (c ComputeContext) SendTo(target int64, payload float64) error {
	if err := c.check("SendTo"); err != nil {
		return err
	}
	if target < 0 || target >= c.w.p.nodeCount {
		return c.fail(&values.IndexError{Node: target, NodeCount: c.w.p.nodeCount})
	}
	c.w.send(target, payload)
	return nil
}

// SendToNeighbors sends payload along every relationship in the
// computation's message direction. With weights enabled, each copy is
// transformed by the computation's RelationshipWeighter.
func (c ComputeContext) SendToNeighbors(payload float64) error {
	if err := c.check("SendToNeighbors"); err != nil {
		return err
	}
	w := c.w
	w.p.graph.ForEachRelationship(c.node, w.p.direction, func(_, target int64, weight float64) bool {
		m := payload
		if w.p.weighter != nil {
			m = w.p.weighter.ApplyRelationshipWeight(payload, weight)
		}
		w.send(target, m)
		return true
	})
	return nil
}

// VoteToHalt deactivates the node until a message arrives for it.
func (c ComputeContext) VoteToHalt() error {
	if err := c.check("VoteToHalt"); err != nil {
		return err
	}
	c.w.voted = true
	return nil
}

// Local returns the partition-local state created by
// PartitionLocal.NewPartitionState, or nil.
func (c ComputeContext) Local() any { return c.w.local }

// MasterContext is handed to MasterComputer.MasterCompute after each
// superstep barrier. It runs on the scheduler goroutine while no partition
// task is running, so it may read and write every node.
type MasterContext struct {
	p         *Pregel
	superstep int
}

// Superstep returns the superstep that just finished.
func (m *MasterContext) Superstep() int { return m.superstep }

// IsInitialSuperstep reports whether superstep 0 just finished.
func (m *MasterContext) IsInitialSuperstep() bool { return m.superstep == 0 }

// NodeCount returns the number of nodes in the graph.
func (m *MasterContext) NodeCount() int64 { return m.p.nodeCount }

// Config returns the run configuration.
func (m *MasterContext) Config() Config { return m.p.cfg }

// ForEachNode visits node ids in ascending order until fn returns false.
func (m *MasterContext) ForEachNode(fn func(node int64) bool) {
	for node := int64(0); node < m.p.nodeCount; node++ {
		if !fn(node) {
			return
		}
	}
}

// Values returns the value store.
func (m *MasterContext) Values() values.Reader { return m.p.store }

// Long reads a long slot of node.
func (m *MasterContext) Long(node int64, slot string) (int64, error) {
	return m.p.store.Long(node, slot)
}

// SetLong writes a long slot of node.
func (m *MasterContext) SetLong(node int64, slot string, v int64) error {
	return m.p.store.SetLong(node, slot, v)
}

// Double reads a double slot of node.
func (m *MasterContext) Double(node int64, slot string) (float64, error) {
	return m.p.store.Double(node, slot)
}

// SetDouble writes a double slot of node.
func (m *MasterContext) SetDouble(node int64, slot string, v float64) error {
	return m.p.store.SetDouble(node, slot, v)
}

// SetValue writes any slot of node.
func (m *MasterContext) SetValue(node int64, slot string, v values.Value) error {
	return m.p.store.Set(node, slot, v)
}
