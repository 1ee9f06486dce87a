package store

import (
	"fmt"

	"github.com/roach88/pregel/internal/canonical"
	"github.com/roach88/pregel/internal/graph"
	"github.com/roach88/pregel/internal/pregel"
	"github.com/roach88/pregel/internal/values"
)

// NodeValuesFrom flattens the public slots of a halted run. Rows are ordered
// by node, then slot declaration order.
func NodeValuesFrom(res *pregel.Result, g graph.Graph) ([]NodeValue, error) {
	if res.Values == nil {
		return nil, nil
	}
	n := res.Values.NodeCount()
	out := make([]NodeValue, 0, int(n)*len(res.Slots))
	for node := int64(0); node < n; node++ {
		for _, slot := range res.Slots {
			v, err := res.Values.Get(node, slot.Name)
			if err != nil {
				return nil, fmt.Errorf("read node %d slot %q: %w", node, slot.Name, err)
			}
			encoded, err := marshalValue(v)
			if err != nil {
				return nil, fmt.Errorf("encode node %d slot %q: %w", node, slot.Name, err)
			}
			out = append(out, NodeValue{
				NodeID:     node,
				OriginalID: g.ToOriginalID(node),
				Slot:       slot.Name,
				Type:       slot.Type.String(),
				Value:      encoded,
			})
		}
	}
	return out, nil
}

// marshalValue encodes a slot value as canonical JSON.
func marshalValue(v values.Value) (string, error) {
	plain := v.Plain()
	if plain == nil {
		return "", fmt.Errorf("invalid value type %d", v.Type)
	}
	data, err := canonical.Marshal(plain)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
