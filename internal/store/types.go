package store

// Run is one persisted run.
type Run struct {
	ID        string
	Seq       int64
	Algorithm string
	// Config is the canonical JSON of the run configuration.
	Config        string
	State         string
	RanSupersteps int
	DidConverge   bool
	NodeCount     int64
	// ResultSlot is the slot the algorithm reports as its output.
	ResultSlot string
}

// NodeValue is one public slot value of one node.
type NodeValue struct {
	NodeID     int64
	OriginalID int64
	Slot       string
	Type       string
	// Value is canonical JSON.
	Value string
}
