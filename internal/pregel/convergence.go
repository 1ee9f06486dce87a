package pregel

// PartitionSummary is the activity report of one partition task for one
// superstep.
type PartitionSummary struct {
	// AnyActive is true if a node in the partition ran and did not vote to halt.
	AnyActive bool
	// AnyMessageSent is true if a node in the partition sent a message.
	AnyMessageSent bool
	// Processed counts compute invocations.
	Processed int64
	// Sent counts messages sent.
	Sent int64
}

// ConvergenceTracker merges partition summaries into the global decision
// whether another superstep is needed.
type ConvergenceTracker struct {
	anyActive      bool
	anyMessageSent bool
	processed      int64
	sent           int64
}

// Reset clears the tracker before a superstep.
func (t *ConvergenceTracker) Reset() {
	*t = ConvergenceTracker{}
}

// Merge ORs a partition summary into the tracker.
func (t *ConvergenceTracker) Merge(s PartitionSummary) {
	t.anyActive = t.anyActive || s.AnyActive
	t.anyMessageSent = t.anyMessageSent || s.AnyMessageSent
	t.processed += s.Processed
	t.sent += s.Sent
}

// Continue reports whether any node is still active or any message is in
// flight. A halted node with pending messages is reactivated next superstep,
// so sent messages alone keep the run going.
func (t *ConvergenceTracker) Continue() bool {
	return t.anyActive || t.anyMessageSent
}

// Processed returns the number of compute invocations merged.
func (t *ConvergenceTracker) Processed() int64 { return t.processed }

// Sent returns the number of messages merged.
func (t *ConvergenceTracker) Sent() int64 { return t.sent }
