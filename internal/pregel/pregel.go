package pregel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"

	"github.com/roach88/pregel/internal/graph"
	"github.com/roach88/pregel/internal/messages"
	"github.com/roach88/pregel/internal/values"
)

// State is the scheduler state.
type State int32

const (
	StateNew State = iota
	StateInitializing
	StateComputing
	StateBarrierWaiting
	StateDeciding
	StateHalted
	StateFailed
	StateCancelled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateInitializing:
		return "initializing"
	case StateComputing:
		return "computing"
	case StateBarrierWaiting:
		return "barrier_waiting"
	case StateDeciding:
		return "deciding"
	case StateHalted:
		return "halted"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// IsTerminal reports whether s is final.
func (s State) IsTerminal() bool {
	return s == StateHalted || s == StateFailed || s == StateCancelled
}

// Result is the outcome of a run.
type Result struct {
	// Values is the final value store. Nil unless State is StateHalted.
	Values values.Reader
	// Slots lists the public slots, in declaration order.
	Slots []values.Element
	// RanSupersteps is the number of compute supersteps that completed.
	RanSupersteps int
	// DidConverge is false when the run stopped at the superstep cap.
	DidConverge bool
	// State is the terminal scheduler state.
	State State
}

// Option configures the collaborators of a Pregel run.
type Option func(*Pregel)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pregel) {
		p.logger = l
	}
}

// WithProgress sets the progress sink.
func WithProgress(sink ProgressSink) Option {
	return func(p *Pregel) {
		p.sink = sink
	}
}

// WithTermination sets the termination flag polled between partitions and
// supersteps.
func WithTermination(flag TerminationFlag) Option {
	return func(p *Pregel) {
		p.termination = flag
	}
}

// WithMessengerRegistry replaces the messenger registry.
func WithMessengerRegistry(r *messages.Registry) Option {
	return func(p *Pregel) {
		p.registry = r
	}
}

// Pregel schedules one run of a Computation over a Graph.
//
// Supersteps are strictly sequential. Within a superstep every partition
// task processes its own node range; the scheduler joins all of them before
// deciding whether to continue, so all values written in superstep k are
// visible to every node in superstep k+1.
//
// A Pregel value is single use: Run may be called once.
type Pregel struct {
	graph       graph.Graph
	computation Computation
	cfg         Config

	nodeCount  int64
	schema     *values.Schema
	store      *values.Store
	messenger  messages.Messenger
	kind       messages.Kind
	partitions []Partition
	direction  graph.Direction
	weighter   RelationshipWeighter

	halted []bool

	logger      *slog.Logger
	sink        ProgressSink
	progress    ProgressSink
	termination TerminationFlag
	registry    *messages.Registry

	state   atomic.Int32
	started atomic.Bool

	lateMu  sync.Mutex
	lateUse error
}

// New validates the computation against the graph and allocates the value
// store and message buffers.
//
// It fails if the computation's schema is invalid, if its message direction
// needs an inverse index the graph does not have, or if an asynchronous run
// is requested for a computation that does not support it.
func New(g graph.Graph, c Computation, cfg Config, opts ...Option) (*Pregel, error) {
	cfg = cfg.normalized()
	p := &Pregel{
		graph:       g,
		computation: c,
		cfg:         cfg,
		nodeCount:   g.NodeCount(),
		direction:   messageDirection(c),
		logger:      slog.Default(),
		sink:        nopProgress{},
		termination: AlwaysRunning,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.registry == nil {
		p.registry = messages.NewRegistry()
	}
	p.progress = safeProgress{sink: p.sink, logger: p.logger}

	if p.direction.NeedsInverseIndex() && !g.HasInverseIndex() {
		return nil, fmt.Errorf("computation sends messages %s but the graph has no inverse index", p.direction)
	}
	if cfg.Asynchronous && !supportsAsync(c) {
		return nil, fmt.Errorf("computation %T does not support asynchronous execution", c)
	}

	schema, err := c.Schema(cfg)
	if err != nil {
		return nil, fmt.Errorf("declare schema: %w", err)
	}
	p.schema = schema
	if p.store, err = values.NewStore(schema, p.nodeCount); err != nil {
		return nil, fmt.Errorf("allocate value store: %w", err)
	}

	if w, ok := c.(RelationshipWeighter); ok && cfg.UseWeights && g.HasRelationshipWeights() {
		p.weighter = w
	}

	p.partitions = Partitions(g, cfg.Partitioning, p.direction, cfg.Concurrency)
	reducer := reducerOf(c)
	p.kind = messages.SelectKind(cfg.Asynchronous, reducer)
	p.messenger, err = p.registry.New(p.kind, p.nodeCount, max(len(p.partitions), 1), reducer)
	if err != nil {
		return nil, fmt.Errorf("create messenger: %w", err)
	}
	p.halted = make([]bool, p.nodeCount)
	return p, nil
}

// State returns the current scheduler state. Safe for concurrent use.
func (p *Pregel) State() State {
	return State(p.state.Load())
}

// Partitions returns the node ranges used by the run.
func (p *Pregel) Partitions() []Partition {
	return p.partitions
}

func (p *Pregel) setState(s State) {
	prev := State(p.state.Swap(int32(s)))
	if prev != s {
		p.logger.Debug("pregel state", "from", prev.String(), "to", s.String())
	}
}

func (p *Pregel) recordLateUse(err error) {
	p.lateMu.Lock()
	defer p.lateMu.Unlock()
	if p.lateUse == nil {
		p.lateUse = err
	}
}

func (p *Pregel) lateUseError() error {
	p.lateMu.Lock()
	defer p.lateMu.Unlock()
	return p.lateUse
}

// Run executes the init phase and then supersteps until the computation
// converges, the superstep cap is reached, master compute stops it, or it
// is cancelled.
//
// On failure the returned error wraps a *ComputeError (or the error that
// ended the run) and the Result reports StateFailed. On cancellation the
// error is ErrCancelled and the Result reports StateCancelled. In both cases
// Result.Values is nil.
func (p *Pregel) Run(ctx context.Context) (*Result, error) {
	if !p.started.CompareAndSwap(false, true) {
		return nil, errors.New("pregel: Run called more than once")
	}
	defer p.messenger.Release()

	workers := make([]*worker, len(p.partitions))
	for i, part := range p.partitions {
		w := &worker{p: p, part: part}
		if pl, ok := p.computation.(PartitionLocal); ok {
			w.local = pl.NewPartitionState(part)
		}
		workers[i] = w
	}
	defer func() {
		for _, w := range workers {
			if err := w.close(); err != nil {
				p.logger.Warn("close partition state", "partition", w.part.Index, "error", err)
			}
		}
	}()
	exec := &executor{workers: workers, concurrency: p.cfg.Concurrency, termination: p.termination}

	p.logger.Info("pregel run starting",
		"nodes", humanize.Comma(p.nodeCount),
		"partitions", len(p.partitions),
		"concurrency", p.cfg.Concurrency,
		"max_supersteps", p.cfg.MaxSupersteps,
		"messenger", string(p.kind),
		"direction", p.direction.String())

	p.setState(StateInitializing)
	if stopRequested(ctx, p.termination) {
		return p.cancelled(0)
	}
	if init, ok := p.computation.(Initializer); ok {
		p.progress.BeginSubtask("Initialization")
		_, err := exec.run(ctx, nil, func(w *worker) (PartitionSummary, error) {
			return w.initPartition(init)
		})
		p.progress.EndSubtask("Initialization")
		if err := p.phaseError(err); err != nil {
			return p.failedOrCancelled(err, 0)
		}
	}

	var tracker ConvergenceTracker
	for superstep := 0; ; superstep++ {
		if stopRequested(ctx, p.termination) {
			return p.cancelled(superstep)
		}

		p.messenger.InitSuperstep(superstep)
		p.setState(StateComputing)
		subtask := fmt.Sprintf("Compute iteration %d of %d", superstep+1, p.cfg.MaxSupersteps)
		p.progress.BeginSubtask(subtask)
		summaries, err := exec.run(ctx, func() { p.setState(StateBarrierWaiting) }, func(w *worker) (PartitionSummary, error) {
			return w.computePartition(superstep)
		})
		p.progress.EndSubtask(subtask)
		if err := p.phaseError(err); err != nil {
			return p.failedOrCancelled(err, superstep)
		}

		p.setState(StateDeciding)
		ran := superstep + 1
		tracker.Reset()
		for _, s := range summaries {
			tracker.Merge(s)
		}
		p.logger.Info("superstep finished",
			"superstep", superstep,
			"computed", humanize.Comma(tracker.Processed()),
			"messages", humanize.Comma(tracker.Sent()),
			"buffers", humanize.Bytes(p.messenger.Footprint()))

		if master, ok := p.computation.(MasterComputer); ok {
			stop, err := p.masterCompute(master, superstep)
			if err != nil {
				return p.failed(fmt.Errorf("master compute after superstep %d: %w", superstep, err), ran)
			}
			if stop {
				return p.finish(ran, true)
			}
		}

		if !tracker.Continue() {
			return p.finish(ran, true)
		}
		if ran >= p.cfg.MaxSupersteps {
			return p.finish(ran, false)
		}
	}
}

// phaseError adds out-of-scope context use to a phase outcome.
func (p *Pregel) phaseError(err error) error {
	if err != nil && !errors.Is(err, ErrCancelled) {
		return err
	}
	if late := p.lateUseError(); late != nil {
		return late
	}
	return err
}

func (p *Pregel) masterCompute(master MasterComputer, superstep int) (stop bool, err error) {
	name := fmt.Sprintf("Master compute iteration %d of %d", superstep+1, p.cfg.MaxSupersteps)
	p.progress.BeginSubtask(name)
	defer p.progress.EndSubtask(name)
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return master.MasterCompute(&MasterContext{p: p, superstep: superstep})
}

func (p *Pregel) result(ran int, converged bool) *Result {
	r := &Result{RanSupersteps: ran, DidConverge: converged, State: p.State()}
	if r.State == StateHalted {
		r.Values = p.store
		for _, e := range p.schema.Elements() {
			if e.Visibility == values.Public {
				r.Slots = append(r.Slots, e)
			}
		}
	}
	return r
}

func (p *Pregel) finish(ran int, converged bool) (*Result, error) {
	p.setState(StateHalted)
	p.logger.Info("pregel run finished", "ran_supersteps", ran, "did_converge", converged)
	return p.result(ran, converged), nil
}

func (p *Pregel) failedOrCancelled(err error, ran int) (*Result, error) {
	if errors.Is(err, ErrCancelled) {
		return p.cancelled(ran)
	}
	return p.failed(err, ran)
}

func (p *Pregel) failed(err error, ran int) (*Result, error) {
	p.setState(StateFailed)
	p.logger.Error("pregel run failed", "ran_supersteps", ran, "error", err)
	return p.result(ran, false), err
}

func (p *Pregel) cancelled(ran int) (*Result, error) {
	p.setState(StateCancelled)
	p.logger.Info("pregel run cancelled", "ran_supersteps", ran)
	return p.result(ran, false), ErrCancelled
}
