package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/pregel/internal/algo"
	"github.com/roach88/pregel/internal/canonical"
	"github.com/roach88/pregel/internal/config"
	"github.com/roach88/pregel/internal/harness"
	"github.com/roach88/pregel/internal/pregel"
	"github.com/roach88/pregel/internal/progress"
	"github.com/roach88/pregel/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Graph    string
	Config   string
	Database string
	// Values includes the result slot of every node in the output.
	Values bool

	// IDGenerator allows overriding the run id generator (for testing).
	// If nil, defaults to store.UUIDv7Generator.
	IDGenerator store.IDGenerator
}

// RunSummary is the output of the run command.
type RunSummary struct {
	RunID         string                     `json:"run_id,omitempty"`
	Seq           int64                      `json:"seq,omitempty"`
	Algorithm     string                     `json:"algorithm"`
	State         string                     `json:"state"`
	RanSupersteps int                        `json:"ran_supersteps"`
	DidConverge   bool                       `json:"did_converge"`
	NodeCount     int64                      `json:"node_count"`
	ResultSlot    string                     `json:"result_slot"`
	Values        map[string]json.RawMessage `json:"values,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an algorithm over a graph",
		Long: `Run a vertex-centric algorithm over a graph file.

The graph is read from a YAML file, the run is configured by a CUE or TOML
file. With --db the final values are persisted to a SQLite result store
(created if it doesn't exist) and can be inspected with history and show.

Ctrl-C cancels the run between partitions.

Example:
  pregel run --graph ./graph.yaml --config ./run.cue
  pregel run --graph ./graph.yaml --config ./run.toml --db ./results.db --values`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlgorithm(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Graph, "graph", "", "path to graph YAML file (required)")
	cmd.Flags().StringVar(&opts.Config, "config", "", "path to run config, .cue or .toml (required)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite result store")
	cmd.Flags().BoolVar(&opts.Values, "values", false, "print the result slot of every node")
	_ = cmd.MarkFlagRequired("graph")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runAlgorithm(opts *RunOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger, closer := opts.newLogger(cmd.ErrOrStderr())
	defer closer.Close()

	cfg, err := config.Load(opts.Config)
	if err != nil {
		if config.IsConfigError(err) {
			return fail(formatter, ExitFailure, ErrCodeInvalidConfig, "invalid run config", err)
		}
		return fail(formatter, ExitCommandError, ErrCodeNotFound, "failed to load run config", err)
	}
	formatter.VerboseLog("Loaded %s config from %s", cfg.Algorithm, opts.Config)

	g, err := harness.LoadGraph(opts.Graph)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fail(formatter, ExitCommandError, ErrCodeNotFound, "failed to load graph", err)
		}
		return fail(formatter, ExitCommandError, ErrCodeInvalidGraph, "failed to load graph", err)
	}
	formatter.VerboseLog("Loaded graph with %d nodes and %d relationships", g.NodeCount(), g.RelationshipCount())

	computation, algorithm, err := algo.NewRegistry().New(cfg.Algorithm, g, cfg.AlgoParams())
	if err != nil {
		return fail(formatter, ExitFailure, ErrCodeSetup, "failed to set up algorithm", err)
	}

	p, err := pregel.New(g, computation, cfg.EngineConfig(),
		pregel.WithLogger(logger),
		pregel.WithProgress(progress.New(logger, algorithm.Name, g.NodeCount())),
	)
	if err != nil {
		return fail(formatter, ExitFailure, ErrCodeSetup, "failed to set up engine", err)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("run starting", "algorithm", algorithm.Name, "graph", opts.Graph)
	res, err := p.Run(ctx)
	if err != nil {
		if pregel.IsCancelled(err) {
			return fail(formatter, ExitFailure, ErrCodeRunFailed, "run cancelled", err)
		}
		return fail(formatter, ExitFailure, ErrCodeRunFailed, "run failed", err)
	}

	summary := RunSummary{
		Algorithm:     algorithm.Name,
		State:         res.State.String(),
		RanSupersteps: res.RanSupersteps,
		DidConverge:   res.DidConverge,
		NodeCount:     g.NodeCount(),
		ResultSlot:    algorithm.ResultSlot,
	}

	nodeValues, err := store.NodeValuesFrom(res, g)
	if err != nil {
		return fail(formatter, ExitFailure, ErrCodeRunFailed, "failed to collect values", err)
	}
	if opts.Values {
		summary.Values = resultValues(nodeValues, algorithm.ResultSlot)
	}

	if opts.Database != "" {
		run, err := persistRun(ctx, opts, cfg, summary, nodeValues)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeStore, "failed to persist run", err)
		}
		summary.RunID = run.ID
		summary.Seq = run.Seq
		logger.Info("run persisted", "run_id", run.ID, "seq", run.Seq, "db", opts.Database)
	}

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}
	printRunSummary(formatter, summary)
	return nil
}

// persistRun writes the run and its public values to the result store.
func persistRun(ctx context.Context, opts *RunOptions, cfg *config.Run, summary RunSummary, nodeValues []store.NodeValue) (store.Run, error) {
	cfgJSON, err := canonical.Marshal(cfg.Map())
	if err != nil {
		return store.Run{}, fmt.Errorf("marshal config: %w", err)
	}

	var storeOpts []store.Option
	if opts.IDGenerator != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(opts.IDGenerator))
	}
	st, err := store.Open(opts.Database, storeOpts...)
	if err != nil {
		return store.Run{}, err
	}
	defer st.Close()

	return st.WriteRun(ctx, store.Run{
		Algorithm:     summary.Algorithm,
		Config:        string(cfgJSON),
		State:         summary.State,
		RanSupersteps: summary.RanSupersteps,
		DidConverge:   summary.DidConverge,
		NodeCount:     summary.NodeCount,
		ResultSlot:    summary.ResultSlot,
	}, nodeValues)
}

// resultValues maps original node ids to the canonical JSON of slot.
func resultValues(nodeValues []store.NodeValue, slot string) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage)
	for _, nv := range nodeValues {
		if nv.Slot == slot {
			out[strconv.FormatInt(nv.OriginalID, 10)] = json.RawMessage(nv.Value)
		}
	}
	return out
}

func printRunSummary(f *OutputFormatter, s RunSummary) {
	w := f.Writer
	if s.DidConverge {
		fmt.Fprintf(w, "✓ %s converged after %d superstep(s)\n", s.Algorithm, s.RanSupersteps)
	} else {
		fmt.Fprintf(w, "✗ %s stopped at the superstep cap (%d) without converging\n", s.Algorithm, s.RanSupersteps)
	}
	fmt.Fprintf(w, "  state:  %s\n", s.State)
	fmt.Fprintf(w, "  nodes:  %d\n", s.NodeCount)
	fmt.Fprintf(w, "  result: %s\n", s.ResultSlot)
	if s.RunID != "" {
		fmt.Fprintf(w, "  run:    %s (seq %d)\n", s.RunID, s.Seq)
	}
	if len(s.Values) > 0 {
		fmt.Fprintln(w)
		for _, nv := range sortedNodeKeys(s.Values) {
			fmt.Fprintf(w, "  %s\t%s\n", nv, s.Values[nv])
		}
	}
}

// fail reports an error through the formatter and returns it as an
// ExitError.
func fail(f *OutputFormatter, exitCode int, errCode, message string, err error) error {
	_ = f.Error(errCode, fmt.Sprintf("%s: %v", message, err), nil)
	return WrapExitError(exitCode, message, err)
}

// sortedNodeKeys orders decimal node id keys numerically.
func sortedNodeKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.ParseInt(keys[i], 10, 64)
		b, _ := strconv.ParseInt(keys[j], 10, 64)
		return a < b
	})
	return keys
}
