package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/pregel/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
	// Slot limits output to one slot. Empty shows the run's result slot;
	// "*" shows every persisted slot.
	Slot string
}

// ShowResult is the output of the show command.
type ShowResult struct {
	Run    RunEntry        `json:"run"`
	Config json.RawMessage `json:"config"`
	Values []NodeEntry     `json:"values"`
}

// NodeEntry is one persisted node value.
type NodeEntry struct {
	Node  int64           `json:"node"`
	Slot  string          `json:"slot"`
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a persisted run and its values",
		Long: `Show one run from a result store: its summary, its canonical config
and the final value of every node, labelled with original node ids.

Example:
  pregel show --db ./results.db 019300aa-...
  pregel show --db ./results.db --slot '*' 019300aa-...`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite result store (required)")
	cmd.Flags().StringVar(&opts.Slot, "slot", "", "slot to show (default: the result slot, '*' for all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runShow(opts *ShowOptions, runID string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := commandContext(cmd)

	st, err := openExisting(opts.Database)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeNotFound, "failed to open result store", err)
	}
	defer st.Close()

	run, err := st.ReadRun(ctx, runID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return fail(formatter, ExitCommandError, ErrCodeNotFound, "unknown run", err)
		}
		return fail(formatter, ExitCommandError, ErrCodeStore, "failed to read run", err)
	}

	slot := opts.Slot
	switch slot {
	case "":
		slot = run.ResultSlot
	case "*":
		slot = ""
	}
	nodeValues, err := st.ReadNodeValues(ctx, run.ID, slot)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStore, "failed to read values", err)
	}

	result := ShowResult{
		Run: RunEntry{
			ID:            run.ID,
			Seq:           run.Seq,
			Algorithm:     run.Algorithm,
			State:         run.State,
			RanSupersteps: run.RanSupersteps,
			DidConverge:   run.DidConverge,
			NodeCount:     run.NodeCount,
		},
		Config: json.RawMessage(run.Config),
		Values: make([]NodeEntry, len(nodeValues)),
	}
	for i, nv := range nodeValues {
		result.Values[i] = NodeEntry{
			Node:  nv.OriginalID,
			Slot:  nv.Slot,
			Type:  nv.Type,
			Value: json.RawMessage(nv.Value),
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run %s (seq %d)\n", run.ID, run.Seq)
	fmt.Fprintf(w, "  algorithm:  %s\n", run.Algorithm)
	fmt.Fprintf(w, "  state:      %s\n", run.State)
	fmt.Fprintf(w, "  supersteps: %d (converged: %t)\n", run.RanSupersteps, run.DidConverge)
	fmt.Fprintf(w, "  config:     %s\n", run.Config)
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NODE\tSLOT\tVALUE")
	for _, v := range result.Values {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", v.Node, v.Slot, v.Value)
	}
	return tw.Flush()
}
