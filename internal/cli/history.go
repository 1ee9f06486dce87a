package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roach88/pregel/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// RunEntry is one row of history output.
type RunEntry struct {
	ID            string `json:"id"`
	Seq           int64  `json:"seq"`
	Algorithm     string `json:"algorithm"`
	State         string `json:"state"`
	RanSupersteps int    `json:"ran_supersteps"`
	DidConverge   bool   `json:"did_converge"`
	NodeCount     int64  `json:"node_count"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List persisted runs",
		Long: `List runs stored in a result store, oldest first.

Example:
  pregel history --db ./results.db
  pregel history --db ./results.db --limit 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite result store (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show only the most recent N runs (0 = all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := openExisting(opts.Database)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeNotFound, "failed to open result store", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(commandContext(cmd), opts.Limit)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStore, "failed to list runs", err)
	}

	entries := make([]RunEntry, len(runs))
	for i, r := range runs {
		entries[i] = RunEntry{
			ID:            r.ID,
			Seq:           r.Seq,
			Algorithm:     r.Algorithm,
			State:         r.State,
			RanSupersteps: r.RanSupersteps,
			DidConverge:   r.DidConverge,
			NodeCount:     r.NodeCount,
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tID\tALGORITHM\tSTATE\tSUPERSTEPS\tCONVERGED\tNODES")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%t\t%s\n",
			e.Seq, e.ID, e.Algorithm, e.State, e.RanSupersteps, e.DidConverge, humanize.Comma(e.NodeCount))
	}
	return tw.Flush()
}

// openExisting opens a result store that must already exist; read-only
// commands never create one.
func openExisting(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return store.Open(path)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
