package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/natefinch/lumberjack"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// LogFile routes engine logs to a size-rotated file instead of stderr.
	LogFile       string
	LogMaxSizeMB  int
	LogMaxAgeDays int

	// logWriter overrides the log destination (for testing).
	logWriter io.Writer
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the pregel CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "pregel",
		Short: "Pregel - vertex-centric graph computation",
		Long: `Run bulk-synchronous vertex-centric graph algorithms.

Graphs are loaded from YAML files, runs are configured with CUE or TOML
files, and results can be persisted to a SQLite result store.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "write logs to a rotated file instead of stderr")
	cmd.PersistentFlags().IntVar(&opts.LogMaxSizeMB, "log-max-size", 100, "maximum log file size in megabytes before rotation")
	cmd.PersistentFlags().IntVar(&opts.LogMaxAgeDays, "log-max-age", 28, "days to retain rotated log files")

	// Add subcommands
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newLogger builds the logger handed to the engine. The returned closer
// releases the log file, if any.
func (o *RootOptions) newLogger(stderr io.Writer) (*slog.Logger, io.Closer) {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = stderr
	var closer io.Closer = nopCloser{}
	switch {
	case o.logWriter != nil:
		w = o.logWriter
	case o.LogFile != "":
		lj := &lumberjack.Logger{
			Filename: o.LogFile,
			MaxSize:  o.LogMaxSizeMB,
			MaxAge:   o.LogMaxAgeDays,
		}
		w, closer = lj, lj
	case w == nil:
		w = os.Stderr
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// formatter returns an OutputFormatter writing to the command's streams.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}
