package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pregel/internal/algo"
	"github.com/roach88/pregel/internal/config"
	"github.com/roach88/pregel/internal/graph"
	"github.com/roach88/pregel/internal/harness"
	"github.com/roach88/pregel/internal/pregel"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	// Graph, if set, additionally checks that each config can be set up
	// against this graph (source node present, inverse index available).
	Graph string
}

// ValidationError describes one config that failed validation.
type ValidationError struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Files  int               `json:"files"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <config>...",
		Short: "Validate run configs without running them",
		Long: `Validate CUE or TOML run configs against the run schema.

Checks the algorithm name, value ranges and per-algorithm parameters. With
--graph, also constructs the algorithm and engine for that graph, which
catches a missing SSSP source node or a graph without the inverse index a
computation needs.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Graph, "graph", "", "graph YAML file to check setup against")

	return cmd
}

func runValidate(opts *ValidateOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	var g graph.Graph
	if opts.Graph != "" {
		var err error
		g, err = harness.LoadGraph(opts.Graph)
		if err != nil {
			_ = formatter.Error(ErrCodeInvalidGraph, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to load graph", err)
		}
	}

	var validationErrors []ValidationError
	for _, path := range paths {
		formatter.VerboseLog("Validating %s", path)
		if verr := validateConfig(path, g); verr != nil {
			validationErrors = append(validationErrors, *verr)
		}
	}

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, len(paths), validationErrors)
	}

	// Output success
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Files: len(paths)})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d config(s) valid\n", len(paths))
	return nil
}

// validateConfig loads one run config and, given a graph, sets up its
// algorithm and engine.
func validateConfig(path string, g graph.Graph) *ValidationError {
	cfg, err := config.Load(path)
	if err != nil {
		code := ErrCodeInvalidConfig
		var cfgErr *config.ConfigError
		if !errors.As(err, &cfgErr) {
			code = ErrCodeNotFound
		}
		return &ValidationError{Path: path, Code: code, Message: err.Error()}
	}
	if g == nil {
		return nil
	}

	computation, _, err := algo.NewRegistry().New(cfg.Algorithm, g, cfg.AlgoParams())
	if err == nil {
		_, err = pregel.New(g, computation, cfg.EngineConfig())
	}
	if err != nil {
		return &ValidationError{Path: path, Code: ErrCodeSetup, Message: err.Error()}
	}
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, files int, errs []ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Files:  files,
				Errors: errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "%s\n", err.Path)
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
