// Package config loads run configurations from CUE or TOML files.
//
// Both formats are unified with one embedded CUE schema (schema.cue), which
// supplies defaults and rejects unknown keys, out-of-range values and
// algorithm/parameter combinations that cannot run. A .cue file declares the
// run under a top-level "run" field; a TOML file holds the run fields at its
// top level.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/BurntSushi/toml"

	"github.com/roach88/pregel/internal/algo"
	"github.com/roach88/pregel/internal/pregel"
)

//go:embed schema.cue
var schemaSource string

// Run is a validated run configuration.
type Run struct {
	Algorithm     string `json:"algorithm"`
	MaxSupersteps int    `json:"maxSupersteps"`
	Concurrency   int    `json:"concurrency"`
	Asynchronous  bool   `json:"asynchronous"`
	Partitioning  string `json:"partitioning"`
	UseWeights    bool   `json:"useWeights"`
	Params        Params `json:"params"`
}

// Params holds the algorithm-specific settings.
type Params struct {
	SourceNode    *int64   `json:"sourceNode,omitempty"`
	DampingFactor *float64 `json:"dampingFactor,omitempty"`
	Tolerance     *float64 `json:"tolerance,omitempty"`
	SeedProperty  string   `json:"seedProperty,omitempty"`
}

// ConfigError reports a file that could not be read or does not satisfy the
// schema.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid run config: %v", e.Err)
	}
	return fmt.Sprintf("invalid run config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Load reads a .cue or .toml run file.
func Load(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run config: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes run file contents. The filename selects the format by
// extension and is used in error positions.
func Parse(data []byte, filename string) (*Run, error) {
	ctx := cuecontext.New()

	var v cue.Value
	switch ext := filepath.Ext(filename); ext {
	case ".cue":
		file := ctx.CompileBytes(data, cue.Filename(filename))
		if err := file.Err(); err != nil {
			return nil, &ConfigError{Path: filename, Err: err}
		}
		v = file.LookupPath(cue.ParsePath("run"))
		if !v.Exists() {
			return nil, &ConfigError{Path: filename, Err: fmt.Errorf("no top-level run field")}
		}
	case ".toml":
		var m map[string]any
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, &ConfigError{Path: filename, Err: err}
		}
		v = ctx.Encode(m)
	default:
		return nil, &ConfigError{Path: filename, Err: fmt.Errorf("unsupported extension %q (want .cue or .toml)", ext)}
	}
	return decode(ctx, v, filename)
}

// FromMap validates an already-decoded run, such as the config block of a
// YAML scenario.
func FromMap(m map[string]any) (*Run, error) {
	ctx := cuecontext.New()
	return decode(ctx, ctx.Encode(m), "")
}

func decode(ctx *cue.Context, v cue.Value, path string) (*Run, error) {
	if err := v.Err(); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile run schema: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Run")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	var run Run
	if err := unified.Decode(&run); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return &run, nil
}

// EngineConfig returns the engine settings of the run.
func (r *Run) EngineConfig() pregel.Config {
	return pregel.Config{
		MaxSupersteps: r.MaxSupersteps,
		Concurrency:   r.Concurrency,
		Asynchronous:  r.Asynchronous,
		Partitioning:  pregel.Partitioning(r.Partitioning),
		UseWeights:    r.UseWeights,
	}
}

// AlgoParams returns the algorithm parameters of the run.
func (r *Run) AlgoParams() algo.Params {
	p := algo.Params{
		SourceNode:   r.Params.SourceNode,
		SeedProperty: r.Params.SeedProperty,
	}
	if r.Params.DampingFactor != nil {
		p.DampingFactor = *r.Params.DampingFactor
	}
	if r.Params.Tolerance != nil {
		p.Tolerance = *r.Params.Tolerance
	}
	return p
}

// Map returns the run as plain values for canonical encoding.
func (r *Run) Map() map[string]any {
	params := map[string]any{}
	if r.Params.SourceNode != nil {
		params["sourceNode"] = *r.Params.SourceNode
	}
	if r.Params.DampingFactor != nil {
		params["dampingFactor"] = *r.Params.DampingFactor
	}
	if r.Params.Tolerance != nil {
		params["tolerance"] = *r.Params.Tolerance
	}
	if r.Params.SeedProperty != "" {
		params["seedProperty"] = r.Params.SeedProperty
	}
	return map[string]any{
		"algorithm":     r.Algorithm,
		"maxSupersteps": r.MaxSupersteps,
		"concurrency":   r.Concurrency,
		"asynchronous":  r.Asynchronous,
		"partitioning":  r.Partitioning,
		"useWeights":    r.UseWeights,
		"params":        params,
	}
}

// IsConfigError reports whether err is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
