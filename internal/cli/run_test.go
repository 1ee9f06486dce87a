package cli

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pregel/internal/store"
)

func runCommand(format string, args ...string) (string, string, error) {
	return execute(NewRunCommand(&RootOptions{Format: format, logWriter: io.Discard}), args...)
}

func TestRunCommand_Text(t *testing.T) {
	dir := t.TempDir()
	graphPath := writeFile(t, dir, "graph.yaml", ccGraphYAML)
	cfgPath := writeFile(t, dir, "run.cue", wccConfigCUE)

	out, _, err := runCommand("text", "--graph", graphPath, "--config", cfgPath, "--values")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ wcc converged after 4 superstep(s)")
	assert.Contains(t, out, "state:  halted")
	assert.Contains(t, out, "nodes:  5")
	assert.Contains(t, out, "result: component")
	assert.Contains(t, out, "  3\t0\n")
	assert.Contains(t, out, "  4\t4\n")
	assert.NotContains(t, out, "run:")
}

func TestRunCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	graphPath := writeFile(t, dir, "graph.yaml", ccGraphYAML)
	cfgPath := writeFile(t, dir, "run.toml", ssspConfigTOML)

	out, _, err := runCommand("json", "--graph", graphPath, "--config", cfgPath, "--values")
	require.NoError(t, err)

	var response struct {
		Status string     `json:"status"`
		Data   RunSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "sssp", response.Data.Algorithm)
	assert.True(t, response.Data.DidConverge)
	assert.Equal(t, "distance", response.Data.ResultSlot)
	assert.JSONEq(t, "1", string(response.Data.Values["1"]))
	assert.JSONEq(t, "2", string(response.Data.Values["3"]))
	assert.JSONEq(t, "9223372036854775807", string(response.Data.Values["4"]))
}

func TestRunCommand_PersistsToStore(t *testing.T) {
	dir := t.TempDir()
	graphPath := writeFile(t, dir, "graph.yaml", ccGraphYAML)
	cfgPath := writeFile(t, dir, "run.cue", wccConfigCUE)
	dbPath := filepath.Join(dir, "results.db")

	cmd := NewRunCommand(&RootOptions{Format: "text", logWriter: io.Discard})
	out, _, err := execute(cmd, "--graph", graphPath, "--config", cfgPath, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "(seq 1)")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "wcc", runs[0].Algorithm)
	assert.Equal(t, "halted", runs[0].State)
	assert.Equal(t, 4, runs[0].RanSupersteps)
	assert.Equal(t, "component", runs[0].ResultSlot)
	assert.Equal(t, `{"algorithm":"wcc","asynchronous":false,"concurrency":2,"maxSupersteps":20,"params":{},"partitioning":"auto","useWeights":false}`, runs[0].Config)

	values, err := st.ReadNodeValues(context.Background(), runs[0].ID, "")
	require.NoError(t, err)
	require.Len(t, values, 5)
	assert.Equal(t, "4", values[4].Value)
}

func TestRunCommand_FixedRunID(t *testing.T) {
	dir := t.TempDir()
	graphPath := writeFile(t, dir, "graph.yaml", ccGraphYAML)
	cfgPath := writeFile(t, dir, "run.cue", wccConfigCUE)
	dbPath := filepath.Join(dir, "results.db")

	rootOpts := &RootOptions{Format: "text", logWriter: io.Discard}
	for _, id := range []string{"run-a", "run-b"} {
		opts := &RunOptions{
			RootOptions: rootOpts,
			Graph:       graphPath,
			Config:      cfgPath,
			Database:    dbPath,
			IDGenerator: store.NewFixedGenerator(id),
		}
		cmd := NewRunCommand(rootOpts)
		cmd.SetOut(io.Discard)
		require.NoError(t, runAlgorithm(opts, cmd))
	}

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-a", runs[0].ID)
	assert.Equal(t, int64(1), runs[0].Seq)
	assert.Equal(t, "run-b", runs[1].ID)
	assert.Equal(t, int64(2), runs[1].Seq)
}

func TestRunCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	graphPath := writeFile(t, dir, "graph.yaml", ccGraphYAML)
	cfgPath := writeFile(t, dir, "run.cue", wccConfigCUE)
	badCfg := writeFile(t, dir, "bad.cue", "run: {algorithm: \"bfs\"}\n")
	noSource := writeFile(t, dir, "nosource.toml", "algorithm = \"sssp\"\n[params]\nsourceNode = 99\n")
	badGraph := writeFile(t, dir, "bad.yaml", "nodes: [0]\nedges: []\n")

	tests := []struct {
		name     string
		args     []string
		exitCode int
		errCode  string
	}{
		{"missing config", []string{"--graph", graphPath, "--config", filepath.Join(dir, "nope.cue")}, ExitCommandError, ErrCodeNotFound},
		{"invalid config", []string{"--graph", graphPath, "--config", badCfg}, ExitFailure, ErrCodeInvalidConfig},
		{"missing graph", []string{"--graph", filepath.Join(dir, "nope.yaml"), "--config", cfgPath}, ExitCommandError, ErrCodeNotFound},
		{"malformed graph", []string{"--graph", badGraph, "--config", cfgPath}, ExitCommandError, ErrCodeInvalidGraph},
		{"unknown source", []string{"--graph", graphPath, "--config", noSource}, ExitFailure, ErrCodeSetup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCommand("json", tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.exitCode, GetExitCode(err))

			var response CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &response))
			assert.Equal(t, "error", response.Status)
			require.NotNil(t, response.Error)
			assert.Equal(t, tt.errCode, response.Error.Code)
		})
	}
}

func TestRunCommand_Cancelled(t *testing.T) {
	dir := t.TempDir()
	graphPath := writeFile(t, dir, "graph.yaml", ccGraphYAML)
	cfgPath := writeFile(t, dir, "run.cue", wccConfigCUE)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewRunCommand(&RootOptions{Format: "text", logWriter: io.Discard})
	cmd.SetContext(ctx)
	out, _, err := execute(cmd, "--graph", graphPath, "--config", cfgPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "run cancelled")
}

func TestRunCommand_LogsProgress(t *testing.T) {
	dir := t.TempDir()
	graphPath := writeFile(t, dir, "graph.yaml", ccGraphYAML)
	cfgPath := writeFile(t, dir, "run.cue", wccConfigCUE)

	cmd := NewRunCommand(&RootOptions{Format: "text"})
	_, stderr, err := execute(cmd, "--graph", graphPath, "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, "wcc :: Compute iteration 1 of 20 :: Start")
	assert.Contains(t, stderr, "run starting")
}

func TestRunCommand_RequiredFlags(t *testing.T) {
	_, _, err := runCommand("text", "--graph", "g.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config")
}
