package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// ccGraphYAML is a..e (ids 0..4) with a<->b, a->c, c->d, a self loop on c
// and an isolated e.
const ccGraphYAML = `nodes: [0, 1, 2, 3, 4]
relationships:
  - {source: 0, target: 1}
  - {source: 1, target: 0}
  - {source: 0, target: 2}
  - {source: 2, target: 3}
  - {source: 2, target: 2}
`

const wccConfigCUE = `run: {
	algorithm:   "wcc"
	concurrency: 2
}
`

const ssspConfigTOML = `algorithm = "sssp"
maxSupersteps = 10

[params]
sourceNode = 0
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
