// Command pregel runs vertex-centric graph algorithms.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/pregel/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands report ExitErrors through their own output format.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
