// Command propdeps checks and exercises declared property dependencies.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/propdeps/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
