// Command qnet builds, runs and evaluates three-qubit teleportation circuits.
package main

import (
	"fmt"
	"os"

	"github.com/ms584/Q-Net/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
