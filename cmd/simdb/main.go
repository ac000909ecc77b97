// Command simdb stores simulator result documents and plots them.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/simdb/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
