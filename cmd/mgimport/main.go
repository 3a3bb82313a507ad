// Command mgimport drives Cypher/openCypher statements from a source into
// a Bolt-speaking graph server using the batched, phase-ordered, bounded
// concurrency import engine described in this repository's design.
package main

import (
	"fmt"
	"os"

	"github.com/memgraph/mgconsole/pkg/importerr"
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "mgimport:", err)
		if ie, ok := err.(*importerr.Error); ok {
			return ie.ExitCode()
		}
		return 1
	}
	return 0
}
