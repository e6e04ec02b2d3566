// Command fatscan reports the largest files beneath a directory.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/fatscan/internal/cli"
)

// Set by goreleaser or -ldflags.
var version = "unknown - unofficial & generated by unknown"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
