// Command mc is the reachability example driver described in spec.md §6.
package main

import (
	"os"

	"github.com/parabdd/parabdd/internal/mccli"
)

func main() {
	os.Exit(mccli.Run(os.Stdout, os.Stderr, os.Args))
}
