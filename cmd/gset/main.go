// Command gset runs the grow-only-set CRDT workload node: adds
// accumulate locally and spread to every peer via periodic anti-entropy
// gossip, converging to the union of every node's additions.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/lattice-systems/distnode/internal/cmdutil"
	"github.com/lattice-systems/distnode/internal/node"
	"github.com/lattice-systems/distnode/internal/workload/gset"
)

func main() {
	flags := cmdutil.Parse()

	tunables, err := cmdutil.LoadTunables(flags)
	if err != nil {
		log.Fatalf("gset: load config: %v", err)
	}

	n := node.New(gset.New(), tunables, os.Stdout, os.Stderr)
	if err := n.Run(cmdutil.DebugReader(os.Stdin, flags.Debug)); err != nil {
		fmt.Fprintf(os.Stderr, "gset: %v\n", err)
		os.Exit(1)
	}
}
