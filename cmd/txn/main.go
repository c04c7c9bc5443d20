// Command txn runs the single-node transactional key/value store node:
// each txn message runs its micro-ops (append, r) against a
// process-local map under one lock and replies with their results.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/lattice-systems/distnode/internal/cmdutil"
	"github.com/lattice-systems/distnode/internal/node"
	"github.com/lattice-systems/distnode/internal/workload/txn"
)

func main() {
	flags := cmdutil.Parse()

	tunables, err := cmdutil.LoadTunables(flags)
	if err != nil {
		log.Fatalf("txn: load config: %v", err)
	}

	n := node.New(txn.New(), tunables, os.Stdout, os.Stderr)
	if err := n.Run(cmdutil.DebugReader(os.Stdin, flags.Debug)); err != nil {
		fmt.Fprintf(os.Stderr, "txn: %v\n", err)
		os.Exit(1)
	}
}
