// Command pncounter runs the PN-Counter CRDT workload node: adds and
// subtracts update this node's own P/N vector entries, which are merged
// with peers' via periodic gossip using element-wise max/min.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/lattice-systems/distnode/internal/cmdutil"
	"github.com/lattice-systems/distnode/internal/node"
	"github.com/lattice-systems/distnode/internal/workload/pncounter"
)

func main() {
	flags := cmdutil.Parse()

	tunables, err := cmdutil.LoadTunables(flags)
	if err != nil {
		log.Fatalf("pncounter: load config: %v", err)
	}

	n := node.New(pncounter.New(), tunables, os.Stdout, os.Stderr)
	if err := n.Run(cmdutil.DebugReader(os.Stdin, flags.Debug)); err != nil {
		fmt.Fprintf(os.Stderr, "pncounter: %v\n", err)
		os.Exit(1)
	}
}
