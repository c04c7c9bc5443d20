// Command castxn runs the CAS-serialized transactional store node: each
// txn message is applied via an optimistic read-modify-CAS round trip
// against the external lin-kv service rather than any local lock,
// reporting a Cas Conflict error to the client on any lost race.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/lattice-systems/distnode/internal/cmdutil"
	"github.com/lattice-systems/distnode/internal/node"
	"github.com/lattice-systems/distnode/internal/workload/castxn"
)

func main() {
	flags := cmdutil.Parse()

	tunables, err := cmdutil.LoadTunables(flags)
	if err != nil {
		log.Fatalf("castxn: load config: %v", err)
	}

	n := node.New(castxn.New(), tunables, os.Stdout, os.Stderr)
	if err := n.Run(cmdutil.DebugReader(os.Stdin, flags.Debug)); err != nil {
		fmt.Fprintf(os.Stderr, "castxn: %v\n", err)
		os.Exit(1)
	}
}
