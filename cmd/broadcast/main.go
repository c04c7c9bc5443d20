// Command broadcast runs the broadcast-with-retransmission workload
// node: every value broadcast to it is deduplicated, logged, and relayed
// to its peers, retrying each peer until that peer acknowledges.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/lattice-systems/distnode/internal/cmdutil"
	"github.com/lattice-systems/distnode/internal/node"
	"github.com/lattice-systems/distnode/internal/workload/broadcast"
)

func main() {
	flags := cmdutil.Parse()

	tunables, err := cmdutil.LoadTunables(flags)
	if err != nil {
		log.Fatalf("broadcast: load config: %v", err)
	}

	n := node.New(broadcast.New(), tunables, os.Stdout, os.Stderr)
	if err := n.Run(cmdutil.DebugReader(os.Stdin, flags.Debug)); err != nil {
		fmt.Fprintf(os.Stderr, "broadcast: %v\n", err)
		os.Exit(1)
	}
}
