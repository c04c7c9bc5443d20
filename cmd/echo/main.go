// Command echo runs the echo workload node: it reads envelopes from
// stdin and replies echo_ok to every echo message it receives.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/lattice-systems/distnode/internal/cmdutil"
	"github.com/lattice-systems/distnode/internal/node"
	"github.com/lattice-systems/distnode/internal/workload/echo"
)

func main() {
	flags := cmdutil.Parse()

	tunables, err := cmdutil.LoadTunables(flags)
	if err != nil {
		log.Fatalf("echo: load config: %v", err)
	}

	n := node.New(echo.Handler{}, tunables, os.Stdout, os.Stderr)
	if err := n.Run(cmdutil.DebugReader(os.Stdin, flags.Debug)); err != nil {
		fmt.Fprintf(os.Stderr, "echo: %v\n", err)
		os.Exit(1)
	}
}
