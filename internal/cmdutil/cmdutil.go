// Package cmdutil holds the flag and environment-variable handling shared
// by every workload's cmd/ binary.
package cmdutil

import (
	"flag"
	"io"
	"os"

	"github.com/lattice-systems/distnode/internal/config"
)

// Flags are the CLI/environment inputs common to every workload binary:
// -debug / DISTNODE_DEBUG=1 for verbose stderr tracing, and -config for
// an optional tunables overlay.
type Flags struct {
	Debug      bool
	ConfigPath string
}

// Parse reads os.Args and the environment into Flags. It must be called
// at most once per process, same as flag.Parse.
func Parse() Flags {
	debugFlag := flag.Bool("debug", false, "verbose per-envelope stderr tracing")
	configFlag := flag.String("config", "", "path to a YAML tunables overlay")
	flag.Parse()

	return Flags{
		Debug:      *debugFlag || os.Getenv("DISTNODE_DEBUG") == "1",
		ConfigPath: *configFlag,
	}
}

// LoadTunables resolves the tunables for this run from f.ConfigPath,
// falling back to built-in defaults field-by-field when the file or flag
// is absent; a malformed YAML document is reported to the caller.
func LoadTunables(f Flags) (config.Tunables, error) {
	return config.Load(f.ConfigPath)
}

// DebugReader wraps stdin in an io.TeeReader that mirrors every raw byte
// onto stderr when debug is set, giving the inbound side of the
// per-envelope tracing that output.Send already provides outbound.
// Returned unchanged when debug is false.
func DebugReader(r io.Reader, debug bool) io.Reader {
	if !debug {
		return r
	}
	return io.TeeReader(r, os.Stderr)
}
