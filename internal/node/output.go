package node

import (
	"encoding/json"
	"io"
	"log"
	"sync"

	"github.com/lattice-systems/distnode/internal/envelope"
)

// output is the single-writer stdout sink. Concurrent producers call
// Send with a whole envelope; output serializes the writes so that two
// goroutines can never interleave partial lines.
type output struct {
	mu    sync.Mutex
	enc   *json.Encoder
	trace *log.Logger
}

func newOutput(w io.Writer, trace io.Writer) *output {
	return &output{
		enc:   json.NewEncoder(w),
		trace: log.New(trace, "", log.LstdFlags),
	}
}

// Send writes one complete envelope line to stdout and mirrors it to
// stderr for tracing. Tracing failures are ignored; a stdout write
// failure is returned to the caller.
func (o *output) Send(env envelope.Envelope) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.enc.Encode(env); err != nil {
		return err
	}
	o.trace.Printf("sent %s -> %s: %s", env.Src, env.Dest, string(env.Body))
	return nil
}
