// Package node provides the I/O and dispatch core shared by every workload
// engine: the envelope codec's consumer, the output serializer, the
// message-id allocator, the reply correlator, and the router/dispatcher.
// A stdin decode loop feeds inbound envelopes to either the correlator
// or the bound workload handler; a mutex-guarded output sink serializes
// everything written back to stdout.
package node

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lattice-systems/distnode/internal/config"
	"github.com/lattice-systems/distnode/internal/envelope"
)

// Node is the shared runtime handle passed to every workload handler and
// every periodic background task. All workload state mutation outside of
// Node's own fields is the handler's responsibility, guarded by the
// handler's own mutex; critical sections should never perform I/O.
type Node struct {
	mu    sync.RWMutex
	id    string
	peers []string

	idgen      idGenerator
	correlator *Correlator
	out        *output
	tunables   config.Tunables
	log        *log.Logger

	handler Handler
}

// New creates a Node wired to stdout (for replies/requests) and stderr
// (for tracing), with the given workload handler and tunables. The
// handler only starts receiving messages once Run is called.
func New(handler Handler, tunables config.Tunables, stdout io.Writer, stderr io.Writer) *Node {
	return &Node{
		out:        newOutput(stdout, stderr),
		correlator: newCorrelator(),
		tunables:   tunables,
		log:        log.New(stderr, "", log.LstdFlags),
		handler:    handler,
	}
}

// ID returns this node's own identifier. It is empty until init has been
// processed.
func (n *Node) ID() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.id
}

// Peers returns a snapshot of the current peer list.
func (n *Node) Peers() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]string, len(n.peers))
	copy(out, n.peers)
	return out
}

func (n *Node) setID(id string) {
	n.mu.Lock()
	n.id = id
	n.mu.Unlock()
}

func (n *Node) setPeers(peers []string) {
	n.mu.Lock()
	n.peers = append([]string(nil), peers...)
	n.mu.Unlock()
}

// Tunables returns the configured timing knobs.
func (n *Node) Tunables() config.Tunables {
	return n.tunables
}

// Logf writes a trace line to stderr.
func (n *Node) Logf(format string, args ...interface{}) {
	n.log.Printf(format, args...)
}

// TraceID returns a short, process-unique id for correlating one
// background task's stderr lines (a retransmitter, a gossip loop, a
// CAS-txn transaction) across its lifetime. It never appears on the wire;
// the protocol's own msg_id/in_reply_to already serve that role there.
func (n *Node) TraceID() string {
	return uuid.NewString()[:8]
}

// AllocID returns the next message id.
func (n *Node) AllocID() int64 {
	return n.idgen.Next()
}

// Emit sends one envelope to dest with the exact fields given, flattened
// into the body alongside "type". Callers are responsible for setting
// msg_id/in_reply_to themselves; Emit performs no correlation.
func (n *Node) Emit(dest string, fields map[string]interface{}) error {
	env, err := envelope.New(n.ID(), dest, fields)
	if err != nil {
		return fmt.Errorf("node: build envelope: %w", err)
	}
	return n.out.Send(env)
}

// Reply emits a response to src, setting in_reply_to to the inbound
// message's id and allocating a fresh outbound msg_id.
func (n *Node) Reply(dest string, inReplyTo int64, fields map[string]interface{}) error {
	out := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		out[k] = v
	}
	out["msg_id"] = n.AllocID()
	out["in_reply_to"] = inReplyTo
	return n.Emit(dest, out)
}

// RegisterReply reserves a correlator slot for id without sending
// anything, for callers (the broadcast retransmitter) that resend the
// same message under the same id until the slot is delivered, rather than
// registering fresh per attempt.
func (n *Node) RegisterReply(id int64) (<-chan json.RawMessage, error) {
	return n.correlator.Register(id)
}

// WaitReply blocks on ch up to timeout.
func (n *Node) WaitReply(ch <-chan json.RawMessage, timeout time.Duration) (json.RawMessage, error) {
	return n.correlator.Wait(ch, timeout)
}

// UnregisterReply releases id's correlator slot without delivering
// anything; callers must call this on every exit path that did not
// already consume a delivery.
func (n *Node) UnregisterReply(id int64) {
	n.correlator.Unregister(id)
}

// Request sends fields to dest as a correlated request (allocating and
// inserting msg_id), waits up to timeout for the matching reply body, and
// always unregisters its correlator slot before returning. No lock is
// held across this wait: Node holds none of the workload's own mutex.
func (n *Node) Request(dest string, fields map[string]interface{}, timeout time.Duration) (json.RawMessage, error) {
	id := n.AllocID()

	ch, err := n.correlator.Register(id)
	if err != nil {
		return nil, err
	}

	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["msg_id"] = id

	if err := n.Emit(dest, out); err != nil {
		n.correlator.Unregister(id)
		return nil, err
	}

	body, err := n.correlator.Wait(ch, timeout)
	if err != nil {
		n.correlator.Unregister(id)
		return nil, err
	}
	return body, nil
}
