// Package txn implements the single-node transactional key/value
// workload: a fixed two-op micro-language ("append", "r") applied in
// order against an append-only, process-local map, with no cross-
// transaction ordering beyond serial execution.
//
// Op interpretation itself lives in internal/txnops and is shared with
// the CAS-txn engine, which applies the same ops against a deep copy of
// a remote register's value instead of this process-local map.
package txn

import (
	"sync"

	"github.com/lattice-systems/distnode/internal/envelope"
	"github.com/lattice-systems/distnode/internal/node"
	"github.com/lattice-systems/distnode/internal/txnops"
)

// Handler holds the append-only per-key value log.
type Handler struct {
	mu sync.Mutex
	kv map[int64][]int64
}

// New returns a ready-to-use single-node txn Handler.
func New() *Handler {
	return &Handler{kv: make(map[int64][]int64)}
}

type txnBody struct {
	MsgID int64       `json:"msg_id"`
	Txn   []txnops.Op `json:"txn"`
}

// OnInit has nothing to do: single-node txn has no periodic tasks.
func (h *Handler) OnInit(n *node.Node) {}

// HandleMessage applies a txn's ops in order under the handler's mutex
// and replies txn_ok with the recorded results. Op application never
// performs I/O inside the lock.
func (h *Handler) HandleMessage(n *node.Node, src string, head envelope.Head, body []byte) error {
	if head.Type != "txn" {
		return nil
	}
	var b txnBody
	if err := envelope.Decode(body, &b); err != nil {
		return err
	}

	h.mu.Lock()
	results, err := txnops.Apply(h.kv, b.Txn)
	h.mu.Unlock()
	if err != nil {
		return err
	}

	return n.Reply(src, b.MsgID, map[string]interface{}{
		"type": "txn_ok",
		"txn":  results,
	})
}
