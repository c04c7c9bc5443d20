// Package gset implements the grow-only set workload: add inserts an
// element locally, periodic gossip replicates the full set to every
// peer, and the join is plain set union — idempotent, commutative,
// associative, so lossy or reordered gossip still converges.
package gset

import (
	"sync"
	"time"

	"github.com/lattice-systems/distnode/internal/envelope"
	"github.com/lattice-systems/distnode/internal/node"
)

// Handler holds the grow-only set's elements.
type Handler struct {
	mu       sync.Mutex
	elements map[int64]struct{}
}

// New returns a ready-to-use G-Set Handler.
func New() *Handler {
	return &Handler{elements: make(map[int64]struct{})}
}

type addBody struct {
	MsgID   int64 `json:"msg_id"`
	Element int64 `json:"element"`
}

type replicateBody struct {
	Message []int64 `json:"message"`
}

// OnInit spawns one gossip goroutine per peer. Fan-out stays the full
// peer list rather than narrowing to topology neighbours.
func (h *Handler) OnInit(n *node.Node) {
	interval := n.Tunables().GossipInterval
	for _, peer := range n.Peers() {
		go h.gossip(n, peer, interval)
	}
}

func (h *Handler) gossip(n *node.Node, peer string, interval time.Duration) {
	trace := n.TraceID()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		h.mu.Lock()
		snapshot := make([]int64, 0, len(h.elements))
		for e := range h.elements {
			snapshot = append(snapshot, e)
		}
		h.mu.Unlock()

		if err := n.Emit(peer, map[string]interface{}{
			"type":    "replicate",
			"message": snapshot,
		}); err != nil {
			n.Logf("gset[%s] gossip to %s: %v", trace, peer, err)
		}
	}
}

// HandleMessage dispatches add, replicate, and read.
func (h *Handler) HandleMessage(n *node.Node, src string, head envelope.Head, body []byte) error {
	switch head.Type {
	case "add":
		var b addBody
		if err := envelope.Decode(body, &b); err != nil {
			return err
		}
		h.mu.Lock()
		h.elements[b.Element] = struct{}{}
		h.mu.Unlock()
		return n.Reply(src, b.MsgID, map[string]interface{}{"type": "add_ok"})

	case "replicate":
		var b replicateBody
		if err := envelope.Decode(body, &b); err != nil {
			return err
		}
		h.mu.Lock()
		for _, e := range b.Message {
			h.elements[e] = struct{}{}
		}
		h.mu.Unlock()
		return nil

	case "read":
		h.mu.Lock()
		value := node.SortedInt64s(h.elements)
		h.mu.Unlock()
		if head.MsgID == nil {
			return nil
		}
		return n.Reply(src, *head.MsgID, map[string]interface{}{
			"type":  "read_ok",
			"value": value,
		})
	}
	return nil
}
