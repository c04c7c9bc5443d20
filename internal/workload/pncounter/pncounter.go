// Package pncounter implements the PN-Counter CRDT workload: two
// per-actor vectors, P (non-negative increases) and N (non-positive
// decreases), joined by element-wise max and min respectively. The value
// is the sum of both vectors. The invariant that P entries are never
// negative and N entries never positive is enforced at add, not at
// replicate, so the join never needs to defend against a corrupt local
// vector.
package pncounter

import (
	"sync"
	"time"

	"github.com/lattice-systems/distnode/internal/envelope"
	"github.com/lattice-systems/distnode/internal/node"
)

// Handler holds the PN-Counter's two vectors.
type Handler struct {
	mu sync.Mutex
	p  map[string]int64
	n  map[string]int64
}

// New returns a ready-to-use PN-Counter Handler.
func New() *Handler {
	return &Handler{p: make(map[string]int64), n: make(map[string]int64)}
}

type addBody struct {
	MsgID int64 `json:"msg_id"`
	Delta int64 `json:"delta"`
}

type replicateBody struct {
	Msg [2]map[string]int64 `json:"msg"`
}

// OnInit seeds P[self]=N[self]=0 and P[peer]=N[peer]=0 for every known
// peer, then spawns one gossip goroutine per peer.
func (h *Handler) OnInit(n *node.Node) {
	h.mu.Lock()
	h.p[n.ID()] = 0
	h.n[n.ID()] = 0
	for _, peer := range n.Peers() {
		h.p[peer] = 0
		h.n[peer] = 0
	}
	h.mu.Unlock()

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
		p, nn := h.snapshot()
		if err := n.Emit(peer, map[string]interface{}{
			"type": "replicate",
			"msg":  []map[string]int64{p, nn},
		}); err != nil {
			n.Logf("pncounter[%s] gossip to %s: %v", trace, peer, err)
		}
	}
}

func (h *Handler) snapshot() (map[string]int64, map[string]int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := make(map[string]int64, len(h.p))
	for k, v := range h.p {
		p[k] = v
	}
	nn := make(map[string]int64, len(h.n))
	for k, v := range h.n {
		nn[k] = v
	}
	return p, nn
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
		self := n.ID()
		if b.Delta >= 0 {
			h.p[self] += b.Delta
		} else {
			h.n[self] += b.Delta
		}
		h.mu.Unlock()
		return n.Reply(src, b.MsgID, map[string]interface{}{"type": "add_ok"})

	case "replicate":
		var b replicateBody
		if err := envelope.Decode(body, &b); err != nil {
			return err
		}
		h.mu.Lock()
		for k, v := range b.Msg[0] {
			if cur, ok := h.p[k]; !ok || v > cur {
				h.p[k] = v
			}
		}
		for k, v := range b.Msg[1] {
			if cur, ok := h.n[k]; !ok || v < cur {
				h.n[k] = v
			}
		}
		h.mu.Unlock()
		return nil

	case "read":
		h.mu.Lock()
		var total int64
		for _, v := range h.p {
			total += v
		}
		for _, v := range h.n {
			total += v
		}
		h.mu.Unlock()
		if head.MsgID == nil {
			return nil
		}
		return n.Reply(src, *head.MsgID, map[string]interface{}{
			"type":  "read_ok",
			"value": total,
		})
	}
	return nil
}
