// Package broadcast implements the retransmitting broadcast workload:
// at-least-once delivery to every peer via per-message retransmission,
// with idempotent union at the receiver yielding eventual consistency of
// the message log.
//
// The retransmit-until-acked loop reuses node.Node's correlator: register
// once, then block with a timeout, except here a timeout means "resend
// and wait again" instead of "give up". The retransmitter exits exactly
// when its id is acked; there is no other cancellation path.
package broadcast

import (
	"sync"

	"github.com/lattice-systems/distnode/internal/envelope"
	"github.com/lattice-systems/distnode/internal/node"
)

// Handler holds the broadcast workload's replicated log.
type Handler struct {
	mu   sync.Mutex
	seen map[int64]struct{}
	log  []int64
}

// New returns a ready-to-use broadcast Handler.
func New() *Handler {
	return &Handler{seen: make(map[int64]struct{})}
}

type broadcastBody struct {
	MsgID   *int64 `json:"msg_id,omitempty"`
	Message int64  `json:"message"`
}

// OnInit has nothing to do: broadcast has no periodic gossip, only
// per-message retransmitters spawned on demand.
func (h *Handler) OnInit(n *node.Node) {}

// HandleMessage dispatches broadcast and read. broadcast_ok never reaches
// here: it carries in_reply_to and the dispatcher routes it straight to
// the correlator that each retransmitter is waiting on.
func (h *Handler) HandleMessage(n *node.Node, src string, head envelope.Head, body []byte) error {
	switch head.Type {
	case "broadcast":
		return h.handleBroadcast(n, src, body)
	case "read":
		return h.handleRead(n, src, head)
	}
	return nil
}

func (h *Handler) handleBroadcast(n *node.Node, src string, body []byte) error {
	var b broadcastBody
	if err := envelope.Decode(body, &b); err != nil {
		return err
	}

	h.mu.Lock()
	_, already := h.seen[b.Message]
	if !already {
		h.seen[b.Message] = struct{}{}
		h.log = append(h.log, b.Message)
	}
	h.mu.Unlock()

	if !already {
		for _, peer := range n.Peers() {
			if peer == src {
				// Suppress only the immediate sender, not node_id: this
				// limits fan-out avoidance to immediate-hop suppression.
				continue
			}
			go retransmit(n, peer, b.Message)
		}
	}

	if b.MsgID != nil {
		return n.Reply(src, *b.MsgID, map[string]interface{}{
			"type": "broadcast_ok",
		})
	}
	return nil
}

// retransmit repeatedly sends message to peer under a stable msg_id until
// a broadcast_ok arrives for that id. There is no external cancellation
// path; its only exit is that delivery.
func retransmit(n *node.Node, peer string, message int64) {
	trace := n.TraceID()
	id := n.AllocID()

	ch, err := n.RegisterReply(id)
	if err != nil {
		n.Logf("broadcast[%s] retransmit to %s: register: %v", trace, peer, err)
		return
	}
	defer n.UnregisterReply(id)

	interval := n.Tunables().RetransmitInterval
	attempt := 0
	for {
		attempt++
		if err := n.Emit(peer, map[string]interface{}{
			"type":    "broadcast",
			"msg_id":  id,
			"message": message,
		}); err != nil {
			n.Logf("broadcast[%s] retransmit to %s: %v", trace, peer, err)
		}

		if _, err := n.WaitReply(ch, interval); err == nil {
			n.Logf("broadcast[%s] acked by %s after %d attempt(s)", trace, peer, attempt)
			return
		}
	}
}

func (h *Handler) handleRead(n *node.Node, src string, head envelope.Head) error {
	h.mu.Lock()
	messages := append([]int64(nil), h.log...)
	h.mu.Unlock()

	if head.MsgID == nil {
		return nil
	}
	return n.Reply(src, *head.MsgID, map[string]interface{}{
		"type":     "read_ok",
		"messages": messages,
	})
}
