// Package castxn implements the CAS-serialized transactional store
// workload, the hardest of the six engines: every transaction is an
// optimistic read-modify-write against a single remote linearizable
// register at key "root" in the external lin-kv service, serialized by
// compare-and-swap rather than any local lock.
//
// Each transaction runs as its own goroutine holding its own correlator
// slots and releasing every lock before either of its two round trips, by
// construction: node.Node.Request never holds the workload mutex (this
// engine keeps none) across its wait.
package castxn

import (
	"encoding/json"

	"github.com/lattice-systems/distnode/internal/envelope"
	"github.com/lattice-systems/distnode/internal/node"
	"github.com/lattice-systems/distnode/internal/txnops"
)

const registerKey = "root"

// Handler has no local authoritative state: every transaction reads and
// writes the remote register directly.
type Handler struct{}

// New returns a ready-to-use CAS-txn Handler.
func New() *Handler {
	return &Handler{}
}

type txnBody struct {
	MsgID int64       `json:"msg_id"`
	Txn   []txnops.Op `json:"txn"`
}

type lkvReply struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
	Code  int             `json:"code"`
	Text  string          `json:"text"`
}

// keyNotFound is the lin-kv error code for a read against an absent key.
// A transaction that gets it treats the register as empty; its cas, sent
// with create_if_not_exists false, commits only if OnInit's bootstrap has
// created the register by the time it arrives, and otherwise draws the
// Cas Conflict reply.
const keyNotFound = 20

// OnInit creates the remote register as an empty map. This bootstrap cas
// is the only one that sets create_if_not_exists, so no transaction can
// commit until it has succeeded. It runs in its own goroutine, off the
// dispatch loop's critical path; a timeout or error is only logged and
// the bootstrap is not retried.
func (h *Handler) OnInit(n *node.Node) {
	trace := n.TraceID()
	go func() {
		_, err := n.Request("lin-kv", map[string]interface{}{
			"type":                 "cas",
			"key":                  registerKey,
			"from":                 map[string]interface{}{},
			"to":                   map[string]interface{}{},
			"create_if_not_exists": true,
		}, n.Tunables().CasTimeout)
		if err != nil {
			n.Logf("castxn[%s]: root bootstrap: %v", trace, err)
		}
	}()
}

// HandleMessage spawns one transaction goroutine per inbound txn so that
// multiple transactions can be in flight on this node at once.
func (h *Handler) HandleMessage(n *node.Node, src string, head envelope.Head, body []byte) error {
	if head.Type != "txn" {
		return nil
	}
	var b txnBody
	if err := envelope.Decode(body, &b); err != nil {
		return err
	}
	go runTransaction(n, src, b.MsgID, b.Txn)
	return nil
}

// runTransaction executes the read-apply-CAS protocol for one
// transaction: read the register, apply the ops to a local copy, and
// compare-and-swap the register from the read value to the new one.
func runTransaction(n *node.Node, src string, clientMsgID int64, ops []txnops.Op) {
	trace := n.TraceID()
	tunables := n.Tunables()

	readReply, err := n.Request("lin-kv", map[string]interface{}{
		"type": "read",
		"key":  registerKey,
	}, tunables.ReadTimeout)
	if err == node.ErrTimeout {
		// Abandoned: no reply is sent, and the client is expected to retry.
		n.Logf("castxn[%s]: read timed out, abandoning transaction", trace)
		return
	}
	if err != nil {
		n.Logf("castxn[%s]: read: %v", trace, err)
		return
	}

	var read lkvReply
	if err := envelope.Decode(readReply, &read); err != nil {
		n.Logf("castxn[%s]: decode read reply: %v", trace, err)
		return
	}

	var before map[int64][]int64
	switch {
	case read.Type == "read_ok":
		before, err = txnops.DecodeRegister(read.Value)
		if err != nil {
			n.Logf("castxn[%s]: %v", trace, err)
			return
		}
	case read.Type == "error" && read.Code == keyNotFound:
		// No writer has created the register yet; treat it as empty
		// rather than reporting a conflict the client never caused.
		before = make(map[int64][]int64)
	case read.Type == "error":
		replyConflict(n, src, clientMsgID, read.Text)
		return
	default:
		n.Logf("castxn[%s]: unexpected read reply type %q", trace, read.Type)
		return
	}
	after := txnops.DeepCopy(before)
	results, err := txnops.Apply(after, ops)
	if err != nil {
		n.Logf("castxn[%s]: apply: %v", trace, err)
		return
	}

	beforeWire, err := txnops.EncodeRegister(before)
	if err != nil {
		n.Logf("castxn[%s]: encode before: %v", trace, err)
		return
	}
	afterWire, err := txnops.EncodeRegister(after)
	if err != nil {
		n.Logf("castxn[%s]: encode after: %v", trace, err)
		return
	}

	casReply, err := n.Request("lin-kv", map[string]interface{}{
		"type":                 "cas",
		"key":                  registerKey,
		"from":                 json.RawMessage(beforeWire),
		"to":                   json.RawMessage(afterWire),
		"create_if_not_exists": false,
	}, tunables.CasTimeout)
	if err == node.ErrTimeout {
		return
	}
	if err != nil {
		n.Logf("castxn[%s]: cas: %v", trace, err)
		return
	}

	var cas lkvReply
	if err := envelope.Decode(casReply, &cas); err != nil {
		n.Logf("castxn[%s]: decode cas reply: %v", trace, err)
		return
	}

	switch cas.Type {
	case "cas_ok":
		n.Reply(src, clientMsgID, map[string]interface{}{
			"type": "txn_ok",
			"txn":  results,
		})
	case "error":
		replyConflict(n, src, clientMsgID, cas.Text)
	default:
		n.Logf("castxn[%s]: unexpected cas reply type %q", trace, cas.Type)
	}
}

// replyConflict sends the client the one error code this engine ever
// emits; it never retries internally. The upstream error text is not
// propagated; the client always sees the normalized "Cas Conflict".
func replyConflict(n *node.Node, src string, clientMsgID int64, upstreamText string) {
	n.Reply(src, clientMsgID, map[string]interface{}{
		"type": "error",
		"code": 30,
		"text": "Cas Conflict",
	})
}
