package node

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/lattice-systems/distnode/internal/envelope"
)

type initBody struct {
	Type    string   `json:"type"`
	MsgID   int64    `json:"msg_id"`
	NodeID  string   `json:"node_id"`
	NodeIDs []string `json:"node_ids"`
}

type topologyBody struct {
	Type     string              `json:"type"`
	MsgID    int64               `json:"msg_id"`
	Topology map[string][]string `json:"topology"`
}

// Run reads envelopes from r, one per line, until EOF, dispatching each
// one. Lines are read whole, with no length limit. It returns nil on a
// clean EOF and a non-nil error on any other read failure. A line that
// does not decode as an envelope, or whose body is malformed, is logged
// and skipped rather than terminating the process.
func (n *Node) Run(r io.Reader) error {
	br := bufio.NewReader(r)
	for {
		line, readErr := br.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			var env envelope.Envelope
			if err := json.Unmarshal(line, &env); err != nil {
				n.Logf("dropping undecodable line: %v", err)
			} else if err := n.dispatch(env); err != nil {
				n.Logf("dropping malformed envelope from %s: %v", env.Src, err)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return fmt.Errorf("node: read stdin: %w", readErr)
		}
	}
}

func (n *Node) dispatch(env envelope.Envelope) error {
	head, err := envelope.ParseHead(env.Body)
	if err != nil {
		return fmt.Errorf("parse head: %w", err)
	}
	if head.Type == "" {
		return errors.New("missing type")
	}

	// Replies to our own outbound requests always carry in_reply_to;
	// nothing this node receives as a request ever does. Routing on that
	// field's presence avoids hardcoding which reply types a given
	// workload happens to use.
	if head.InReplyTo != nil {
		n.correlator.Deliver(*head.InReplyTo, env.Body)
		return nil
	}

	switch head.Type {
	case "init":
		return n.handleInit(env, head)
	case "topology":
		return n.handleTopology(env, head)
	default:
		if n.handler == nil {
			return fmt.Errorf("unhandled type %q", head.Type)
		}
		return n.handler.HandleMessage(n, env.Src, head, env.Body)
	}
}

func (n *Node) handleInit(env envelope.Envelope, head envelope.Head) error {
	var body initBody
	if err := envelope.Decode(env.Body, &body); err != nil {
		return fmt.Errorf("decode init: %w", err)
	}
	if body.NodeID == "" {
		return errors.New("init missing node_id")
	}

	n.setID(body.NodeID)
	n.setPeers(body.NodeIDs)

	if err := n.Reply(env.Src, body.MsgID, map[string]interface{}{
		"type": "init_ok",
	}); err != nil {
		return fmt.Errorf("reply init_ok: %w", err)
	}

	if n.handler != nil {
		n.handler.OnInit(n)
	}
	return nil
}

func (n *Node) handleTopology(env envelope.Envelope, head envelope.Head) error {
	var body topologyBody
	if err := envelope.Decode(env.Body, &body); err != nil {
		return fmt.Errorf("decode topology: %w", err)
	}

	if neighbours, ok := body.Topology[n.ID()]; ok {
		n.setPeers(neighbours)
	}

	return n.Reply(env.Src, body.MsgID, map[string]interface{}{
		"type": "topology_ok",
	})
}

// SortedInt64s returns a deterministic, ascending copy of a set rendered
// as a map[int64]struct{}; workload read_ok replies use this so that
// value equality in tests doesn't depend on Go's randomized map order.
func SortedInt64s(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
