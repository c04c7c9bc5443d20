// Package echo implements the echo workload: reply echo_ok with the same
// echo string the client sent.
package echo

import (
	"github.com/lattice-systems/distnode/internal/envelope"
	"github.com/lattice-systems/distnode/internal/node"
)

// Handler is the echo workload's node.Handler. It carries no state.
type Handler struct{}

type echoBody struct {
	MsgID int64  `json:"msg_id"`
	Echo  string `json:"echo"`
}

// OnInit is a no-op: echo has no periodic tasks.
func (Handler) OnInit(n *node.Node) {}

// HandleMessage replies echo_ok to any echo message.
func (Handler) HandleMessage(n *node.Node, src string, head envelope.Head, body []byte) error {
	if head.Type != "echo" {
		return nil
	}
	var b echoBody
	if err := envelope.Decode(body, &b); err != nil {
		return err
	}
	return n.Reply(src, b.MsgID, map[string]interface{}{
		"type": "echo_ok",
		"echo": b.Echo,
	})
}
