package node

import "github.com/lattice-systems/distnode/internal/envelope"

// Handler is implemented by each workload engine (echo, broadcast, gset,
// pncounter, txn, castxn). The dispatcher owns init/topology/reply
// handling itself; everything else is handed to Handler.
type Handler interface {
	// HandleMessage processes one inbound envelope whose type the
	// dispatcher did not already recognize as init/topology/a reply. src is
	// the envelope's sender, head its already-parsed dispatch fields, and
	// body the full raw JSON body for the handler to decode further.
	HandleMessage(n *Node, src string, head envelope.Head, body []byte) error

	// OnInit is invoked once, immediately after init_ok has been sent, so
	// the handler can spawn any periodic background tasks (gossip loops,
	// etc.) now that Node.ID() and Node.Peers() are populated.
	OnInit(n *Node)
}
