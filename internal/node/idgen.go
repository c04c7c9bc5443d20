package node

import "sync"

// idGenerator hands out strictly increasing 64-bit message ids, guarded
// by its own mutex since many goroutines (retransmitters, gossipers,
// transactions) allocate ids concurrently.
type idGenerator struct {
	mu   sync.Mutex
	next int64
}

// Next returns the next id, starting at 1.
func (g *idGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return g.next
}
