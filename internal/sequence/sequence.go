package sequence

import "sync/atomic"

// Generator hands out monotonically increasing identifiers. Each
// simulation context owns its own generators (one for orders, one for
// trades), so resets and parallel simulations never share or leak IDs.
type Generator struct {
	n atomic.Int64
}

// Next returns the next identifier, starting at 1.
func (g *Generator) Next() int64 {
	return g.n.Add(1)
}

// Current returns the last identifier handed out (0 before any Next).
func (g *Generator) Current() int64 {
	return g.n.Load()
}

// Reset restarts the sequence from zero.
func (g *Generator) Reset() {
	g.n.Store(0)
}
