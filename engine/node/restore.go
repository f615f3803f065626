package node

import (
	"fmt"

	"github.com/Carmen-Shannon/noded-go/engine/graph"
	"github.com/Carmen-Shannon/noded-go/engine/loader"
)

// Restore builds a Context over a graph decoded from storage. Connected pin values are not
// persisted, so every wire is replayed in input order, which also rebuilds collection
// membership.
//
// Parameters:
//   - g: the decoded arena
//   - l: the texture loader used by the scene compiler
//
// Returns:
//   - *Context: the context over g
//   - error: the first wire that could not be applied; the remaining wires are still replayed
func Restore(g *graph.Graph[*Node], l loader.Loader) (*Context, error) {
	ctx := NewContext(g, l)
	for _, id := range g.IDs() {
		if n, ok := g.Get(id); ok && n.Kind == KindCollection {
			n.Collection.Nodes = nil
		}
	}

	var firstErr error
	for _, id := range g.IDs() {
		for _, w := range g.InputWires(id) {
			if err := ctx.ConnectInput(w.Out, w.In); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("failed to restore wire %s -> %s: %w", w.Out.Node, w.In.Node, err)
			}
		}
	}
	return ctx, firstErr
}

// Detach resets every input of n to its user value, as if all of its wires were removed.
// Collections lose their members.
func (n *Node) Detach() {
	for i := len(n.Inputs()) - 1; i >= 0; i-- {
		_ = n.disconnect(i)
	}
}
