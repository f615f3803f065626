package node

import (
	"github.com/Carmen-Shannon/noded-go/engine/graph"
	"github.com/Carmen-Shannon/noded-go/engine/subscription"
)

// CollectionNode groups any number of nodes. It always exposes one free input after the
// connected ones.
type CollectionNode struct {
	Nodes []graph.NodeID `json:"nodes" copier:"-"`

	subs subscription.Registry[*Context]
}

func (c *CollectionNode) insert(idx int, id graph.NodeID) {
	if idx >= len(c.Nodes) {
		c.Nodes = append(c.Nodes, id)
		return
	}
	c.Nodes = append(c.Nodes, graph.NodeID{})
	copy(c.Nodes[idx+1:], c.Nodes[idx:])
	c.Nodes[idx] = id
}

func (c *CollectionNode) remove(idx int) {
	if idx < 0 || idx >= len(c.Nodes) {
		return
	}
	c.Nodes = append(c.Nodes[:idx], c.Nodes[idx+1:]...)
}
