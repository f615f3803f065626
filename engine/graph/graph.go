// Package graph implements the node arena behind the editor: a slot map of nodes addressed by
// generational ids plus the list of wires connecting output pins to input pins.
// Nodes never hold pointers to each other; every cross reference is a NodeID resolved through
// the arena.
package graph

import (
	"encoding/json"
	"fmt"
	"sort"
)

// NodeID is a stable handle to a node. A removed slot bumps its generation, so ids held by
// stale references stop resolving instead of aliasing a newer node.
type NodeID struct {
	Index      uint32 `json:"index"`
	Generation uint32 `json:"generation"`
}

func (id NodeID) String() string {
	return fmt.Sprintf("%d:%d", id.Index, id.Generation)
}

// OutPinID addresses an output slot on a node.
type OutPinID struct {
	Node   NodeID `json:"node"`
	Output int    `json:"output"`
}

// InPinID addresses an input slot on a node.
type InPinID struct {
	Node  NodeID `json:"node"`
	Input int    `json:"input"`
}

// Wire connects one output pin to one input pin.
type Wire struct {
	Out OutPinID `json:"out"`
	In  InPinID  `json:"in"`
}

type slot[N any] struct {
	node       N
	generation uint32
	occupied   bool
}

// Graph is a generational arena of nodes of type N and the wires between them.
// The zero value is ready to use.
type Graph[N any] struct {
	slots []slot[N]
	free  []uint32
	wires []Wire
}

// New creates an empty Graph.
func New[N any]() *Graph[N] {
	return &Graph[N]{}
}

// Insert adds a node and returns its id.
//
// Parameters:
//   - node: the node value to store
//
// Returns:
//   - NodeID: the id of the new node
func (g *Graph[N]) Insert(node N) NodeID {
	if n := len(g.free); n > 0 {
		idx := g.free[n-1]
		g.free = g.free[:n-1]
		s := &g.slots[idx]
		s.node = node
		s.occupied = true
		return NodeID{Index: idx, Generation: s.generation}
	}
	g.slots = append(g.slots, slot[N]{node: node, occupied: true})
	return NodeID{Index: uint32(len(g.slots) - 1)}
}

// Remove deletes a node together with every wire touching it.
//
// Parameters:
//   - id: the node to remove
//
// Returns:
//   - N: the removed node
//   - bool: false if id did not resolve
func (g *Graph[N]) Remove(id NodeID) (N, bool) {
	var zero N
	if !g.Contains(id) {
		return zero, false
	}
	kept := g.wires[:0]
	for _, w := range g.wires {
		if w.Out.Node != id && w.In.Node != id {
			kept = append(kept, w)
		}
	}
	g.wires = kept

	s := &g.slots[id.Index]
	removed := s.node
	s.node = zero
	s.occupied = false
	s.generation++
	g.free = append(g.free, id.Index)
	return removed, true
}

// Contains reports whether id resolves to a live node.
func (g *Graph[N]) Contains(id NodeID) bool {
	if int(id.Index) >= len(g.slots) {
		return false
	}
	s := g.slots[id.Index]
	return s.occupied && s.generation == id.Generation
}

// Get resolves id to its node.
func (g *Graph[N]) Get(id NodeID) (N, bool) {
	if !g.Contains(id) {
		var zero N
		return zero, false
	}
	return g.slots[id.Index].node, true
}

// Set replaces the node stored at id. It returns false if id does not resolve.
func (g *Graph[N]) Set(id NodeID, node N) bool {
	if !g.Contains(id) {
		return false
	}
	g.slots[id.Index].node = node
	return true
}

// Len returns the number of live nodes.
func (g *Graph[N]) Len() int {
	return len(g.slots) - len(g.free)
}

// IDs returns a detached list of live node ids in slot order.
func (g *Graph[N]) IDs() []NodeID {
	ids := make([]NodeID, 0, g.Len())
	for i, s := range g.slots {
		if s.occupied {
			ids = append(ids, NodeID{Index: uint32(i), Generation: s.generation})
		}
	}
	return ids
}

// Connect adds a wire. Connecting an existing wire again or touching a missing node is a no-op.
//
// Returns:
//   - bool: true if a wire was added
func (g *Graph[N]) Connect(out OutPinID, in InPinID) bool {
	if !g.Contains(out.Node) || !g.Contains(in.Node) {
		return false
	}
	w := Wire{Out: out, In: in}
	for _, existing := range g.wires {
		if existing == w {
			return false
		}
	}
	g.wires = append(g.wires, w)
	return true
}

// Disconnect removes a wire.
//
// Returns:
//   - bool: true if the wire existed
func (g *Graph[N]) Disconnect(out OutPinID, in InPinID) bool {
	w := Wire{Out: out, In: in}
	for i, existing := range g.wires {
		if existing == w {
			g.wires = append(g.wires[:i], g.wires[i+1:]...)
			return true
		}
	}
	return false
}

// DropInputs removes every wire ending at in and returns the removed wires.
func (g *Graph[N]) DropInputs(in InPinID) []Wire {
	var dropped []Wire
	kept := g.wires[:0]
	for _, w := range g.wires {
		if w.In == in {
			dropped = append(dropped, w)
			continue
		}
		kept = append(kept, w)
	}
	g.wires = kept
	return dropped
}

// DropOutputs removes every wire starting at out and returns the removed wires.
func (g *Graph[N]) DropOutputs(out OutPinID) []Wire {
	var dropped []Wire
	kept := g.wires[:0]
	for _, w := range g.wires {
		if w.Out == out {
			dropped = append(dropped, w)
			continue
		}
		kept = append(kept, w)
	}
	g.wires = kept
	return dropped
}

// InRemotes returns the output pins wired into in, in wiring order.
func (g *Graph[N]) InRemotes(in InPinID) []OutPinID {
	var remotes []OutPinID
	for _, w := range g.wires {
		if w.In == in {
			remotes = append(remotes, w.Out)
		}
	}
	return remotes
}

// OutRemotes returns the input pins fed by out, in wiring order.
func (g *Graph[N]) OutRemotes(out OutPinID) []InPinID {
	var remotes []InPinID
	for _, w := range g.wires {
		if w.Out == out {
			remotes = append(remotes, w.In)
		}
	}
	return remotes
}

// InputWires returns the wires ending at node, ordered by input index and then by wiring order.
func (g *Graph[N]) InputWires(node NodeID) []Wire {
	var wires []Wire
	for _, w := range g.wires {
		if w.In.Node == node {
			wires = append(wires, w)
		}
	}
	sort.SliceStable(wires, func(i, j int) bool {
		return wires[i].In.Input < wires[j].In.Input
	})
	return wires
}

// Wires returns a detached copy of every wire in wiring order.
func (g *Graph[N]) Wires() []Wire {
	out := make([]Wire, len(g.wires))
	copy(out, g.wires)
	return out
}

type persistedNode[N any] struct {
	ID   NodeID `json:"id"`
	Node N      `json:"node"`
}

type persistedGraph[N any] struct {
	Nodes []persistedNode[N] `json:"nodes"`
	Wires []Wire             `json:"wires"`
}

// MarshalJSON writes every live node with its id plus the wire list.
func (g *Graph[N]) MarshalJSON() ([]byte, error) {
	pg := persistedGraph[N]{Wires: g.Wires()}
	for _, id := range g.IDs() {
		pg.Nodes = append(pg.Nodes, persistedNode[N]{ID: id, Node: g.slots[id.Index].node})
	}
	return json.Marshal(pg)
}

// UnmarshalJSON rebuilds the arena with the persisted ids so saved wires keep resolving.
func (g *Graph[N]) UnmarshalJSON(data []byte) error {
	var pg persistedGraph[N]
	if err := json.Unmarshal(data, &pg); err != nil {
		return err
	}
	g.slots = nil
	g.free = nil
	g.wires = nil

	for _, pn := range pg.Nodes {
		idx := int(pn.ID.Index)
		for len(g.slots) <= idx {
			g.slots = append(g.slots, slot[N]{})
		}
		if g.slots[idx].occupied {
			return fmt.Errorf("graph: duplicate node index %d", idx)
		}
		g.slots[idx] = slot[N]{node: pn.Node, generation: pn.ID.Generation, occupied: true}
	}
	for i := len(g.slots) - 1; i >= 0; i-- {
		if !g.slots[i].occupied {
			g.free = append(g.free, uint32(i))
		}
	}
	for _, w := range pg.Wires {
		if !g.Connect(w.Out, w.In) && (!g.Contains(w.Out.Node) || !g.Contains(w.In.Node)) {
			return fmt.Errorf("graph: wire %v -> %v references a missing node", w.Out.Node, w.In.Node)
		}
	}
	return nil
}
