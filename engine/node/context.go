package node

import (
	"fmt"

	"github.com/Carmen-Shannon/noded-go/engine/graph"
	"github.com/Carmen-Shannon/noded-go/engine/loader"
	"github.com/Carmen-Shannon/noded-go/engine/logger"
	"github.com/Carmen-Shannon/noded-go/engine/scene"
	"github.com/Carmen-Shannon/noded-go/engine/subscription"
)

// Context grants mutable access to the whole node graph. It is handed to subscription
// callbacks and drives connection updates and scene compilation.
type Context struct {
	Graph  *graph.Graph[*Node]
	Loader loader.Loader

	log logger.Logger
}

// NewContext creates a Context over g that loads textures with l.
//
// Parameters:
//   - g: the node arena
//   - l: the texture loader used by the scene compiler
//
// Returns:
//   - *Context: the new context
func NewContext(g *graph.Graph[*Node], l loader.Loader) *Context {
	return &Context{Graph: g, Loader: l, log: logger.New("node")}
}

// Node resolves id to its node.
func (c *Context) Node(id graph.NodeID) (*Node, error) {
	n, ok := c.Graph.Get(id)
	if !ok || n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return n, nil
}

// Scene resolves id to a Scene node payload.
func (c *Context) Scene(id graph.NodeID) (*SceneNode, error) {
	n, ok := c.Graph.Get(id)
	if !ok || n == nil || n.Kind != KindScene {
		return nil, unexpected(id, "scene", n)
	}
	return n.Scene, nil
}

// Notify publishes OnChange for id. Nodes without a registry are ignored.
//
// Returns:
//   - int: the number of callbacks invoked
func (c *Context) Notify(id graph.NodeID) int {
	n, ok := c.Graph.Get(id)
	if !ok {
		return 0
	}
	subs := n.Subscriptions()
	if subs == nil {
		return 0
	}
	return subs.Notify(c, subscription.OnChange)
}

// ConnectInput applies a newly added wire to the receiving node's pin and notifies its
// subscribers. The wire itself is managed by the caller.
//
// Parameters:
//   - from: the output pin feeding the wire
//   - to: the input pin receiving the wire
//
// Returns:
//   - error: ErrNodeNotFound, ErrUnexpectedNode or ErrInputOutOfRange
func (c *Context) ConnectInput(from graph.OutPinID, to graph.InPinID) error {
	src, err := c.Node(from.Node)
	if err != nil {
		return err
	}
	dst, err := c.Node(to.Node)
	if err != nil {
		return err
	}
	if err := dst.connect(from.Node, src, to.Input); err != nil {
		return err
	}
	c.Notify(to.Node)
	return nil
}

// DisconnectInput restores the user value of the input a removed wire was feeding and
// notifies the node's subscribers.
//
// Parameters:
//   - to: the input pin that lost its wire
//
// Returns:
//   - error: ErrNodeNotFound or ErrInputOutOfRange
func (c *Context) DisconnectInput(to graph.InPinID) error {
	dst, err := c.Node(to.Node)
	if err != nil {
		return err
	}
	if err := dst.disconnect(to.Input); err != nil {
		return err
	}
	c.Notify(to.Node)
	return nil
}

// Changed re-applies the outputs of an edited node to every input it feeds and notifies
// subscribers of the node itself and of each receiver.
//
// Parameters:
//   - id: the node whose value changed
//
// Returns:
//   - error: the first error raised while re-applying a wire
func (c *Context) Changed(id graph.NodeID) error {
	n, err := c.Node(id)
	if err != nil {
		return err
	}
	c.Notify(id)

	var firstErr error
	for out := range n.Outputs() {
		for _, in := range c.Graph.OutRemotes(graph.OutPinID{Node: id, Output: out}) {
			dst, err := c.Node(in.Node)
			if err != nil {
				continue
			}
			if dst.Kind == KindCollection {
				continue
			}
			if err := c.ConnectInput(graph.OutPinID{Node: id, Output: out}, in); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Release drops every subscription held by or on id. Call it before removing the node
// from the arena.
func (c *Context) Release(id graph.NodeID) {
	if n, ok := c.Graph.Get(id); ok {
		if subs := n.Subscriptions(); subs != nil {
			subs.Clear()
		}
		if n.Kind == KindScene {
			for _, dep := range n.Scene.tracked {
				c.unsubscribe(dep, id)
			}
			n.Scene.tracked = nil
		}
	}
}

// MarkDirty adds flags to the Scene node id.
func (c *Context) MarkDirty(id graph.NodeID, flags scene.DirtyFlags) error {
	s, err := c.Scene(id)
	if err != nil {
		return err
	}
	s.MarkDirty(flags)
	return nil
}

func (c *Context) unsubscribe(publisher, subscriber graph.NodeID) {
	n, ok := c.Graph.Get(publisher)
	if !ok {
		return
	}
	if subs := n.Subscriptions(); subs != nil {
		subs.Unsubscribe(subscriber, subscription.OnChange)
	}
}

// markSceneDirty is the OnChange callback a Scene node registers on its dependencies.
// publisher is bound at subscription time so a subscriber that is gone or no longer a
// Scene node can drop its own entry.
func markSceneDirty(publisher graph.NodeID) subscription.Callback[*Context] {
	return func(ctx *Context, subscriber graph.NodeID) {
		n, ok := ctx.Graph.Get(subscriber)
		if !ok || n.Kind != KindScene {
			ctx.unsubscribe(publisher, subscriber)
			return
		}
		n.Scene.flags = scene.DirtyAll
	}
}
