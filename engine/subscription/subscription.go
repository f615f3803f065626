// Package subscription implements the per-node event registry used by upstream nodes to
// notify the scene nodes that depend on them.
package subscription

import "github.com/Carmen-Shannon/noded-go/engine/graph"

// Event identifies a notification kind.
type Event int

const (
	// OnChange fires whenever a node's compiled contribution may have changed.
	OnChange Event = iota
)

func (e Event) String() string {
	switch e {
	case OnChange:
		return "OnChange"
	default:
		return "Unknown"
	}
}

// Callback is invoked for each subscriber on Notify. The context grants mutable access to the
// whole graph; callbacks must re-check that subscriber still is the node they expect and
// unsubscribe themselves when it is not.
type Callback[C any] func(ctx C, subscriber graph.NodeID)

type entry[C any] struct {
	subscriber graph.NodeID
	callback   Callback[C]
}

// Registry holds the subscriptions of a single publishing node. At most one subscription exists
// per (subscriber, event) pair. The zero value is ready to use.
type Registry[C any] struct {
	entries map[Event][]entry[C]
}

// HasSubscription reports whether subscriber is registered for event.
func (r *Registry[C]) HasSubscription(subscriber graph.NodeID, event Event) bool {
	for _, e := range r.entries[event] {
		if e.subscriber == subscriber {
			return true
		}
	}
	return false
}

// Subscribe registers callback for subscriber on event. Subscribing an existing pair is a no-op
// and keeps the original callback.
//
// Parameters:
//   - subscriber: the node to be notified
//   - event: the event to listen for
//   - callback: the function invoked on Notify
//
// Returns:
//   - bool: true if a new subscription was added
func (r *Registry[C]) Subscribe(subscriber graph.NodeID, event Event, callback Callback[C]) bool {
	if r.HasSubscription(subscriber, event) {
		return false
	}
	if r.entries == nil {
		r.entries = make(map[Event][]entry[C])
	}
	r.entries[event] = append(r.entries[event], entry[C]{subscriber: subscriber, callback: callback})
	return true
}

// Unsubscribe removes the subscription of subscriber on event.
//
// Returns:
//   - bool: true if a subscription was removed
func (r *Registry[C]) Unsubscribe(subscriber graph.NodeID, event Event) bool {
	list := r.entries[event]
	for i, e := range list {
		if e.subscriber == subscriber {
			r.entries[event] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Notify invokes every callback registered for event. The callback list is snapshotted first,
// so callbacks may subscribe or unsubscribe (including themselves) while the walk is running.
//
// Parameters:
//   - ctx: the mutable graph context handed to each callback
//   - event: the event being published
//
// Returns:
//   - int: the number of callbacks invoked
func (r *Registry[C]) Notify(ctx C, event Event) int {
	snapshot := make([]entry[C], len(r.entries[event]))
	copy(snapshot, r.entries[event])
	for _, e := range snapshot {
		e.callback(ctx, e.subscriber)
	}
	return len(snapshot)
}

// Subscribers returns a detached list of subscribers for event in registration order.
func (r *Registry[C]) Subscribers(event Event) []graph.NodeID {
	ids := make([]graph.NodeID, 0, len(r.entries[event]))
	for _, e := range r.entries[event] {
		ids = append(ids, e.subscriber)
	}
	return ids
}

// Len returns the number of subscriptions across all events.
func (r *Registry[C]) Len() int {
	n := 0
	for _, list := range r.entries {
		n += len(list)
	}
	return n
}

// Clear drops every subscription.
func (r *Registry[C]) Clear() {
	r.entries = nil
}
