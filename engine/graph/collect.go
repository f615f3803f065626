package graph

import "cogentcore.org/core/base/keylist"

// Predicate decides whether a visited node belongs in a collection result.
type Predicate[N any] func(id NodeID, node N) bool

// Collect walks the input wires upstream of root and returns every node accepted by pred,
// deduplicated. A node is appended after everything it depends on, so textures precede the
// materials using them and materials precede primitives. Traversal continues through nodes
// the predicate rejects, so containers that are not themselves interesting still contribute
// their inputs.
// A visited set bounds the walk, so self-referential or cyclic wiring terminates.
// The root itself is never part of the result.
//
// Parameters:
//   - g: the graph to walk
//   - root: the node whose inputs start the walk
//   - pred: inclusion test for visited nodes
//
// Returns:
//   - *keylist.List[NodeID, N]: the ordered set of accepted nodes keyed by id
func Collect[N any](g *Graph[N], root NodeID, pred Predicate[N]) *keylist.List[NodeID, N] {
	result := keylist.New[NodeID, N]()
	visited := map[NodeID]struct{}{root: {}}
	for _, w := range g.InputWires(root) {
		collectFrom(g, w.Out.Node, pred, visited, result)
	}
	return result
}

func collectFrom[N any](g *Graph[N], id NodeID, pred Predicate[N], visited map[NodeID]struct{}, result *keylist.List[NodeID, N]) {
	if _, seen := visited[id]; seen {
		return
	}
	visited[id] = struct{}{}

	node, ok := g.Get(id)
	if !ok {
		return
	}
	for _, w := range g.InputWires(id) {
		collectFrom(g, w.Out.Node, pred, visited, result)
	}
	if pred(id, node) {
		result.Set(id, node)
	}
}
