package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testNode struct {
	Name string `json:"name"`
	Keep bool   `json:"keep"`
}

func out(id NodeID) OutPinID { return OutPinID{Node: id} }

func in(id NodeID, i int) InPinID { return InPinID{Node: id, Input: i} }

func keep(_ NodeID, n *testNode) bool { return n.Keep }

func TestRemoveBumpsGeneration(t *testing.T) {
	g := New[*testNode]()
	a := g.Insert(&testNode{Name: "a"})
	b := g.Insert(&testNode{Name: "b"})
	require.True(t, g.Connect(out(a), in(b, 0)))

	removed, ok := g.Remove(a)
	require.True(t, ok)
	assert.Equal(t, "a", removed.Name)
	assert.Empty(t, g.Wires())
	assert.False(t, g.Contains(a))

	c := g.Insert(&testNode{Name: "c"})
	assert.Equal(t, a.Index, c.Index)
	assert.NotEqual(t, a.Generation, c.Generation)
	_, ok = g.Get(a)
	assert.False(t, ok, "stale id must not resolve to the reused slot")
	assert.Equal(t, 2, g.Len())
}

func TestConnectIsIdempotent(t *testing.T) {
	g := New[*testNode]()
	a := g.Insert(&testNode{})
	b := g.Insert(&testNode{})

	assert.True(t, g.Connect(out(a), in(b, 0)))
	assert.False(t, g.Connect(out(a), in(b, 0)))
	assert.Len(t, g.InRemotes(in(b, 0)), 1)

	assert.True(t, g.Disconnect(out(a), in(b, 0)))
	assert.False(t, g.Disconnect(out(a), in(b, 0)))
}

func TestDropInputs(t *testing.T) {
	g := New[*testNode]()
	a := g.Insert(&testNode{})
	b := g.Insert(&testNode{})
	c := g.Insert(&testNode{})
	g.Connect(out(a), in(c, 0))
	g.Connect(out(b), in(c, 0))
	g.Connect(out(a), in(c, 1))

	dropped := g.DropInputs(in(c, 0))
	assert.Len(t, dropped, 2)
	assert.Equal(t, []OutPinID{out(a)}, g.InRemotes(in(c, 1)))
}

func TestCollectOrderedDeduplicated(t *testing.T) {
	g := New[*testNode]()
	root := g.Insert(&testNode{Name: "root", Keep: true})
	coll := g.Insert(&testNode{Name: "collection"})
	s1 := g.Insert(&testNode{Name: "s1", Keep: true})
	s2 := g.Insert(&testNode{Name: "s2", Keep: true})
	mat := g.Insert(&testNode{Name: "mat", Keep: true})

	g.Connect(out(coll), in(root, 0))
	g.Connect(out(s1), in(coll, 0))
	g.Connect(out(s2), in(coll, 1))
	g.Connect(out(mat), in(s1, 2))
	g.Connect(out(mat), in(s2, 2))

	got := Collect(g, root, keep)
	assert.Equal(t, []NodeID{mat, s1, s2}, got.Keys)
}

func TestCollectTerminatesOnCycles(t *testing.T) {
	g := New[*testNode]()
	root := g.Insert(&testNode{Name: "root"})
	coll := g.Insert(&testNode{Name: "collection", Keep: true})
	g.Connect(out(coll), in(root, 0))
	g.Connect(out(coll), in(coll, 0))
	g.Connect(out(root), in(coll, 1))

	got := Collect(g, root, keep)
	assert.Equal(t, []NodeID{coll}, got.Keys)
}

func TestJSONRoundTripKeepsIDs(t *testing.T) {
	g := New[*testNode]()
	a := g.Insert(&testNode{Name: "a"})
	b := g.Insert(&testNode{Name: "b"})
	gone := g.Insert(&testNode{Name: "gone"})
	g.Remove(gone)
	g.Connect(out(a), in(b, 1))

	data, err := json.Marshal(g)
	require.NoError(t, err)

	restored := New[*testNode]()
	require.NoError(t, json.Unmarshal(data, restored))

	n, ok := restored.Get(b)
	require.True(t, ok)
	assert.Equal(t, "b", n.Name)
	assert.Equal(t, []Wire{{Out: out(a), In: in(b, 1)}}, restored.Wires())

	next := restored.Insert(&testNode{Name: "next"})
	assert.Equal(t, gone.Index, next.Index)
}
