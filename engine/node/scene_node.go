package node

import (
	"github.com/Carmen-Shannon/noded-go/common"
	"github.com/Carmen-Shannon/noded-go/engine/graph"
	"github.com/Carmen-Shannon/noded-go/engine/scene"
)

// RecalculateResult reports whether Recalculate produced a new compiled scene.
type RecalculateResult int

const (
	// Nothing means the compiled scene was already up to date.
	Nothing RecalculateResult = iota
	// Recalculated means a new compiled scene was installed.
	Recalculated
)

func (r RecalculateResult) String() string {
	if r == Recalculated {
		return "Recalculated"
	}
	return "Nothing"
}

// SceneNode aggregates the primitives wired into it and owns their compiled scene.
// The compiled scene and dirty state are rebuilt after loading.
type SceneNode struct {
	Data common.Pin[*graph.NodeID] `json:"data"`

	flags    scene.DirtyFlags
	compiled scene.Scene
	tracked  []graph.NodeID
}

func newSceneNode() *SceneNode {
	s := &SceneNode{}
	s.reset()
	return s
}

func (s *SceneNode) reset() {
	s.flags = scene.DirtyInit
	s.compiled = scene.Scene{}
	s.tracked = nil
}

// Flags returns the current dirty flags.
func (s *SceneNode) Flags() scene.DirtyFlags {
	return s.flags
}

// MarkDirty adds flags to the dirty set.
func (s *SceneNode) MarkDirty(flags scene.DirtyFlags) {
	s.flags |= flags
}

// RegisterRender is called when a render starts drawing this scene. The next Recalculate
// rebuilds everything so the new consumer receives a full scene.
func (s *SceneNode) RegisterRender() {
	s.flags = scene.DirtyAll
}

// Compiled returns the installed compiled scene.
func (s *SceneNode) Compiled() *scene.Scene {
	return &s.compiled
}

// Tracked returns a detached copy of the node ids the compiled scene depends on.
func (s *SceneNode) Tracked() []graph.NodeID {
	out := make([]graph.NodeID, len(s.tracked))
	copy(out, s.tracked)
	return out
}
