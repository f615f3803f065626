package node

import (
	"github.com/Carmen-Shannon/noded-go/common"
	"github.com/Carmen-Shannon/noded-go/engine/graph"
)

// RaytracerRenderNode renders the scene seen by its camera with the path tracer.
type RaytracerRenderNode struct {
	Camera common.Pin[*graph.NodeID] `json:"camera"`
}

// OutputNode is the sink the viewer draws from.
type OutputNode struct{}
