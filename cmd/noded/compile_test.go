package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/noded-go/engine/config"
	"github.com/Carmen-Shannon/noded-go/engine/graph"
	"github.com/Carmen-Shannon/noded-go/engine/loader"
	"github.com/Carmen-Shannon/noded-go/engine/node"
	"github.com/Carmen-Shannon/noded-go/engine/raytracer"
	"github.com/Carmen-Shannon/noded-go/engine/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGraph(t *testing.T, vfov float32) string {
	t.Helper()
	ctx := node.NewContext(graph.New[*node.Node](), loader.NewLoader(loader.BackendTypeImage))
	cam := node.New(node.KindCamera)
	*cam.Camera.Vfov.AsMut() = vfov
	ids := []graph.NodeID{
		ctx.Graph.Insert(node.New(node.KindSphere)),
		ctx.Graph.Insert(node.New(node.KindScene)),
		ctx.Graph.Insert(cam),
	}
	for i, input := range []int{0, 6} {
		out := graph.OutPinID{Node: ids[i]}
		in := graph.InPinID{Node: ids[i+1], Input: input}
		require.True(t, ctx.Graph.Connect(out, in))
		require.NoError(t, ctx.ConnectInput(out, in))
	}

	data, err := json.Marshal(ctx.Graph)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "graph.toml")
	store, err := storage.NewFileStorage(path)
	require.NoError(t, err)
	store.SetString(storage.KeyGraph, string(data))
	require.NoError(t, store.Flush())
	return path
}

func TestRestoreGraphCompilesScenes(t *testing.T) {
	nodes, err := restoreGraph(writeGraph(t, 45), config.Default())
	require.NoError(t, err)

	scenes := nodesOfKind(nodes, node.KindScene)
	require.Len(t, scenes, 1)
	_, err = nodes.Recalculate(scenes[0])
	require.NoError(t, err)
	s, err := nodes.Scene(scenes[0])
	require.NoError(t, err)
	assert.Len(t, s.Compiled().Spheres, 1)
	assert.Len(t, nodesOfKind(nodes, node.KindCamera), 1)
}

func TestRestoreGraphWithoutGraph(t *testing.T) {
	_, err := restoreGraph(filepath.Join(t.TempDir(), "missing.toml"), config.Default())
	assert.Error(t, err)
}

func TestCameraParamsValidation(t *testing.T) {
	settings := config.Default()

	nodes, err := restoreGraph(writeGraph(t, 45), settings)
	require.NoError(t, err)
	cam, err := nodes.Node(nodesOfKind(nodes, node.KindCamera)[0])
	require.NoError(t, err)
	p := cameraParams(cam.Camera, settings)
	assert.NoError(t, p.Validate())
	assert.Equal(t, float32(45), p.Camera.Vfov)
	assert.Equal(t, settings.Sampling, p.Sampling)

	nodes, err = restoreGraph(writeGraph(t, 120), settings)
	require.NoError(t, err)
	cam, err = nodes.Node(nodesOfKind(nodes, node.KindCamera)[0])
	require.NoError(t, err)
	var vfovErr *raytracer.VfovOutOfRangeError
	assert.ErrorAs(t, cameraParams(cam.Camera, settings).Validate(), &vfovErr)
}
