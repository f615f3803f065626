package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/noded-go/engine/config"
	"github.com/Carmen-Shannon/noded-go/engine/graph"
	"github.com/Carmen-Shannon/noded-go/engine/loader"
	"github.com/Carmen-Shannon/noded-go/engine/node"
	"github.com/Carmen-Shannon/noded-go/engine/raytracer"
	"github.com/Carmen-Shannon/noded-go/engine/storage"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

var errInvalidGraph = errors.New("graph failed validation")

// Compile every Scene node of a stored graph and display the results.
func compileGraph(ctx *cli.Context) error {
	settings, err := loadSettings(ctx)
	if err != nil {
		return err
	}
	path := storageArg(ctx, settings)

	nodes, err := restoreGraph(path, settings)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Scene", "Spheres", "Materials", "Textures", "Lights"})

	scenes := 0
	for _, id := range nodesOfKind(nodes, node.KindScene) {
		if _, err := nodes.Recalculate(id); err != nil {
			return fmt.Errorf("failed to compile scene %s: %w", id, err)
		}
		s, err := nodes.Scene(id)
		if err != nil {
			return err
		}
		compiled := s.Compiled()
		if err := compiled.Validate(); err != nil {
			return fmt.Errorf("scene %s: %w", id, err)
		}
		log.Debugf("scene %s: %s", id, compiled.Stats())
		table.Append([]string{
			id.String(),
			fmt.Sprintf("%d", len(compiled.Spheres)),
			fmt.Sprintf("%d", len(compiled.Materials)),
			fmt.Sprintf("%d", len(compiled.Textures)),
			fmt.Sprintf("%d", len(compiled.Lights())),
		})
		scenes++
	}
	if scenes == 0 {
		log.Warningf("%s contains no scene nodes", path)
		return nil
	}

	table.Render()
	log.Noticef("compiled %d scene(s) from %s\n%s", scenes, path, buf.String())
	return nil
}

// Check the params every Camera node would hand to the raytracer.
func validateGraph(ctx *cli.Context) error {
	settings, err := loadSettings(ctx)
	if err != nil {
		return err
	}
	path := storageArg(ctx, settings)

	nodes, err := restoreGraph(path, settings)
	if err != nil {
		return err
	}

	failed := 0
	cameras := nodesOfKind(nodes, node.KindCamera)
	for _, id := range cameras {
		n, _ := nodes.Node(id)
		if err := cameraParams(n.Camera, settings).Validate(); err != nil {
			log.Errorf("camera %s: %v", id, err)
			failed++
			continue
		}
		if n.Camera.Scene.Get() == nil {
			log.Warningf("camera %s has no scene wired", id)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d camera(s): %w", failed, len(cameras), errInvalidGraph)
	}
	log.Noticef("%d camera(s) in %s are valid", len(cameras), path)
	return nil
}

// restoreGraph reads the graph from a storage file and replays its wires.
func restoreGraph(path string, settings config.Settings) (*node.Context, error) {
	store, err := storage.NewFileStorage(path)
	if err != nil {
		return nil, err
	}
	raw, ok := store.GetString(storage.KeyGraph)
	if !ok {
		return nil, fmt.Errorf("%s holds no graph", path)
	}

	g := graph.New[*node.Node]()
	if err := json.Unmarshal([]byte(raw), g); err != nil {
		return nil, fmt.Errorf("failed to decode graph in %s: %w", path, err)
	}
	l := loader.NewLoader(loader.BackendTypeImage, loader.WithMaxDimension(settings.Textures.MaxDimension))
	return node.Restore(g, l)
}

func nodesOfKind(nodes *node.Context, kind node.Kind) []graph.NodeID {
	var ids []graph.NodeID
	for _, id := range nodes.Graph.IDs() {
		if n, ok := nodes.Graph.Get(id); ok && n.Kind == kind {
			ids = append(ids, id)
		}
	}
	return ids
}

func cameraParams(cam *node.CameraNode, settings config.Settings) raytracer.RenderParams {
	forward, up := cam.Orientation()
	p := raytracer.DefaultRenderParams(uint32(settings.Window.Width), uint32(settings.Window.Height))
	p.Camera = raytracer.Camera{
		EyePos:        cam.Position.Get(),
		EyeDir:        forward,
		Up:            up,
		Vfov:          cam.Vfov.Get(),
		Aperture:      cam.Aperture.Get(),
		FocusDistance: cam.FocusDistance.Get(),
	}
	p.Sky = settings.Sky
	p.Sampling = settings.Sampling
	return p
}
