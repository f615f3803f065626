// Package viewer is the glue between the node graph editor and the path tracer. It applies
// editor events (wiring, node insertion and removal, value edits) to the graph, tracks
// which render node feeds the Output node, and drives the raytracer each frame.
package viewer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/noded-go/engine/camera"
	"github.com/Carmen-Shannon/noded-go/engine/config"
	"github.com/Carmen-Shannon/noded-go/engine/graph"
	"github.com/Carmen-Shannon/noded-go/engine/loader"
	"github.com/Carmen-Shannon/noded-go/engine/logger"
	"github.com/Carmen-Shannon/noded-go/engine/node"
	"github.com/Carmen-Shannon/noded-go/engine/profiler"
	"github.com/Carmen-Shannon/noded-go/engine/raytracer"
	"github.com/Carmen-Shannon/noded-go/engine/scene"
	"github.com/Carmen-Shannon/noded-go/engine/storage"
	"github.com/jinzhu/copier"
)

var (
	// ErrIncompatiblePins is returned when an output's type flags do not intersect the input's.
	ErrIncompatiblePins = errors.New("incompatible pins")
	ErrNoTracer         = errors.New("viewer requires a tracer")
	ErrNotTexture       = errors.New("node is not a texture")
)

// Tracer is the part of the raytracer the viewer drives. *raytracer.Raytracer implements it.
type Tracer interface {
	PrepareFrame(params raytracer.RenderParams, sc *scene.Scene) error
	RenderFrame() error
	Progress() float32
	SceneReady() bool
}

var _ Tracer = &raytracer.Raytracer{}

// Viewer owns the node graph and renders the scene seen by the render node wired into the
// Output node. All methods must be called from the frame thread.
type Viewer struct {
	ctx      *node.Context
	tracer   Tracer
	loader   loader.Loader
	settings config.Settings
	style    Style

	storage    storage.Storage
	watcher    *loader.Watcher
	profiler   *profiler.Profiler
	controller camera.Controller

	render *graph.NodeID
	log    logger.Logger

	// uploaded is the Scene node whose compiled scene the tracer last accepted; pending
	// is set while a recompiled scene has not been accepted yet.
	uploaded *graph.NodeID
	pending  bool
}

// NewViewer creates a viewer with an empty graph.
//
// Parameters:
//   - tracer: the raytracer that draws the scene
//   - options: variadic list of ViewerBuilderOption functions
//
// Returns:
//   - *Viewer: the viewer
//   - error: ErrNoTracer when tracer is nil
func NewViewer(tracer Tracer, options ...ViewerBuilderOption) (*Viewer, error) {
	if tracer == nil {
		return nil, ErrNoTracer
	}
	v := &Viewer{
		tracer:   tracer,
		settings: config.Default(),
		style:    DefaultStyle(),
		log:      logger.New("viewer"),
	}
	for _, opt := range options {
		opt(v)
	}
	if v.loader == nil {
		v.loader = loader.NewLoader(loader.BackendTypeImage,
			loader.WithMaxDimension(v.settings.Textures.MaxDimension))
	}
	if v.controller == nil {
		v.controller = camera.NewController(
			camera.WithMoveSpeed(v.settings.Camera.MoveSpeed),
			camera.WithBoostMultiplier(v.settings.Camera.BoostMultiplier),
			camera.WithMouseSensitivity(v.settings.Camera.MouseSensitivity),
			camera.WithZoomSpeed(v.settings.Camera.ZoomSpeed),
		)
	}
	v.ctx = node.NewContext(graph.New[*node.Node](), v.loader)
	return v, nil
}

// Context returns the node context. Edits made through it bypass render registration and
// texture watching; prefer the viewer methods.
func (v *Viewer) Context() *node.Context {
	return v.ctx
}

// Settings returns the current settings.
func (v *Viewer) Settings() config.Settings {
	return v.settings
}

// SetSettings replaces the settings used to build render params.
func (v *Viewer) SetSettings(s config.Settings) {
	v.settings = s
}

// Style returns the editor style.
func (v *Viewer) Style() Style {
	return v.style
}

// SetStyle replaces the editor style.
func (v *Viewer) SetStyle(s Style) {
	v.style = s
}

// Render returns the render node wired into the Output node.
//
// Returns:
//   - graph.NodeID: the render node
//   - bool: false when no render is registered
func (v *Viewer) Render() (graph.NodeID, bool) {
	if v.render == nil {
		return graph.NodeID{}, false
	}
	return *v.render, true
}

// Insert adds n to the graph.
func (v *Viewer) Insert(n *node.Node) graph.NodeID {
	id := v.ctx.Graph.Insert(n)
	if n.Kind == node.KindTexture {
		v.watch(n.Texture.Path)
	}
	return id
}

// Remove severs every wire of id, drops the subscriptions held by or on it and removes it
// from the graph.
//
// Returns:
//   - error: ErrNodeNotFound when id does not resolve
func (v *Viewer) Remove(id graph.NodeID) error {
	n, err := v.ctx.Node(id)
	if err != nil {
		return err
	}
	if v.render != nil && *v.render == id {
		v.unregisterRender()
	}

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	// later collection inputs shift down on each disconnect, so walk inputs backwards
	for _, w := range reverse(v.ctx.Graph.InputWires(id)) {
		keep(v.Disconnect(w.Out, w.In))
	}
	for out := range n.Outputs() {
		pin := graph.OutPinID{Node: id, Output: out}
		// disconnecting from a collection renumbers its wires, so query again each time
		for remotes := v.ctx.Graph.OutRemotes(pin); len(remotes) > 0; remotes = v.ctx.Graph.OutRemotes(pin) {
			keep(v.Disconnect(pin, remotes[0]))
		}
	}

	v.ctx.Release(id)
	v.ctx.Graph.Remove(id)
	if n.Kind == node.KindTexture && v.watcher != nil && !v.texturePathInUse(n.Texture.Path) {
		v.watcher.Unwatch(n.Texture.Path)
	}
	return firstErr
}

// Duplicate inserts an unwired deep copy of id.
//
// Returns:
//   - graph.NodeID: the copy
//   - error: ErrNodeNotFound, or an error from the copy
func (v *Viewer) Duplicate(id graph.NodeID) (graph.NodeID, error) {
	src, err := v.ctx.Node(id)
	if err != nil {
		return graph.NodeID{}, err
	}
	dst := node.New(src.Kind)
	if err := copier.CopyWithOption(dst, src, copier.Option{DeepCopy: true}); err != nil {
		return graph.NodeID{}, fmt.Errorf("failed to duplicate %s: %w", id, err)
	}
	dst.Detach()
	return v.Insert(dst), nil
}

// Edit applies fn to node id and propagates the change to the nodes it feeds.
//
// Returns:
//   - error: ErrNodeNotFound, or the first error raised while re-applying the node's wires
func (v *Viewer) Edit(id graph.NodeID, fn func(n *node.Node)) error {
	n, err := v.ctx.Node(id)
	if err != nil {
		return err
	}
	fn(n)
	return v.ctx.Changed(id)
}

// SetTexturePath points a Texture node at a new file and watches it.
func (v *Viewer) SetTexturePath(id graph.NodeID, path string) error {
	n, err := v.ctx.Node(id)
	if err != nil {
		return err
	}
	if n.Kind != node.KindTexture {
		return fmt.Errorf("%w: %s is %s", ErrNotTexture, id, n.Kind)
	}
	old := n.Texture.Path
	n.Texture.Path = path
	if v.watcher != nil && old != "" && old != path && !v.texturePathInUse(old) {
		v.watcher.Unwatch(old)
	}
	v.watch(path)
	return v.ctx.Changed(id)
}

// Connect wires out into in. An input holds at most one wire, so the existing wires of in
// are removed first. Wiring a render node into the Output node registers it as the
// viewer's render.
//
// Parameters:
//   - out: the source output pin
//   - in: the receiving input pin
//
// Returns:
//   - error: ErrIncompatiblePins when the pin flags do not intersect, ErrNodeNotFound,
//     or an error raised by the receiving node
func (v *Viewer) Connect(out graph.OutPinID, in graph.InPinID) error {
	src, err := v.ctx.Node(out.Node)
	if err != nil {
		return err
	}
	dst, err := v.ctx.Node(in.Node)
	if err != nil {
		return err
	}
	outputs, inputs := src.Outputs(), dst.Inputs()
	if out.Output < 0 || out.Output >= len(outputs) || in.Input < 0 || in.Input >= len(inputs) {
		return fmt.Errorf("%w: %s output %d -> %s input %d", ErrIncompatiblePins, src.Kind, out.Output, dst.Kind, in.Input)
	}
	if !outputs[out.Output].Intersects(inputs[in.Input]) {
		return fmt.Errorf("%w: %s output %d -> %s input %d", ErrIncompatiblePins, src.Kind, out.Output, dst.Kind, in.Input)
	}

	for _, remote := range v.ctx.Graph.InRemotes(in) {
		if err := v.Disconnect(remote, in); err != nil {
			return err
		}
	}
	if dst.Kind == node.KindCollection {
		if in.Input > len(dst.Collection.Nodes) {
			in.Input = len(dst.Collection.Nodes)
		}
		v.shiftCollectionWires(in.Node, in.Input, 1)
	}

	if !v.ctx.Graph.Connect(out, in) {
		return fmt.Errorf("%w: %s -> %s", node.ErrNodeNotFound, out.Node, in.Node)
	}
	if err := v.ctx.ConnectInput(out, in); err != nil {
		v.ctx.Graph.Disconnect(out, in)
		if dst.Kind == node.KindCollection {
			v.shiftCollectionWires(in.Node, in.Input+1, -1)
		}
		return err
	}

	if dst.Kind == node.KindOutput && src.IsRender() {
		v.registerRender(out.Node)
	}
	return nil
}

// Disconnect removes the wire from out to in and restores the input's user value. Later
// inputs of a collection shift down to close the gap. Disconnecting the registered render
// unregisters it.
//
// Returns:
//   - error: ErrNodeNotFound or ErrInputOutOfRange
func (v *Viewer) Disconnect(out graph.OutPinID, in graph.InPinID) error {
	dst, err := v.ctx.Node(in.Node)
	if err != nil {
		return err
	}
	if !v.ctx.Graph.Disconnect(out, in) {
		return nil
	}
	if err := v.ctx.DisconnectInput(in); err != nil {
		return err
	}
	if v.render != nil && *v.render == out.Node {
		v.unregisterRender()
	}
	if dst.Kind == node.KindCollection {
		v.shiftCollectionWires(in.Node, in.Input+1, -1)
	}
	return nil
}

// shiftCollectionWires moves every wire into collection inputs at or after from by delta.
func (v *Viewer) shiftCollectionWires(collection graph.NodeID, from, delta int) {
	wires := v.ctx.Graph.InputWires(collection)
	if delta > 0 {
		wires = reverse(wires)
	}
	for _, w := range wires {
		if w.In.Input < from {
			continue
		}
		v.ctx.Graph.Disconnect(w.Out, w.In)
		v.ctx.Graph.Connect(w.Out, graph.InPinID{Node: collection, Input: w.In.Input + delta})
	}
}

// registerRender makes id the drawn render and asks its scene for a full rebuild.
func (v *Viewer) registerRender(id graph.NodeID) {
	ref := id
	v.render = &ref
	if sceneID, ok := v.renderScene(id); ok {
		if s, err := v.ctx.Scene(sceneID); err == nil {
			s.RegisterRender()
		}
	}
	v.log.Infof("render %s registered", id)
}

func (v *Viewer) unregisterRender() {
	if v.render != nil {
		v.log.Infof("render %s unregistered", *v.render)
	}
	v.render = nil
}

// renderScene follows render -> camera -> scene.
func (v *Viewer) renderScene(renderID graph.NodeID) (graph.NodeID, bool) {
	cam, _, ok := v.renderCamera(renderID)
	if !ok {
		return graph.NodeID{}, false
	}
	sceneID := cam.Scene.Get()
	if sceneID == nil {
		return graph.NodeID{}, false
	}
	return *sceneID, true
}

func (v *Viewer) renderCamera(renderID graph.NodeID) (*node.CameraNode, graph.NodeID, bool) {
	r, err := v.ctx.Node(renderID)
	if err != nil || !r.IsRender() {
		return nil, graph.NodeID{}, false
	}
	camID := r.Render.Camera.Get()
	if camID == nil {
		return nil, graph.NodeID{}, false
	}
	c, err := v.ctx.Node(*camID)
	if err != nil || c.Kind != node.KindCamera {
		return nil, graph.NodeID{}, false
	}
	return c.Camera, *camID, true
}

// findRender returns the first render node wired into an Output node.
func (v *Viewer) findRender() (graph.NodeID, bool) {
	for _, w := range v.ctx.Graph.Wires() {
		dst, err := v.ctx.Node(w.In.Node)
		if err != nil || dst.Kind != node.KindOutput {
			continue
		}
		if src, err := v.ctx.Node(w.Out.Node); err == nil && src.IsRender() {
			return w.Out.Node, true
		}
	}
	return graph.NodeID{}, false
}

func reverse(wires []graph.Wire) []graph.Wire {
	out := make([]graph.Wire, len(wires))
	for i, w := range wires {
		out[len(wires)-1-i] = w
	}
	return out
}
