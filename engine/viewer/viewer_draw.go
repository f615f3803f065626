package viewer

import (
	"github.com/Carmen-Shannon/noded-go/common"
	"github.com/Carmen-Shannon/noded-go/engine/camera"
	"github.com/Carmen-Shannon/noded-go/engine/node"
	"github.com/Carmen-Shannon/noded-go/engine/raytracer"
	"github.com/Carmen-Shannon/noded-go/engine/scene"
)

// Input is one frame of editor input.
type Input struct {
	Camera camera.Input

	// Reload forces every texture to be decoded again.
	Reload bool
}

// Draw renders the registered render node into the current frame. It recompiles the
// scene when its dependencies changed and resubmits the compiled scene until the tracer
// has accepted one. A recompiled scene whose frame failed is submitted again on the next
// frame, as is the scene of a camera rewired to a different Scene node. Nothing is drawn
// when no render is registered, the render has no camera, the camera has no scene, or the
// viewport is empty.
//
// Parameters:
//   - viewport: the area the render covers, in physical pixels
//
// Returns:
//   - error: a compile, validation or GPU error; the frame is skipped
func (v *Viewer) Draw(viewport common.Rect) error {
	v.drainWatcher()

	if v.render == nil || viewport.Empty() {
		return nil
	}
	cam, _, ok := v.renderCamera(*v.render)
	if !ok {
		return nil
	}
	sceneID := cam.Scene.Get()
	if sceneID == nil {
		return nil
	}

	result, err := v.ctx.Recalculate(*sceneID)
	if err != nil {
		v.frameFailed()
		return err
	}
	s, err := v.ctx.Scene(*sceneID)
	if err != nil {
		v.frameFailed()
		return err
	}

	if result == node.Recalculated {
		v.pending = true
		if v.profiler != nil {
			v.profiler.SceneRecompiled()
		}
		v.log.Debugf("scene %s recompiled: %d spheres", *sceneID, len(s.Compiled().Spheres))
	}

	var compiled *scene.Scene
	if v.pending || !v.tracer.SceneReady() || v.uploaded == nil || *v.uploaded != *sceneID {
		compiled = s.Compiled()
	}

	if err := v.tracer.PrepareFrame(v.renderParams(cam, viewport), compiled); err != nil {
		v.frameFailed()
		return err
	}
	if compiled != nil {
		id := *sceneID
		v.uploaded = &id
		v.pending = false
	}
	if err := v.tracer.RenderFrame(); err != nil {
		v.frameFailed()
		return err
	}
	if v.profiler != nil {
		v.profiler.SetProgress(v.tracer.Progress())
	}
	return nil
}

// AfterShow applies the frame's input once the editor has been drawn. Camera input moves
// the camera of the registered render.
//
// Returns:
//   - bool: true when the camera moved
func (v *Viewer) AfterShow(in Input) bool {
	if in.Reload {
		v.reloadTextures()
	}
	if v.render == nil || in.Camera.Idle() {
		return false
	}
	cam, _, ok := v.renderCamera(*v.render)
	if !ok {
		return false
	}
	return v.controller.Update(cam, in.Camera)
}

// renderParams builds the frame's params from the camera node and the settings.
func (v *Viewer) renderParams(cam *node.CameraNode, viewport common.Rect) raytracer.RenderParams {
	forward, up := cam.Orientation()
	return raytracer.RenderParams{
		Camera: raytracer.Camera{
			EyePos:        cam.Position.Get(),
			EyeDir:        forward,
			Up:            up,
			Vfov:          cam.Vfov.Get(),
			Aperture:      cam.Aperture.Get(),
			FocusDistance: cam.FocusDistance.Get(),
		},
		Sky:          v.settings.Sky,
		Sampling:     v.settings.Sampling,
		ViewportSize: viewport.Size(),
	}
}

func (v *Viewer) frameFailed() {
	if v.profiler != nil {
		v.profiler.FrameFailed()
	}
}
