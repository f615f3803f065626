package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Carmen-Shannon/noded-go/common"
	"github.com/Carmen-Shannon/noded-go/engine/camera"
	"github.com/Carmen-Shannon/noded-go/engine/logger"
	"github.com/Carmen-Shannon/noded-go/engine/profiler"
	"github.com/Carmen-Shannon/noded-go/engine/viewer"
	"github.com/Carmen-Shannon/noded-go/engine/window"
)

var log = logger.New("engine")

// ErrMissingComponent is returned by Run when the window, renderer or viewer is not set.
var ErrMissingComponent = errors.New("engine requires a window, a renderer and a viewer")

// FrameRenderer owns the frame lifecycle around the viewer's draw. renderer.Renderer
// implements it.
type FrameRenderer interface {
	BeginFrame() error
	EndFrame()
	Present()
	Resize(width, height int)
}

// engine implements the Engine interface.
// Everything runs on the thread that calls Run, which must own the window.
type engine struct {
	quitChannel chan struct{}
	quitOnce    sync.Once

	window   window.Window
	renderer FrameRenderer
	viewer   *viewer.Viewer

	profiler         *profiler.Profiler
	profilingEnabled bool

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	autosave         bool

	lastFrame time.Time
	reload    bool
	lastErr   string
}

// Engine is the main entry point for the application.
// It drives the frame loop: poll the window, apply input to the viewer, draw the viewer
// inside the renderer's frame, and tick the profiler.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Viewer returns the viewer drawn each frame.
	Viewer() *viewer.Viewer

	// Profiler returns the frame profiler.
	Profiler() *profiler.Profiler

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run processes window messages and renders frames until the window closes, Quit is
	// called or ctx is cancelled. With autosave enabled the viewer is saved on exit.
	//
	// Parameters:
	//   - ctx: cancelling it closes the window
	//
	// Returns:
	//   - error: ErrMissingComponent, or an error from the final save
	Run(ctx context.Context) error

	// Quit closes the window at the start of the next frame.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (window, renderer, viewer, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		quitChannel: make(chan struct{}),
		profiler:    profiler.NewProfiler(),
	}

	for _, opt := range options {
		opt(e)
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Viewer() *viewer.Viewer {
	return e.viewer
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) Run(ctx context.Context) error {
	if e.window == nil || e.renderer == nil || e.viewer == nil {
		return ErrMissingComponent
	}

	e.window.SetResizeCallback(func(width, height int) {
		e.renderer.Resize(width, height)
	})
	e.window.SetKeyDownCallback(func(key window.Key) {
		switch key {
		case window.KeyEscape:
			e.Quit()
		case window.KeyF5:
			e.reload = true
		}
	})
	e.window.SetUpdateCallback(func() {
		select {
		case <-ctx.Done():
			e.Quit()
		default:
		}
		if e.quitting() {
			if err := e.window.Close(); err != nil {
				log.Warningf("failed to close window: %v", err)
			}
			return
		}
		e.frame()
	})

	e.lastFrame = time.Now()
	e.window.ProcessMessages()
	e.Quit()

	if e.autosave {
		return e.viewer.Save()
	}
	return nil
}

// Quit signals the frame loop to close the window.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) quitting() bool {
	select {
	case <-e.quitChannel:
		return true
	default:
		return false
	}
}

// frame runs one iteration of the frame loop.
func (e *engine) frame() {
	now := time.Now()
	dt := float32(now.Sub(e.lastFrame).Seconds())
	e.lastFrame = now

	in := inputFromWindow(e.window.Input(), dt)
	in.Reload, e.reload = e.reload, false
	e.viewer.AfterShow(in)

	if err := e.renderer.BeginFrame(); err != nil {
		e.report(err)
		return
	}
	viewport := common.Rect{Width: float32(e.window.Width()), Height: float32(e.window.Height())}
	e.report(e.viewer.Draw(viewport))
	e.renderer.EndFrame()
	e.renderer.Present()

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(now); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// report logs a frame error once until a different error (or none) occurs.
func (e *engine) report(err error) {
	if err == nil {
		e.lastErr = ""
		return
	}
	if msg := err.Error(); msg != e.lastErr {
		e.lastErr = msg
		log.Errorf("frame skipped: %v", err)
	}
}

// inputFromWindow maps the window's input snapshot to viewer input: W/S move forward and
// back, A/D strafe, E/Q rise and sink, shift boosts, left-drag looks and the wheel zooms.
func inputFromWindow(s window.InputState, dt float32) viewer.Input {
	return viewer.Input{
		Camera: camera.Input{
			Forward:    s.KeyDown(window.KeyW),
			Back:       s.KeyDown(window.KeyS),
			Left:       s.KeyDown(window.KeyA),
			Right:      s.KeyDown(window.KeyD),
			Up:         s.KeyDown(window.KeyE),
			Down:       s.KeyDown(window.KeyQ),
			Boost:      s.KeyDown(window.KeyLeftShift),
			Dragging:   s.ButtonDown(window.MouseButtonLeft),
			MouseDelta: s.CursorDelta,
			Scroll:     s.Scroll,
			Dt:         dt,
		},
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
