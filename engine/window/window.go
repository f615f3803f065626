// Package window wraps the platform window that hosts the viewer: it owns the event loop,
// exposes the surface the renderer draws into and accumulates input between frames.
package window

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event handling.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving the vertical scroll delta (positive = up)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press and repeat events.
	//
	// Parameters:
	//   - callback: function receiving the key
	SetKeyDownCallback(callback func(key Key))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the key
	SetKeyUpCallback(callback func(key Key))

	// SetMouseButtonCallback sets the callback for mouse button presses and releases.
	//
	// Parameters:
	//   - callback: function receiving the button, whether it was pressed, and the cursor position
	SetMouseButtonCallback(callback func(button MouseButton, pressed bool, x, y int32))

	// SetMouseMoveCallback sets the callback for mouse movement.
	//
	// Parameters:
	//   - callback: function receiving mouse x, y position
	SetMouseMoveCallback(callback func(x, y int32))

	// Input returns the input accumulated since the previous call and clears its deltas.
	// Held keys and buttons carry over.
	//
	// Returns:
	//   - InputState: the input snapshot
	Input() InputState

	// SetTitle changes the title bar text.
	SetTitle(title string)

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls the update callback each iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int
}

// InputState is a snapshot of keyboard and mouse input.
type InputState struct {
	keys map[Key]bool

	Buttons     [mouseButtonCount]bool
	Cursor      [2]float32
	CursorDelta [2]float32
	Scroll      float32
}

// NewInputState builds a snapshot with the given keys held, for callers that synthesise
// input such as replays and tests.
func NewInputState(keys ...Key) InputState {
	s := InputState{keys: make(map[Key]bool, len(keys))}
	for _, k := range keys {
		s.keys[k] = true
	}
	return s
}

// KeyDown reports whether key was held when the snapshot was taken.
func (s InputState) KeyDown(key Key) bool {
	return s.keys[key]
}

// ButtonDown reports whether button was held when the snapshot was taken.
func (s InputState) ButtonDown(button MouseButton) bool {
	if button < 0 || button >= mouseButtonCount {
		return false
	}
	return s.Buttons[button]
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, event callbacks and the input accumulator.
type engineWindow struct {
	title string

	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int

	// width and height are the framebuffer size in pixels.
	width  int
	height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onUpdate      func()
	onResize      func(width, height int)
	onScroll      func(delta float32)
	onKeyDown     func(key Key)
	onKeyUp       func(key Key)
	onMouseButton func(button MouseButton, pressed bool, x, y int32)
	onMouseMove   func(x, y int32)

	inputMu    sync.Mutex
	input      InputState
	haveCursor bool
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
//   - error: an error if the platform window cannot be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:     "noded",
		maxWidth:  3840,
		maxHeight: 2160,
		minWidth:  320,
		minHeight: 200,
		width:     1280,
		height:    720,
		input:     InputState{keys: make(map[Key]bool)},
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(key Key)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(key Key)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetMouseButtonCallback(callback func(button MouseButton, pressed bool, x, y int32)) {
	w.onMouseButton = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y int32)) {
	w.onMouseMove = callback
}

func (w *engineWindow) Input() InputState {
	w.inputMu.Lock()
	defer w.inputMu.Unlock()

	snapshot := w.input
	snapshot.keys = make(map[Key]bool, len(w.input.keys))
	for k, down := range w.input.keys {
		snapshot.keys[k] = down
	}
	w.input.CursorDelta = [2]float32{}
	w.input.Scroll = 0
	return snapshot
}

func (w *engineWindow) SetTitle(title string) {
	w.title = title
	platformSetTitle(w, title)
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// --- event handlers shared by the platform callbacks ---

func (w *engineWindow) handleKey(key Key, pressed bool) {
	w.inputMu.Lock()
	w.input.keys[key] = pressed
	w.inputMu.Unlock()

	if pressed && w.onKeyDown != nil {
		w.onKeyDown(key)
	}
	if !pressed && w.onKeyUp != nil {
		w.onKeyUp(key)
	}
}

func (w *engineWindow) handleMouseButton(button MouseButton, pressed bool) {
	w.inputMu.Lock()
	if button >= 0 && button < mouseButtonCount {
		w.input.Buttons[button] = pressed
	}
	x, y := w.input.Cursor[0], w.input.Cursor[1]
	w.inputMu.Unlock()

	if w.onMouseButton != nil {
		w.onMouseButton(button, pressed, int32(x), int32(y))
	}
}

func (w *engineWindow) handleCursor(x, y float32) {
	w.inputMu.Lock()
	if w.haveCursor {
		w.input.CursorDelta[0] += x - w.input.Cursor[0]
		w.input.CursorDelta[1] += y - w.input.Cursor[1]
	}
	w.input.Cursor = [2]float32{x, y}
	w.haveCursor = true
	w.inputMu.Unlock()

	if w.onMouseMove != nil {
		w.onMouseMove(int32(x), int32(y))
	}
}

func (w *engineWindow) handleScroll(delta float32) {
	w.inputMu.Lock()
	w.input.Scroll += delta
	w.inputMu.Unlock()

	if w.onScroll != nil {
		w.onScroll(delta)
	}
}

func (w *engineWindow) handleResize(width, height int) {
	w.width = width
	w.height = height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}
