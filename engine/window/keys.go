package window

import "github.com/go-gl/glfw/v3.3/glfw"

// Key identifies a keyboard key. Values are GLFW key codes.
type Key uint32

const (
	KeyW         = Key(glfw.KeyW)
	KeyA         = Key(glfw.KeyA)
	KeyS         = Key(glfw.KeyS)
	KeyD         = Key(glfw.KeyD)
	KeyQ         = Key(glfw.KeyQ)
	KeyE         = Key(glfw.KeyE)
	KeyLeftShift = Key(glfw.KeyLeftShift)
	KeyEscape    = Key(glfw.KeyEscape)
	KeyF5        = Key(glfw.KeyF5)
)

// MouseButton identifies a mouse button.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle

	mouseButtonCount
)

func mouseButtonFromGLFW(b glfw.MouseButton) (MouseButton, bool) {
	switch b {
	case glfw.MouseButtonLeft:
		return MouseButtonLeft, true
	case glfw.MouseButtonRight:
		return MouseButtonRight, true
	case glfw.MouseButtonMiddle:
		return MouseButtonMiddle, true
	default:
		return 0, false
	}
}
