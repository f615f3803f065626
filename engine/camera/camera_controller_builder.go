package camera

// ControllerOption is a functional option for configuring a Controller.
type ControllerOption func(*controllerImpl)

// WithMoveSpeed sets the translation speed.
//
// Parameters:
//   - speed: world units per second
//
// Returns:
//   - ControllerOption: functional option to set the move speed
func WithMoveSpeed(speed float32) ControllerOption {
	return func(c *controllerImpl) {
		c.moveSpeed = speed
	}
}

// WithBoostMultiplier sets the factor applied while boost is held.
//
// Parameters:
//   - multiplier: speed factor
//
// Returns:
//   - ControllerOption: functional option to set the boost multiplier
func WithBoostMultiplier(multiplier float32) ControllerOption {
	return func(c *controllerImpl) {
		c.boostMultiplier = multiplier
	}
}

// WithMouseSensitivity sets the look speed.
//
// Parameters:
//   - sensitivity: degrees per pixel of drag
//
// Returns:
//   - ControllerOption: functional option to set mouse sensitivity
func WithMouseSensitivity(sensitivity float32) ControllerOption {
	return func(c *controllerImpl) {
		c.mouseSensitivity = sensitivity
	}
}

// WithZoomSpeed sets the vfov change per scroll unit.
//
// Parameters:
//   - speed: degrees per scroll step
//
// Returns:
//   - ControllerOption: functional option to set zoom speed
func WithZoomSpeed(speed float32) ControllerOption {
	return func(c *controllerImpl) {
		c.zoomSpeed = speed
	}
}

// WithPitchLimit sets the largest absolute pitch.
func WithPitchLimit(degrees float32) ControllerOption {
	return func(c *controllerImpl) {
		c.pitchLimit = degrees
	}
}

// WithVfovBounds sets the allowed vertical field of view range.
//
// Parameters:
//   - min: smallest vfov in degrees
//   - max: largest vfov in degrees
//
// Returns:
//   - ControllerOption: functional option to set vfov bounds
func WithVfovBounds(min, max float32) ControllerOption {
	return func(c *controllerImpl) {
		c.minVfov = min
		c.maxVfov = max
	}
}
