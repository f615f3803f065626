package sky

import "errors"

var (
	ErrTurbidityOutOfRange = errors.New("turbidity must be between 1 and 10")
	ErrElevationOutOfRange = errors.New("sun elevation must be between 0 and pi/2")
	ErrAlbedoOutOfRange    = errors.New("albedo must be between 0 and 1")
)
