package raytracer

import (
	"errors"
	"fmt"
)

var (
	ErrSampleCountNotMultiple  = errors.New("max sample count is not a multiple of the per-frame sample count")
	ErrViewportSizeZero        = errors.New("viewport size is zero")
	ErrVfovOutOfRange          = errors.New("vertical field of view out of range")
	ErrApertureOutOfRange      = errors.New("aperture out of range")
	ErrFocusDistanceOutOfRange = errors.New("focus distance out of range")
	ErrSkyModel                = errors.New("invalid sky model")
	ErrNoBackend               = errors.New("raytracer requires a backend")
)

// MaxSampleCountNotMultipleError reports sampling params where the frame sample count does
// not evenly divide the max sample count.
type MaxSampleCountNotMultipleError struct {
	Max uint32
	Num uint32
}

func (e *MaxSampleCountNotMultipleError) Error() string {
	return fmt.Sprintf("max sample count (%d) is not a multiple of the sample count per frame (%d)", e.Max, e.Num)
}

func (e *MaxSampleCountNotMultipleError) Is(target error) bool {
	return target == ErrSampleCountNotMultiple
}

// ViewportSizeError reports a viewport with a zero dimension.
type ViewportSizeError struct {
	Width  uint32
	Height uint32
}

func (e *ViewportSizeError) Error() string {
	return fmt.Sprintf("viewport size (%d, %d) contains a zero dimension", e.Width, e.Height)
}

func (e *ViewportSizeError) Is(target error) bool {
	return target == ErrViewportSizeZero
}

type VfovOutOfRangeError struct {
	Vfov float32
}

func (e *VfovOutOfRangeError) Error() string {
	return fmt.Sprintf("vfov must be between 0.0 and 90.0, got %g", e.Vfov)
}

func (e *VfovOutOfRangeError) Is(target error) bool {
	return target == ErrVfovOutOfRange
}

type ApertureOutOfRangeError struct {
	Aperture float32
}

func (e *ApertureOutOfRangeError) Error() string {
	return fmt.Sprintf("aperture must be between 0.0 and 1.0, got %g", e.Aperture)
}

func (e *ApertureOutOfRangeError) Is(target error) bool {
	return target == ErrApertureOutOfRange
}

type FocusDistanceOutOfRangeError struct {
	FocusDistance float32
}

func (e *FocusDistanceOutOfRangeError) Error() string {
	return fmt.Sprintf("focus distance must be positive, got %g", e.FocusDistance)
}

func (e *FocusDistanceOutOfRangeError) Is(target error) bool {
	return target == ErrFocusDistanceOutOfRange
}

// SkyModelError wraps a validation error from the sky package.
type SkyModelError struct {
	Err error
}

func (e *SkyModelError) Error() string {
	return fmt.Sprintf("sky model: %v", e.Err)
}

func (e *SkyModelError) Is(target error) bool {
	return target == ErrSkyModel
}

func (e *SkyModelError) Unwrap() error {
	return e.Err
}
