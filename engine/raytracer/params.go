package raytracer

import (
	"github.com/Carmen-Shannon/noded-go/engine/sky"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera describes the thin-lens camera. Angles are in degrees.
type Camera struct {
	EyePos        mgl32.Vec3 `json:"eye_pos" toml:"eye_pos"`
	EyeDir        mgl32.Vec3 `json:"eye_dir" toml:"eye_dir"`
	Up            mgl32.Vec3 `json:"up" toml:"up"`
	Vfov          float32    `json:"vfov" toml:"vfov"`
	Aperture      float32    `json:"aperture" toml:"aperture"`
	FocusDistance float32    `json:"focus_distance" toml:"focus_distance"`
}

// SamplingParams controls progressive sampling. MaxSamplesPerPixel must be a multiple of
// NumSamplesPerPixel.
type SamplingParams struct {
	MaxSamplesPerPixel uint32 `json:"max_samples_per_pixel" toml:"max_samples_per_pixel"`
	NumSamplesPerPixel uint32 `json:"num_samples_per_pixel" toml:"num_samples_per_pixel"`
	NumBounces         uint32 `json:"num_bounces" toml:"num_bounces"`
}

// DefaultSamplingParams returns 256 samples per pixel, one per frame, with 8 bounces.
func DefaultSamplingParams() SamplingParams {
	return SamplingParams{
		MaxSamplesPerPixel: 256,
		NumSamplesPerPixel: 1,
		NumBounces:         8,
	}
}

// RenderParams is everything the kernel needs besides the scene. Values are comparable so a
// frame can detect unchanged params with ==.
type RenderParams struct {
	Camera       Camera         `json:"camera" toml:"camera"`
	Sky          sky.Params     `json:"sky" toml:"sky"`
	Sampling     SamplingParams `json:"sampling" toml:"sampling"`
	ViewportSize [2]uint32      `json:"viewport_size" toml:"viewport_size"`
}

// DefaultRenderParams returns a camera at (0, 0.5, -5) looking down +Z with default sky and
// sampling, for the given viewport.
func DefaultRenderParams(width, height uint32) RenderParams {
	return RenderParams{
		Camera: Camera{
			EyePos:        mgl32.Vec3{0, 0.5, -5},
			EyeDir:        mgl32.Vec3{0, 0, 1},
			Up:            mgl32.Vec3{0, 1, 0},
			Vfov:          45,
			Aperture:      0,
			FocusDistance: 5,
		},
		Sky:          sky.DefaultParams(),
		Sampling:     DefaultSamplingParams(),
		ViewportSize: [2]uint32{width, height},
	}
}

// Validate checks sampling, camera and sky parameters in that order. The viewport is checked
// separately by the raytracer so params can be validated before a window exists.
//
// Returns:
//   - error: one of the typed validation errors, or nil
func (p RenderParams) Validate() error {
	s := p.Sampling
	if s.NumSamplesPerPixel == 0 || s.MaxSamplesPerPixel%s.NumSamplesPerPixel != 0 {
		return &MaxSampleCountNotMultipleError{Max: s.MaxSamplesPerPixel, Num: s.NumSamplesPerPixel}
	}
	c := p.Camera
	// Checks are written as negated ranges so NaN fails them.
	if !(c.Vfov >= 0 && c.Vfov <= 90) {
		return &VfovOutOfRangeError{Vfov: c.Vfov}
	}
	if !(c.Aperture >= 0 && c.Aperture <= 1) {
		return &ApertureOutOfRangeError{Aperture: c.Aperture}
	}
	if !(c.FocusDistance >= 0) {
		return &FocusDistanceOutOfRangeError{FocusDistance: c.FocusDistance}
	}
	if err := p.Sky.Validate(); err != nil {
		return &SkyModelError{Err: err}
	}
	return nil
}

// ValidateViewport rejects a viewport with a zero dimension.
func (p RenderParams) ValidateViewport() error {
	if p.ViewportSize[0] == 0 || p.ViewportSize[1] == 0 {
		return &ViewportSizeError{Width: p.ViewportSize[0], Height: p.ViewportSize[1]}
	}
	return nil
}
