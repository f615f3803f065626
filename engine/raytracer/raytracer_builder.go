package raytracer

// RaytracerBuilderOption is a functional option for configuring a Raytracer.
type RaytracerBuilderOption func(*Raytracer)

// WithMaxViewportResolution sets the pixel capacity of the accumulation buffer.
//
// Parameters:
//   - pixels: the largest width*height the raytracer will render
//
// Returns:
//   - RaytracerBuilderOption: option function to apply
func WithMaxViewportResolution(pixels uint32) RaytracerBuilderOption {
	return func(r *Raytracer) {
		if pixels > 0 {
			r.maxViewportResolution = pixels
		}
	}
}

// WithShaderValidation compiles the kernel with naga before creating the pipeline.
func WithShaderValidation(enabled bool) RaytracerBuilderOption {
	return func(r *Raytracer) {
		r.validateShaders = enabled
	}
}

// WithInitialParams applies params during construction.
//
// Parameters:
//   - params: the initial render params
//
// Returns:
//   - RaytracerBuilderOption: option function to apply
func WithInitialParams(params RenderParams) RaytracerBuilderOption {
	return func(r *Raytracer) {
		r.initialParams = &params
	}
}
