package raytracer

// RenderProgress tracks how many samples per pixel have been accumulated since the last reset.
type RenderProgress struct {
	accumulatedSamplesPerPixel uint32
}

// NextFrame advances the accumulator and returns the sampling uniform for the frame.
// The first frame after a reset clears the image buffer. Once the max is reached the frame
// requests zero samples and the accumulated count holds.
//
// Parameters:
//   - s: the current sampling params
//
// Returns:
//   - GPUSamplingParams: the uniform for this frame
func (p *RenderProgress) NextFrame(s SamplingParams) GPUSamplingParams {
	current := p.accumulatedSamplesPerPixel
	next := current + s.NumSamplesPerPixel

	var out GPUSamplingParams
	switch {
	case current == 0:
		out = GPUSamplingParams{
			NumSamplesPerPixel:         s.NumSamplesPerPixel,
			NumBounces:                 s.NumBounces,
			AccumulatedSamplesPerPixel: s.NumSamplesPerPixel,
			ClearAccumulatedSamples:    1,
		}
	case next <= s.MaxSamplesPerPixel:
		out = GPUSamplingParams{
			NumSamplesPerPixel:         s.NumSamplesPerPixel,
			NumBounces:                 s.NumBounces,
			AccumulatedSamplesPerPixel: next,
		}
	default:
		out = GPUSamplingParams{
			NumBounces:                 s.NumBounces,
			AccumulatedSamplesPerPixel: current,
		}
	}
	p.accumulatedSamplesPerPixel = out.AccumulatedSamplesPerPixel
	return out
}

// Reset restarts accumulation on the next frame.
func (p *RenderProgress) Reset() {
	p.accumulatedSamplesPerPixel = 0
}

// Accumulated returns the samples per pixel accumulated so far.
func (p *RenderProgress) Accumulated() uint32 {
	return p.accumulatedSamplesPerPixel
}

// Progress returns the accumulated fraction of maxSamples in [0, 1].
func (p *RenderProgress) Progress(maxSamples uint32) float32 {
	if maxSamples == 0 {
		return 0
	}
	return float32(p.accumulatedSamplesPerPixel) / float32(maxSamples)
}
