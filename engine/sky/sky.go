// Package sky builds the analytic daylight sky state consumed by the path tracing kernel.
//
// The sky is the Perez luminance distribution with Preetham's turbidity fits, packed into a
// nine-coefficient-per-channel layout:
//
//	F(θ, γ) = (1 + A·exp(B / (cos θ + 0.01))) · (C + D·exp(E·γ) + F·cos²γ + G·χ(H, γ) + I·√cos θ)
//	L(θ, γ) = F(θ, γ) · R
//
// where θ is the view zenith angle, γ the angle between view and sun and R the per-channel
// radiance. The Perez terms map to A, B, C=1, D, E, F and leave G, H, I at zero.
package sky

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/noded-go/common"
	"github.com/chewxy/math32"
)

// StateSize is the byte size of the GPU sky state.
const StateSize = 144

// albedoGain is the share of ground-reflected light added to the sky radiance at albedo 1.
const albedoGain = 0.12

// Params describes the sun position and atmosphere. Angles are in degrees.
type Params struct {
	Azimuth   float32    `json:"azimuth" toml:"azimuth"`
	Zenith    float32    `json:"zenith" toml:"zenith"`
	Turbidity float32    `json:"turbidity" toml:"turbidity"`
	Albedo    [3]float32 `json:"albedo" toml:"albedo"`
}

// DefaultParams returns a late-afternoon sun in a clear atmosphere.
func DefaultParams() Params {
	return Params{
		Azimuth:   0,
		Zenith:    85,
		Turbidity: 4,
		Albedo:    [3]float32{1, 1, 1},
	}
}

// State is the GPU-ready sky description.
// Size: 144 bytes (params 0..108, radiances 108..120, padding, sun direction at 128).
type State struct {
	Params       [27]float32
	Radiances    [3]float32
	SunDirection [4]float32
}

// New validates p and computes the sky state.
//
// Parameters:
//   - p: sun position and atmosphere
//
// Returns:
//   - State: the packed sky coefficients
//   - error: ErrTurbidityOutOfRange, ErrElevationOutOfRange or ErrAlbedoOutOfRange
func New(p Params) (State, error) {
	if err := p.Validate(); err != nil {
		return State{}, err
	}

	azimuth := common.Radians(p.Azimuth)
	thetaS := common.Radians(p.Zenith)
	t := p.Turbidity

	coeffs := perezLuminance(t)
	zenithRGB := zenithColor(t, thetaS)
	norm := perez(coeffs, 0, thetaS)

	var s State
	for ch := 0; ch < 3; ch++ {
		base := ch * 9
		s.Params[base+0] = coeffs[0]
		s.Params[base+1] = coeffs[1]
		s.Params[base+2] = 1
		s.Params[base+3] = coeffs[2]
		s.Params[base+4] = coeffs[3]
		s.Params[base+5] = coeffs[4]

		s.Radiances[ch] = math32.Max(0, zenithRGB[ch]/norm) * (1 + albedoGain*p.Albedo[ch])
	}

	s.SunDirection = [4]float32{
		math32.Sin(thetaS) * math32.Cos(azimuth),
		math32.Cos(thetaS),
		math32.Sin(thetaS) * math32.Sin(azimuth),
		0,
	}
	return s, nil
}

// Validate checks the atmosphere and sun position ranges.
func (p Params) Validate() error {
	if !(p.Turbidity >= 1 && p.Turbidity <= 10) {
		return fmt.Errorf("%w: %g", ErrTurbidityOutOfRange, p.Turbidity)
	}
	// elevation is 90° - zenith
	if !(p.Zenith >= 0 && p.Zenith <= 90) {
		return fmt.Errorf("%w: %g rad", ErrElevationOutOfRange, common.Radians(90-p.Zenith))
	}
	for i, a := range p.Albedo {
		if !(a >= 0 && a <= 1) {
			return fmt.Errorf("%w: channel %d is %g", ErrAlbedoOutOfRange, i, a)
		}
	}
	return nil
}

// Radiance evaluates the packed model on the CPU, mirroring the kernel.
//
// Parameters:
//   - theta: view zenith angle in radians
//   - gamma: angle between view direction and sun in radians
//
// Returns:
//   - [3]float32: RGB radiance
func (s *State) Radiance(theta, gamma float32) [3]float32 {
	var out [3]float32
	cosTheta := math32.Max(0, math32.Cos(theta))
	cosGamma := math32.Cos(gamma)
	for ch := 0; ch < 3; ch++ {
		c := s.Params[ch*9 : ch*9+9]
		chi := (1 + cosGamma*cosGamma) / math32.Pow(1+c[7]*c[7]-2*c[7]*cosGamma, 1.5)
		first := 1 + c[0]*math32.Exp(c[1]/(cosTheta+0.01))
		second := c[2] + c[3]*math32.Exp(c[4]*gamma) + c[5]*cosGamma*cosGamma + c[6]*chi + c[8]*math32.Sqrt(cosTheta)
		out[ch] = first * second * s.Radiances[ch]
	}
	return out
}

// Marshal serializes the state for GPU upload.
//
// Returns:
//   - []byte: 144-byte buffer
func (s *State) Marshal() []byte {
	buf := make([]byte, StateSize)
	for i, v := range s.Params {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	for i, v := range s.Radiances {
		binary.LittleEndian.PutUint32(buf[108+i*4:], math.Float32bits(v))
	}
	for i, v := range s.SunDirection {
		binary.LittleEndian.PutUint32(buf[128+i*4:], math.Float32bits(v))
	}
	return buf
}

// perezLuminance returns Preetham's A..E luminance coefficients for turbidity t.
func perezLuminance(t float32) [5]float32 {
	return [5]float32{
		0.1787*t - 1.4630,
		-0.3554*t + 0.4275,
		-0.0227*t + 5.3251,
		0.1206*t - 2.5771,
		-0.0670*t + 0.3703,
	}
}

// perez evaluates the five-term Perez distribution with the same epsilon as the kernel.
func perez(c [5]float32, theta, gamma float32) float32 {
	cosGamma := math32.Cos(gamma)
	return (1 + c[0]*math32.Exp(c[1]/(math32.Cos(theta)+0.01))) *
		(1 + c[2]*math32.Exp(c[3]*gamma) + c[4]*cosGamma*cosGamma)
}

// zenithColor returns the linear sRGB colour of the zenith in kcd/m².
func zenithColor(t, thetaS float32) [3]float32 {
	chi := (4.0/9.0 - t/120) * (math32.Pi - 2*thetaS)
	yz := (4.0453*t-4.9710)*math32.Tan(chi) - 0.2155*t + 2.4192

	t2 := t * t
	th := thetaS
	th2 := th * th
	th3 := th2 * th

	xz := t2*(0.00166*th3-0.00375*th2+0.00209*th) +
		t*(-0.02903*th3+0.06377*th2-0.03202*th+0.00394) +
		(0.11693*th3 - 0.21196*th2 + 0.06052*th + 0.25886)
	yzc := t2*(0.00275*th3-0.00610*th2+0.00317*th) +
		t*(-0.04214*th3+0.08970*th2-0.04153*th+0.00516) +
		(0.15346*th3 - 0.26756*th2 + 0.06670*th + 0.26688)

	x := xz / yzc * yz
	z := (1 - xz - yzc) / yzc * yz
	return [3]float32{
		3.2406*x - 1.5372*yz - 0.4986*z,
		-0.9689*x + 1.8758*yz + 0.0415*z,
		0.0557*x - 0.2040*yz + 1.0570*z,
	}
}
