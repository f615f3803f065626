package sky

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/noded-go/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParamsAreValid(t *testing.T) {
	s, err := New(DefaultParams())
	require.NoError(t, err)
	for _, r := range s.Radiances {
		assert.Greater(t, r, float32(0))
	}
}

func TestValidateRanges(t *testing.T) {
	p := DefaultParams()
	p.Turbidity = 0.5
	_, err := New(p)
	assert.ErrorIs(t, err, ErrTurbidityOutOfRange)

	p = DefaultParams()
	p.Zenith = 95
	_, err = New(p)
	assert.ErrorIs(t, err, ErrElevationOutOfRange)

	p = DefaultParams()
	p.Zenith = -1
	assert.ErrorIs(t, p.Validate(), ErrElevationOutOfRange)

	p = DefaultParams()
	p.Albedo[2] = 1.5
	assert.ErrorIs(t, p.Validate(), ErrAlbedoOutOfRange)

	nan := float32(math.NaN())
	p = DefaultParams()
	p.Zenith = nan
	assert.ErrorIs(t, p.Validate(), ErrElevationOutOfRange)
	p = DefaultParams()
	p.Albedo[0] = nan
	assert.ErrorIs(t, p.Validate(), ErrAlbedoOutOfRange)
}

func TestSunDirection(t *testing.T) {
	p := DefaultParams()
	p.Zenith = 0
	s, err := New(p)
	require.NoError(t, err)
	assert.InDelta(t, 0, s.SunDirection[0], 1e-6)
	assert.InDelta(t, 1, s.SunDirection[1], 1e-6)

	p.Zenith = 90
	p.Azimuth = 90
	s, err = New(p)
	require.NoError(t, err)
	assert.InDelta(t, 0, s.SunDirection[0], 1e-6)
	assert.InDelta(t, 0, s.SunDirection[1], 1e-6)
	assert.InDelta(t, 1, s.SunDirection[2], 1e-6)
}

func TestZenithRadianceMatchesZenithColor(t *testing.T) {
	p := DefaultParams()
	p.Albedo = [3]float32{}
	s, err := New(p)
	require.NoError(t, err)

	thetaS := common.Radians(p.Zenith)
	want := zenithColor(p.Turbidity, thetaS)
	got := s.Radiance(0, thetaS)
	for ch := 0; ch < 3; ch++ {
		assert.InDelta(t, want[ch], got[ch], 1e-3*math.Abs(float64(want[ch]))+1e-5)
	}
}

func TestRadianceBrightensTowardSun(t *testing.T) {
	s, err := New(DefaultParams())
	require.NoError(t, err)

	nearSun := s.Radiance(common.Radians(80), common.Radians(5))
	awayFromSun := s.Radiance(common.Radians(80), common.Radians(150))
	assert.Greater(t, nearSun[1], awayFromSun[1])
}

func TestMarshalLayout(t *testing.T) {
	s, err := New(DefaultParams())
	require.NoError(t, err)

	buf := s.Marshal()
	require.Len(t, buf, StateSize)
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[2*4:])))
	assert.Equal(t, s.Radiances[0], math.Float32frombits(binary.LittleEndian.Uint32(buf[108:])))
	assert.Equal(t, s.SunDirection[1], math.Float32frombits(binary.LittleEndian.Uint32(buf[132:])))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[120:]))
}
