package common

// Color is a linear RGB triple. Components may exceed 1 for emissive colors.
type Color [3]float32

var (
	ColorBlack     = Color{0, 0, 0}
	ColorWhite     = Color{1, 1, 1}
	ColorLightGray = Color{0.627, 0.627, 0.627}
	ColorGray      = Color{0.5, 0.5, 0.5}
	ColorMagenta   = Color{1, 0, 1}
)

// Scale returns the color multiplied component-wise by s.
func (c Color) Scale(s float32) Color {
	return Color{c[0] * s, c[1] * s, c[2] * s}
}
