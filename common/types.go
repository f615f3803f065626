package common

// Rect is an axis-aligned screen rectangle in physical pixels.
type Rect struct {
	X      float32
	Y      float32
	Width  float32
	Height float32
}

// Size returns the rectangle dimensions rounded down to whole pixels.
// Negative extents collapse to zero.
//
// Returns:
//   - [2]uint32: width and height in pixels
func (r Rect) Size() [2]uint32 {
	w, h := r.Width, r.Height
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return [2]uint32{uint32(w), uint32(h)}
}

// Empty reports whether either dimension is zero.
func (r Rect) Empty() bool {
	s := r.Size()
	return s[0] == 0 || s[1] == 0
}
