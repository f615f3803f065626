package common

import (
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Mat4ToBytes returns the column-major bytes of an mgl32 matrix, matching the WGSL mat4x4<f32> layout.
func Mat4ToBytes(m mgl32.Mat4) []byte {
	return SliceToBytes(m[:])
}

// Radians converts degrees to radians.
func Radians(degrees float32) float32 {
	return degrees * math32.Pi / 180
}

// Clamp restricts v to the closed range [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}

// DirectionFromYawPitch returns the unit view direction for the given yaw and pitch (radians).
// Yaw rotates around +Y starting from +Z; pitch tilts toward +Y.
//
// Parameters:
//   - yaw: horizontal angle in radians
//   - pitch: vertical angle in radians
//
// Returns:
//   - mgl32.Vec3: normalized direction
func DirectionFromYawPitch(yaw, pitch float32) mgl32.Vec3 {
	cp := math32.Cos(pitch)
	return mgl32.Vec3{
		cp * math32.Sin(yaw),
		math32.Sin(pitch),
		cp * math32.Cos(yaw),
	}.Normalize()
}
