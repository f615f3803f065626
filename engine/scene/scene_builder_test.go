package scene

// SceneBuilderOption is a functional option for assembling a Scene by hand.
type SceneBuilderOption func(s *Scene)

// WithSphere appends a sphere referencing an existing material index.
//
// Parameters:
//   - center: sphere center in world space
//   - radius: sphere radius
//   - materialIdx: index into the scene's materials
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSphere(center [3]float32, radius float32, materialIdx uint32) SceneBuilderOption {
	return func(s *Scene) {
		s.Spheres = append(s.Spheres, Sphere{Center: center, Radius: radius, MaterialIdx: materialIdx})
	}
}

// WithMaterial appends a material.
//
// Parameters:
//   - m: the material to append
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMaterial(m Material) SceneBuilderOption {
	return func(s *Scene) {
		s.Materials = append(s.Materials, m)
	}
}

// WithTexture appends a texture.
//
// Parameters:
//   - t: the texture to append
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithTexture(t TextureData) SceneBuilderOption {
	return func(s *Scene) {
		s.Textures = append(s.Textures, t)
	}
}

// New creates a Scene with the given options applied in order.
//
// Parameters:
//   - options: variadic list of SceneBuilderOption functions
//
// Returns:
//   - *Scene: the assembled scene
func New(options ...SceneBuilderOption) *Scene {
	s := &Scene{}
	for _, opt := range options {
		opt(s)
	}
	return s
}
