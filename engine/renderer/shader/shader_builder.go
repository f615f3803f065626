package shader

// ShaderBuilderOption is a functional option for configuring a Shader.
type ShaderBuilderOption func(*shader)

// WithPreProcessor sets the pre-processor used to expand includes.
//
// Parameters:
//   - pp: the pre-processor holding the include registry
//
// Returns:
//   - ShaderBuilderOption: option function to apply
func WithPreProcessor(pp PreProcessor) ShaderBuilderOption {
	return func(s *shader) {
		s.pp = pp
	}
}

// WithGroups restricts the parsed bind group layouts to the given group indices.
// Use it when one source serves several stages that bind different groups.
//
// Parameters:
//   - groups: the group indices this stage uses
//
// Returns:
//   - ShaderBuilderOption: option function to apply
func WithGroups(groups ...int) ShaderBuilderOption {
	return func(s *shader) {
		s.groups = groups
	}
}

// WithValidation compiles the pre-processed source with naga before parsing, so WGSL
// errors surface at creation time instead of during pipeline creation.
//
// Parameters:
//   - enabled: whether to validate
//
// Returns:
//   - ShaderBuilderOption: option function to apply
func WithValidation(enabled bool) ShaderBuilderOption {
	return func(s *shader) {
		s.validate = enabled
	}
}
