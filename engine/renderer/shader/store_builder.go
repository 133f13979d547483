package shader

// StoreBuilderOption is a functional option for configuring a Store.
type StoreBuilderOption func(*store)

// WithCompiler sets the compiler used to turn validated source into a GPU module.
// Without one, loaded shaders carry reflection data only.
//
// Parameters:
//   - c: the compiler, normally the renderer
//
// Returns:
//   - StoreBuilderOption: option function to apply
func WithCompiler(c Compiler) StoreBuilderOption {
	return func(s *store) {
		s.compiler = c
	}
}

// WithValidation enables or disables the naga front-end check that runs before compilation.
//
// Parameters:
//   - enabled: true to validate (default)
//
// Returns:
//   - StoreBuilderOption: option function to apply
func WithValidation(enabled bool) StoreBuilderOption {
	return func(s *store) {
		s.validate = enabled
	}
}
