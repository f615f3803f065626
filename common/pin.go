package common

import "encoding/json"

// Pin is a settable-with-fallback value cell backing every node input.
// Initial holds the user-entered (or default) value and Value holds an override pushed
// from an upstream connection. The effective value is never empty: when no override is
// installed the initial value is returned.
type Pin[T any] struct {
	Initial T
	Value   *T
}

// NewPin creates a Pin with the given initial value and no override.
//
// Parameters:
//   - initial: the user-entered or default value
//
// Returns:
//   - Pin[T]: the new pin
func NewPin[T any](initial T) Pin[T] {
	return Pin[T]{Initial: initial}
}

// Get returns the override when one is installed, otherwise the initial value.
func (p *Pin[T]) Get() T {
	if p.Value != nil {
		return *p.Value
	}
	return p.Initial
}

// AsMut returns a pointer to the value the editor should mutate.
// While connected this is the override, so edits shadow the remote value without
// losing the user's own entry; while unconnected it is the initial value.
//
// Returns:
//   - *T: pointer to the currently effective storage
func (p *Pin[T]) AsMut() *T {
	if p.Value != nil {
		return p.Value
	}
	return &p.Initial
}

// Set installs an override value.
func (p *Pin[T]) Set(v T) {
	p.Value = &v
}

// Reset clears the override, restoring the initial value.
func (p *Pin[T]) Reset() {
	p.Value = nil
}

// IsConnected reports whether an override is installed.
func (p *Pin[T]) IsConnected() bool {
	return p.Value != nil
}

// MarshalJSON persists only the initial value; overrides are rebuilt from wires on load.
func (p Pin[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Initial)
}

func (p *Pin[T]) UnmarshalJSON(data []byte) error {
	p.Value = nil
	return json.Unmarshal(data, &p.Initial)
}
