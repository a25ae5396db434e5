// Package scaleerrors defines sentinel failure kinds. pkg/execconfig wraps
// ErrInvalidMetadata; the scheduler and vault packages return plain
// errors and use none of these kinds. Callers wrap
// these with fmt.Errorf("...: %w", ...) to add context while keeping the
// kind matchable with errors.Is.
package scaleerrors
