package remote

import "fmt"

// SerializationError is returned when part of a call can't be encoded, or an
// encoded call can't be decoded. Nothing is launched when encoding fails.
type SerializationError struct {
	// One of "op", "args", "kwargs" or "code".
	Part string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("cannot serialize %s: %v", e.Part, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// UnknownOperationError is returned when a call names an operation that is
// not registered.
type UnknownOperationError struct {
	Op string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown remote operation %q", e.Op)
}
