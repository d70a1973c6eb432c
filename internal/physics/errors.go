package physics

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidShape indicates non-positive or non-finite geometry.
	ErrInvalidShape = errors.New("physics: invalid shape")

	// ErrInvalidMass indicates a dynamic body without positive mass.
	ErrInvalidMass = errors.New("physics: invalid mass")

	// ErrUnknownBody indicates a handle this world never issued.
	ErrUnknownBody = errors.New("physics: unknown body")

	// ErrInvalidConfig indicates solver settings that cannot be used.
	ErrInvalidConfig = errors.New("physics: invalid config")
)

// BodyError carries the operation and the offending parameter.
type BodyError struct {
	Op      string
	Param   string
	Value   any
	Wrapped error
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("%v (%s: %s=%v)", e.Wrapped, e.Op, e.Param, e.Value)
}

func (e *BodyError) Unwrap() error {
	return e.Wrapped
}
