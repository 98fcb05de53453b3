package animation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a call receives a value it can never accept:
	// a nil timeline, a negative or non-finite weight, an unsupported loop behavior.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIndexOutOfRange is returned for entry indices outside the blend group. It wraps
	// ErrInvalidArgument.
	ErrIndexOutOfRange = fmt.Errorf("%w: index out of range", ErrInvalidArgument)

	// ErrInvalidOperation is returned when a call is valid in itself but not in the current
	// state: mutating a blend group while a playback instance is attached, or evaluating a
	// blend animation that was never attached to a group.
	ErrInvalidOperation = errors.New("invalid operation")
)
