package decoder

import (
	"errors"
	"fmt"
)

// DecodeError is returned when the bytes of a photograph cannot be decoded.
type DecodeError struct {
	Filename string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode image %q: %v", e.Filename, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

var (
	ErrFastPathUnavailable = errors.New("fast decode path unavailable for this image")
	ErrEmptyImage          = errors.New("decoded image has no pixels")
)
