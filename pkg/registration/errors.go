package registration

import (
	"errors"
	"fmt"
)

// ResponseError is returned when the registration endpoint rejects a batch.
// Error returns the message reported by the service without decoration.
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("registration failed with status %d", e.StatusCode)
	}

	return e.Message
}

var (
	ErrEmptyEndpoint = errors.New("registration endpoint is empty")
)
