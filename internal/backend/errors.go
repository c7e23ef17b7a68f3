package backend

import (
	"errors"
	"fmt"
)

// ErrTransport marks failures to reach the backend or read its reply.
var ErrTransport = errors.New("backend transport error")

// BusinessError is a reply with success=false. Message is shown to the user
// verbatim.
type BusinessError struct {
	Operation string
	Status    int
	Message   string
}

func (e *BusinessError) Error() string {
	return fmt.Sprintf("%s rejected (status %d): %s", e.Operation, e.Status, e.Message)
}

func (e *BusinessError) PublicMessage() string { return e.Message }

func transportErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
}
