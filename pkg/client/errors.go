package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFunction is returned when calling a function the module does
	// not declare.
	ErrUnknownFunction = errors.New("client: unknown function")

	// ErrBadDefinition is returned by NewRemote when the server's definition
	// is not a map of names to parameter lists.
	ErrBadDefinition = errors.New("client: malformed definition")

	// ErrResponseTooLarge is returned when a response body exceeds the
	// client's read limit.
	ErrResponseTooLarge = errors.New("client: response too large")
)

// StatusError reports a response with a non-2xx status.
type StatusError struct {
	Code int
	URL  string
	Body []byte
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("client: %s: status %d", e.URL, e.Code)
	if len(e.Body) > 0 {
		msg += ": " + string(e.Body)
	}
	return msg
}
