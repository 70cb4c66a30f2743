package search

import (
	"errors"
	"fmt"
)

var (
	ErrBlankLocation      = errors.New("search: location is blank")
	ErrNoSession          = errors.New("search: no active session")
	ErrInvalidCoordinates = errors.New("search: invalid coordinate pair")
	ErrTransport          = errors.New("search: transport failure")
)

// StatusError is returned for non-2xx backend replies.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend status %d", e.Status)
	}
	return fmt.Sprintf("backend status %d: %s", e.Status, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrTransport }
