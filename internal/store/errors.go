package store

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches a 404 from the remote collection.
var ErrNotFound = errors.New("anime not found")

// StatusError is a non-2xx answer from the remote collection.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: http %d: %s", e.Op, e.Code, e.Body)
	}
	return fmt.Sprintf("%s: http %d", e.Op, e.Code)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}
