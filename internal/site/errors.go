package site

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownResource = errors.New("site: unknown resource")
	ErrAlreadyStarted  = errors.New("site: service already started")
	ErrNotFound        = errors.New("site: not found")
)

// NotFoundError reports a record missing from a successful response. It is
// never retried.
type NotFoundError struct {
	Resource string
	Ref      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Ref)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Permanent marks the error as not worth retrying.
func (e *NotFoundError) Permanent() bool { return true }

func unknownResource(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownResource, name)
}
