package service

import (
	"errors"
	"fmt"
)

// NotFoundError identifies a missing issue, project, user, or state by the
// key that failed to resolve.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

func notFound(kind, key string) error {
	return &NotFoundError{Kind: kind, Key: key}
}

// ValidationError reports an empty or invalid argument.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
