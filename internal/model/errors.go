package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidScope means the parent project or list is missing, or the
	// operation is not allowed across the given scopes.
	ErrInvalidScope = errors.New("invalid scope")

	// ErrInvalidPosition means a target position lies outside the scope.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrTaskDone is returned when a timer is requested on a completed task.
	ErrTaskDone = errors.New("task is done")

	// ErrEmptyName is returned when a name is blank after trimming.
	ErrEmptyName = errors.New("name must not be empty")

	// ErrUndoExpired means an undo token is unknown or its task was purged.
	ErrUndoExpired = errors.New("undo token unknown or expired")
)

// NotFoundError reports a missing entity
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Kind, e.ID)
}

// IsNotFound reports whether err wraps a NotFoundError
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
