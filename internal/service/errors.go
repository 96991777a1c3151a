package service

import (
	"errors"
	"fmt"

	"focal/internal/repository"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	// ErrNoOccurrence means the task's rule places nothing on the requested day.
	ErrNoOccurrence = errors.New("task does not occur on that day")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// translate maps repository lookups onto service errors.
func translate(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
