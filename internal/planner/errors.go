package planner

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound: the referenced party, item, participant or user is absent.
	ErrNotFound = errors.New("not found")
	// ErrForbidden: the actor is authenticated but not authorized.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict: the mutation collides with existing state.
	ErrConflict = errors.New("conflict")
)

// ValidationError carries field-level messages for malformed input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func notFound(resource string) error {
	return fmt.Errorf("%s: %w", resource, ErrNotFound)
}

func forbidden(action string) error {
	return fmt.Errorf("%s: %w", action, ErrForbidden)
}
