package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrValidationFailed matches any *ValidationError via errors.Is.
	ErrValidationFailed = errors.New("validation failed")
	// ErrStoreUnavailable is returned when the underlying persistence cannot be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError aggregates every input problem of a request, keyed by field.
type ValidationError struct {
	Fields map[string][]string `json:"errors"`
}

// Add records msg against field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}

	e.Fields[field] = append(e.Fields[field], msg)
}

// Err returns e if any problem was recorded, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}

	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}

	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e.Fields[field], ", "))
	}

	return ErrValidationFailed.Error() + ": " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidationFailed) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
