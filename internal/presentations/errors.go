package presentations

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPresentationRequired = errors.New("presentations: presentation id required")
	ErrValidation           = errors.New("presentations: validation failed")
	ErrSlideIndexInvalid    = errors.New("presentations: slide index out of range")
	ErrVersioningDisabled   = errors.New("presentations: versioning feature disabled")
	ErrVersionRequired      = errors.New("presentations: version identifier required")
	ErrSnapshotInvalid      = errors.New("presentations: version snapshot failed schema validation")
)

// NotFoundError represents missing records from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// ValidationError reports one or more field-level validation failures.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// SlideIndexError reports a slide edit aimed outside the deck.
type SlideIndexError struct {
	Index      int
	SlideCount int
}

func (e *SlideIndexError) Error() string {
	return fmt.Sprintf("%s: index=%d count=%d", ErrSlideIndexInvalid.Error(), e.Index, e.SlideCount)
}

func (e *SlideIndexError) Unwrap() error {
	return ErrSlideIndexInvalid
}

// IsNotFound reports whether err is a missing-record lookup result.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
