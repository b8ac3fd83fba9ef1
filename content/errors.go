package content

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSlugRequired   = errors.New("content: slug is required")
	ErrSlugDerivation = errors.New("content: slug could not be derived")
	ErrSlugConflict   = errors.New("content: slug conflict")
	ErrUnknownType    = errors.New("content: unknown content type")
)

// SlugConflictError reports two records competing for the same output slug.
type SlugConflictError struct {
	Slug     string
	Type     Type
	Existing Type
}

func (e *SlugConflictError) Error() string {
	if e == nil {
		return ErrSlugConflict.Error()
	}
	slug := strings.TrimSpace(e.Slug)
	if slug == "" {
		return ErrSlugConflict.Error()
	}
	if e.Existing != "" {
		return fmt.Sprintf("%s: slug=%s type=%s existing=%s", ErrSlugConflict.Error(), slug, e.Type, e.Existing)
	}
	return fmt.Sprintf("%s: slug=%s", ErrSlugConflict.Error(), slug)
}

func (e *SlugConflictError) Unwrap() error {
	return ErrSlugConflict
}
