package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrStockUnavailable = errors.New("stock unavailable")
	ErrUnauthenticated  = errors.New("not authenticated")
)

// Invalid wraps ErrValidation with a caller-facing reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFound(kind string, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}
