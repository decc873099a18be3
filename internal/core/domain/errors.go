package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrDuplicateActor       = errors.New("actor already exists")
	ErrActorNotFound        = errors.New("actor not found")
	ErrListingNotFound      = errors.New("listing not found")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrForbidden            = errors.New("access forbidden")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
)

// InsufficientQuantityError is returned when an order asks for more than the
// listing has left. It matches ErrInsufficientQuantity under errors.Is.
type InsufficientQuantityError struct {
	Requested int64
	Available int64
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("insufficient quantity: requested %d, available %d", e.Requested, e.Available)
}

func (e *InsufficientQuantityError) Is(target error) bool {
	return target == ErrInsufficientQuantity
}

// InvalidInputf wraps ErrInvalidInput with a field-level message.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
