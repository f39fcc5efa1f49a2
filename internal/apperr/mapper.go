package apperr

import (
	"errors"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/validation"
)

// FromPersistence turns a persistence failure into a client-facing error.
// Uniqueness and validation failures become UnprocessableEntity; every other
// error is internal and its detail is withheld.
func FromPersistence(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var unique *repository.UniqueViolationError
	if errors.As(err, &unique) {
		return &Error{
			Kind:    KindUnprocessable,
			Message: "Unique value violated: " + strings.Join(unique.Fields, ", "),
			Err:     err,
		}
	}

	var invalid validation.Errors
	if errors.As(err, &invalid) {
		return &Error{
			Kind:    KindUnprocessable,
			Message: "Failed Validations: " + strings.Join(invalid.Messages(), ", "),
			Err:     err,
		}
	}

	return Internal(err)
}
