// Package repository defines error types that are reused across multiple
// repositories. These values allow higher layers such as handlers to
// distinguish between different failure scenarios without knowing which
// document store backend is in use.
package repository

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
)

// ErrNotFound is returned when the requested identifier does not exist in
// the target collection. Handlers should translate this into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when creating or updating a user would give
// two users the same email. Handlers should translate this into HTTP 409.
var ErrDuplicateEmail = errors.New("email already exists")

// ErrUserNotFound is returned when a required single-user reference
// (activity or leaderboard owner) does not resolve.
var ErrUserNotFound = errors.New("user not found")

// ValidationError reports malformed input: a missing required field, a
// value of the wrong shape, or one that breaks a field limit.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// StorageFailure wraps any document store error other than "not found".
// The core does not interpret or retry it.
type StorageFailure struct {
	Op  string
	Err error
}

func (e *StorageFailure) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageFailure) Unwrap() error { return e.Err }

func storageFailure(op string, err error) error {
	log.Error("storage failure", "op", op, "error", err)
	return &StorageFailure{Op: op, Err: err}
}

var validate = newValidator()

// newValidator reports fields by their json names so errors line up with
// what clients sent.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateInput runs struct tag validation and reports the first failing
// field as a ValidationError named after its json tag.
func validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Field: fe.Field(), Reason: reasonFor(fe)}
	}
	return &ValidationError{Reason: err.Error()}
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gte":
		return "must not be negative"
	}
	return "is invalid"
}
