package internal

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrValidation marks input rejected before it reaches a store.
	ErrValidation = errors.New("validation failed")
	// ErrAuth marks a rejected credential or a missing session.
	ErrAuth = errors.New("not authenticated")
	// ErrStore marks a failed persistence call.
	ErrStore = errors.New("store request failed")
	// ErrNotFound marks an operation on a record that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a unique constraint violation such as a taken username.
	ErrConflict = errors.New("already exists")
)

type ValidationError struct {
	Fields []string
	Reason string
}

func NewValidationError(reason string, fields ...string) *ValidationError {
	return &ValidationError{Fields: fields, Reason: reason}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s (%s)", e.Reason, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type AuthError struct {
	Cause error
}

func (e *AuthError) Error() string {
	if e.Cause == nil {
		return ErrAuth.Error()
	}
	return "auth: " + e.Cause.Error()
}

func (e *AuthError) Is(target error) bool { return target == ErrAuth }
func (e *AuthError) Unwrap() error        { return e.Cause }

type StoreError struct {
	Op    string
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Cause)
}

func (e *StoreError) Is(target error) bool { return target == ErrStore }
func (e *StoreError) Unwrap() error        { return e.Cause }

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AsStoreError leaves taxonomy errors untouched and wraps anything else in a StoreError.
func AsStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrValidation, ErrAuth, ErrStore, ErrNotFound, ErrConflict} {
		if errors.Is(err, known) {
			return err
		}
	}
	return &StoreError{Op: op, Cause: err}
}

// AppError is the error body returned by the HTTP API.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

func (e *AppError) Error() string { return e.Message }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validator returns the shared validator, which reports JSON field names.
func Validator() *validator.Validate { return validate }

func validateStruct(v any) error {
	return FromValidator(validate.Struct(v))
}

// FromValidator converts validator output into a ValidationError naming the failed fields.
func FromValidator(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewValidationError(err.Error())
	}
	var missing, invalid []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		} else {
			invalid = append(invalid, fe.Field())
		}
	}
	if len(invalid) == 0 {
		return NewValidationError("missing required fields", missing...)
	}
	return NewValidationError("invalid fields", append(missing, invalid...)...)
}
