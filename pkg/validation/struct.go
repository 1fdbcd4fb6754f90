package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is matched by every error produced from struct validation.
var ErrInvalid = errors.New("invalid input")

// FieldProblem describes one rejected field using its JSON name.
type FieldProblem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error carries every field problem found while validating a value. It
// matches ErrInvalid with errors.Is.
type Error struct {
	Problems []FieldProblem
}

func (e *Error) Error() string {
	if e == nil || len(e.Problems) == 0 {
		return ErrInvalid.Error()
	}
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.Field+": "+p.Message)
	}
	return fmt.Sprintf("%s: %s", ErrInvalid, strings.Join(parts, "; "))
}

// Unwrap lets errors.Is(err, ErrInvalid) succeed.
func (e *Error) Unwrap() error { return ErrInvalid }

// Problem builds an *Error holding a single field problem.
func Problem(field, msgFmt string, args ...any) *Error {
	return &Error{Problems: []FieldProblem{{Field: field, Message: fmt.Sprintf(msgFmt, args...)}}}
}

// Problems extracts field problems from err, or nil when err is not a
// validation error.
func Problems(err error) []FieldProblem {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Problems
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// validator has no built-in rule rejecting NaN and infinities
	if err := v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Float32, reflect.Float64:
			f := fl.Field().Float()
			return !math.IsNaN(f) && !math.IsInf(f, 0)
		default:
			return true
		}
	}); err != nil {
		panic(fmt.Sprintf("failed to register finite validation: %v", err))
	}

	return v
}

// Struct validates s against its `validate` tags. It returns nil or an *Error.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	problems := make([]FieldProblem, 0, len(validationErrors))
	for _, fe := range validationErrors {
		problems = append(problems, FieldProblem{
			Field:   fieldPath(fe),
			Message: message(fe),
		})
	}
	return &Error{Problems: problems}
}

// fieldPath drops the root struct name from the namespace so nested fields
// read as "properties[0].value".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

// message returns a human-readable validation message
func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "finite":
		return "Must be a finite number"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "lte":
		return "Must be less than or equal to " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "lt":
		return "Must be less than " + e.Param()
	default:
		return "Invalid value"
	}
}
