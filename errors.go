// Package argenum holds the error model shared by the argenum generator.
//
// Every failure argenum reports happens at generation time, before the
// program that uses the generated code exists. Failures are fatal for the
// declaration that caused them: nothing is written for that package.
package argenum

import (
	"errors"
	"fmt"
	"go/token"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorCode represents a machine-readable error code.
type ErrorCode string

const (
	CodeMalformedInput ErrorCode = "malformed_input"
	CodeNoVariants     ErrorCode = "no_variants"
	CodeDuplicateLabel ErrorCode = "duplicate_label"
	CodeNotFound       ErrorCode = "not_found"
	CodeInvalidConfig  ErrorCode = "invalid_config"
	CodeInternal       ErrorCode = "internal"
)

// Error is a generation-time failure attached to an enum declaration.
type Error struct {
	Code    ErrorCode
	Message string

	// Type is the enum the error refers to, if any.
	Type string

	// Pos is the declaration site. The zero value means unknown.
	Pos token.Position

	Details map[string]any
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Pos.IsValid() {
		b.WriteString(e.Pos.String())
		b.WriteString(": ")
	}
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	if e.Type != "" {
		b.WriteString(e.Type)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// NewError creates a new generation error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Errorf creates a new generation error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ForType returns a copy of e attributed to the named type.
func (e *Error) ForType(name string) *Error {
	c := *e
	c.Type = name
	return &c
}

// At returns a copy of e positioned at pos.
func (e *Error) At(pos token.Position) *Error {
	c := *e
	c.Pos = pos
	return &c
}

// WithDetail returns a new Error with the key-value pair added to details.
func (e *Error) WithDetail(key string, value any) *Error {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	c := *e
	c.Details = details
	return &c
}

// HasCode reports whether err, or any error it wraps, is an *Error with code.
func HasCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) && e.Code == code {
		return true
	}
	// errors.As stops at the first match; joined errors need a full walk.
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		for _, inner := range u.Unwrap() {
			if HasCode(inner, code) {
				return true
			}
		}
	}
	return false
}

// FromError maps an arbitrary error to an *Error.
// Validation failures become malformed_input (or no_variants when the
// variant list is empty); anything unrecognised becomes internal.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr
	}

	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		code := CodeMalformedInput
		details := make(map[string]any)
		messages := make([]string, 0, len(valErrs))
		for _, ve := range valErrs {
			if ve.Field() == "Variants" && ve.Tag() == "min" {
				code = CodeNoVariants
			}
			msg := formatValidationError(ve)
			details[ve.Namespace()] = msg
			messages = append(messages, ve.Namespace()+": "+msg)
		}
		return &Error{
			Code:    code,
			Message: strings.Join(messages, "; "),
			Details: details,
		}
	}

	if u, ok := err.(interface{ Unwrap() []error }); ok {
		errs := u.Unwrap()
		if len(errs) > 0 {
			first := FromError(errs[0])
			msgs := make([]string, len(errs))
			for i, e := range errs {
				msgs[i] = e.Error()
			}
			return &Error{
				Code:    first.Code,
				Message: strings.Join(msgs, "; "),
				Details: first.Details,
			}
		}
	}

	return NewError(CodeInternal, err.Error())
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "min":
		if ve.Field() == "Variants" {
			return "enum declares no variants"
		}
		return fmt.Sprintf("must have at least %s elements", ve.Param())
	case "goident":
		return fmt.Sprintf("%q is not a valid Go identifier", ve.Value())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	case "unique":
		return "values must be unique"
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
