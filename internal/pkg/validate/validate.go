package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/bbuddy-otp/internal/domain"
	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. Field names are reported by
// their json tag so they match what the client sent.
var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return val
}

// FieldError is one failed rule on one request field.
type FieldError struct {
	Field string
	Tag   string
}

// Error lists every failed field of a request. It matches domain.ErrValidation.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", f.Field, f.Tag))
	}
	return strings.Join(msgs, "; ")
}

func (e *Error) Unwrap() error { return domain.ErrValidation }

// Missing returns the names of the fields that failed the required rule.
func (e *Error) Missing() []string {
	var out []string
	for _, f := range e.Fields {
		if f.Tag == "required" {
			out = append(out, f.Field)
		}
	}
	return out
}

// Struct validates s by its validate tags. Rule failures come back as *Error;
// anything else (a non-struct argument) is returned as is.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := &Error{Fields: make([]FieldError, 0, len(ve))}
	for _, fe := range ve {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Tag: fe.Tag()})
	}
	return out
}
