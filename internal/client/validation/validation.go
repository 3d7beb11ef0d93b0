// Package validation checks user input before it is sent anywhere.
//
// Failures are returned as *Error, which carries one message per offending
// field so the REPL can print them next to the prompt that produced them.
// Every *Error matches common.ErrValidation with errors.Is.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/dmitrijs2005/favisend/internal/common"
	"github.com/go-playground/validator/v10"
)

// CodeLength is the length of the emailed verification code.
const CodeLength = 8

// Countries accepted by the mobile-money checkout.
var Countries = []string{
	"Burkina Faso",
	"Côte d'Ivoire",
	"Mali",
	"Niger",
	"Sénégal",
	"Bénin",
	"Togo",
	"Guinée",
	"Cameroun",
	"Tchad",
	"Gabon",
	"République centrafricaine",
	"Congo",
	"République démocratique du Congo",
}

// FieldError is a single field-level failure.
type FieldError struct {
	Field   string
	Message string
}

// Error collects field-level failures.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *Error) Unwrap() error { return common.ErrValidation }

// UserMessage returns the message alone for a single failure, otherwise
// the field-prefixed list.
func (e *Error) UserMessage() string {
	if len(e.Fields) == 1 {
		return e.Fields[0].Message
	}
	return strings.TrimPrefix(e.Error(), "validation failed: ")
}

// Field returns the message for the named field, or "".
func (e *Error) Field(name string) string {
	for _, f := range e.Fields {
		if f.Field == name {
			return f.Message
		}
	}
	return ""
}

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("country", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			for _, c := range Countries {
				if c == s {
					return true
				}
			}
			return false
		})
		instance = v
	})
	return instance
}

// Struct validates a tagged struct.
func Struct(s any) error {
	return convert(get().Struct(s), "")
}

// Email checks the address the way the guest flow requires: non-empty and
// containing "@". The server owns full deliverability checks.
func Email(email string) error {
	return convert(get().Var(strings.TrimSpace(email), "required,contains=@"), "email")
}

// Code checks that a verification code is exactly CodeLength digits.
func Code(code string) error {
	return convert(get().Var(code, fmt.Sprintf("required,len=%d,number", CodeLength)), "code")
}

// SanitizeCode keeps only ASCII digits and truncates to CodeLength.
// It is idempotent.
func SanitizeCode(s string) string {
	var b strings.Builder
	for _, r := range s {
		if b.Len() == CodeLength {
			break
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func convert(err error, field string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		name := fe.Field()
		if field != "" {
			name = field
		}
		out.Fields = append(out.Fields, FieldError{Field: name, Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "contains":
		return "Must be a valid email address"
	case "len":
		return fmt.Sprintf("Must be exactly %s characters", fe.Param())
	case "number", "numeric":
		return "Must contain digits only"
	case "min":
		return fmt.Sprintf("Minimum %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Maximum %s characters", fe.Param())
	case "url":
		return "Must be a valid URL"
	case "country":
		return "Select a supported country"
	default:
		return "Invalid value"
	}
}
