package settings

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate checks the `validate` tags on descriptor structs. Field errors
// are reported under the `lua` tag name, which is the table field an
// extension writes.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("lua"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Validate checks a descriptor's variant-required fields. It returns nil or
// a *ValidationError with Index -1.
func Validate(d Descriptor) error {
	switch d.(type) {
	case *Title, *Button, *Boolean, *Select, *Range, *Input, *Color:
		if reflect.ValueOf(d).IsNil() {
			return unknown()
		}
	default:
		return unknown()
	}

	err := validate.Struct(d)
	if err == nil {
		return nil
	}

	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return &ValidationError{
			Index:   -1,
			Type:    d.Kind().String(),
			Code:    CodeUnknownKind,
			Message: err.Error(),
		}
	}
	return fieldError(d.Kind(), fields[0])
}

// fieldError maps the first failed tag to a ValidationError. Fields are
// checked in declaration order, so the embedded Row and Bound come first.
func fieldError(k Kind, fe validator.FieldError) *ValidationError {
	switch fe.Tag() {
	case "gtfield":
		// NaN on either side fails the comparison too.
		return &ValidationError{
			Index:   -1,
			Type:    k.String(),
			Field:   strings.ToLower(fe.Param()),
			Code:    CodeInvalidRange,
			Message: "min must be less than max",
		}
	default:
		return &ValidationError{
			Index:   -1,
			Type:    k.String(),
			Field:   fe.Field(),
			Code:    CodeRequiredMissing,
			Message: "required field is missing",
		}
	}
}

func unknown() *ValidationError {
	return &ValidationError{
		Index:   -1,
		Code:    CodeUnknownKind,
		Message: "unknown descriptor type",
	}
}
