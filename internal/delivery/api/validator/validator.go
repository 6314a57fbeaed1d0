// Package validator adapts go-playground/validator to echo and to the field-keyed error map.
package validator

import (
	"fmt"
	"reflect"
	"strings"

	domainerrors "coderr/internal/domain/errors"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Validator implements echo.Validator.
type Validator struct {
	validate *validator.Validate
}

// New builds a validator that reports fields by their json names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}

		return name
	})

	return &Validator{validate: v}
}

// Validate checks a request DTO and returns a *domainerrors.ValidationError on failure.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return errors.WithStack(err)
	}

	fields := domainerrors.FieldErrors{}
	for _, fe := range validationErrs {
		fields.Add(fieldPath(fe), message(fe))
	}

	return fields.Err()
}

// fieldPath drops the root struct name from the namespace, e.g. "Req.details[0].price" -> "details.0.price".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		ns = rest
	}
	ns = strings.ReplaceAll(ns, "[", ".")

	return strings.ReplaceAll(ns, "]", "")
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return domainerrors.MsgRequired
	case "email":
		return "Enter a valid email address."
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	case "gte", "min":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Ensure this field has at least %s elements.", fe.Param())
		}

		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "lte", "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}

		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(fe.Value()))
	default:
		return domainerrors.MsgInvalid
	}
}
