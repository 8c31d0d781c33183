// internal/models/validation.go
package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports field names by their json tag so error descriptors
// match the wire format the client actually sent.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldError is one per-field validation failure, safe to echo to the client.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// DescribeValidationErrors flattens a validator error into field descriptors.
func DescribeValidationErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "body", Message: "некорректные данные"}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
			Value:   fe.Value(),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "обязательное поле"
	case "min":
		return fmt.Sprintf("длина должна быть не меньше %s", fe.Param())
	case "max":
		return fmt.Sprintf("длина должна быть не больше %s", fe.Param())
	case "gte":
		return fmt.Sprintf("значение должно быть не меньше %s", fe.Param())
	case "lte":
		return fmt.Sprintf("значение должно быть не больше %s", fe.Param())
	default:
		return fmt.Sprintf("нарушено ограничение %s", fe.Tag())
	}
}
