// Package validation runs struct-tag validation for request DTOs and turns
// the first failure into a validation_failed domain error.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	dErrors "idcard/pkg/domain-errors"
	s "idcard/pkg/string"
)

var structValidator = build()

func build() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report the JSON name so messages match what the client sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return s.ToSnakeCase(f.Name)
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.DateOnly, fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks req against its `validate` tags.
func Validate(req any) error {
	if err := structValidator.Struct(req); err != nil {
		return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
	}
	return nil
}

// fieldPath drops the root type from the namespace: "Req.name.first" -> "name.first".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

// ErrorMessage describes the first failing field.
func ErrorMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return "invalid request body"
	}

	fe := errs[0]
	field := fieldPath(fe)
	if field == "" {
		return "invalid request body"
	}

	switch fe.ActualTag() {
	case "required", "required_with", "required_without":
		return field + " is required"
	case "uuid", "uuid4":
		return field + " must be a valid uuid"
	case "min":
		return bound(field, "at least", fe)
	case "max":
		return bound(field, "at most", fe)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "notblank":
		return field + " must not be blank"
	case "isodate":
		return field + " must be a date in YYYY-MM-DD format"
	case "e164":
		return field + " must be an E.164 phone number"
	default:
		return field + " is invalid"
	}
}

func bound(field, rel string, fe validator.FieldError) string {
	switch fe.Kind() {
	case reflect.String:
		return fmt.Sprintf("%s must be %s %s characters", field, rel, fe.Param())
	case reflect.Slice, reflect.Array, reflect.Map:
		return fmt.Sprintf("%s must contain %s %s items", field, rel, fe.Param())
	default:
		return fmt.Sprintf("%s must be %s %s", field, rel, fe.Param())
	}
}
