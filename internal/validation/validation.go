// Package validation turns request payload rules into field-level errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"photoshare/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so clients can map errors back to inputs.
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
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidateUsername(fl.Field().String()) == nil
	})
	return v
}

// Struct validates s and returns an AppError listing every failing field, or nil.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.NewValidationError("Invalid request")
	}

	fields := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, models.FieldError{
			Field:   fe.Field(),
			Message: describe(fe),
		})
	}
	return models.NewFieldValidationError(fields)
}

func describe(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "email":
		return "Please enter a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case "username":
		return "Username must be 3-30 characters and contain only letters, numbers and underscores"
	case "url":
		return fmt.Sprintf("%s must be a valid URL", name)
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

// TrimmedText validates text after trimming surrounding whitespace and
// returns the trimmed value.
func TrimmedText(field, label, value string, maxLen int) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", models.NewFieldValidationError([]models.FieldError{
			{Field: field, Message: label + " is required"},
		})
	}
	if len([]rune(trimmed)) > maxLen {
		return "", models.NewFieldValidationError([]models.FieldError{
			{Field: field, Message: fmt.Sprintf("%s must be between 1 and %d characters", label, maxLen)},
		})
	}
	return trimmed, nil
}
