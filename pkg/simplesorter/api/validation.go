package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = newValidator()

// newValidator adds the anyuuid tag, which accepts what uuid.Parse accepts
// regardless of case.
func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("anyuuid", func(fl validator.FieldLevel) bool {
		_, err := uuid.Parse(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}
	return v
}

// validateStruct validates a request body based on its validation tags
func validateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// fieldError is returned for the first failing field so handlers can pick
// the matching client-facing label.
type fieldError struct {
	Field   string
	Message string
}

func (e *fieldError) Error() string {
	return e.Message
}

func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		first := validationErrors[0]
		return &fieldError{
			Field:   first.Field(),
			Message: formatFieldError(first),
		}
	}
	return err
}

// invalidField returns the struct field name that failed validation, if any
func invalidField(err error) string {
	var fe *fieldError
	if errors.As(err, &fe) {
		return fe.Field
	}
	return ""
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "uuid", "anyuuid":
		return fmt.Sprintf("%s must be a valid UUID", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
