package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Kanaan7/NutritionTracker/internal"
)

var validate = validator.New()

// validationError turns validator output into an *internal.ValidationError
// naming the first failing field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &internal.ValidationError{Message: err.Error()}
	}
	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return internal.NewValidationError(field, "is required")
	case "min":
		return internal.NewValidationError(field, "must have at least %s item(s)", fe.Param())
	default:
		return internal.NewValidationError(field, "failed %s %s", fe.Tag(), fe.Param())
	}
}
