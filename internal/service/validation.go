package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"merchantops/models"
)

var validate = newValidator()

var (
	categoryIDPattern = regexp.MustCompile(`^cat_\d+$`)
	dishIDPattern     = regexp.MustCompile(`^dish_\d+$`)
)

func newValidator() *validator.Validate {
	v := validator.New()

	// Report field names as they appear on the wire, not as Go fields.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	mustRegisterPattern(v, "category_id", categoryIDPattern)
	mustRegisterPattern(v, "dish_id", dishIDPattern)

	return v
}

func mustRegisterPattern(v *validator.Validate, tag string, pattern *regexp.Regexp) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("failed to register %s validation: %v", tag, err))
	}
}

// validateStruct runs tag validation on a request DTO and converts the
// first failure into a client-facing validation error.
func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		first := fieldErrors[0]
		return models.NewValidationError(first.Field(), validationMessage(first))
	}

	return models.NewValidationError("", err.Error())
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("must contain at least %s items", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be %s or greater", fe.Param())
	case "lte":
		return fmt.Sprintf("must be %s or less", fe.Param())
	case "ne":
		return fmt.Sprintf("must not be %s", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "category_id":
		return "must match the cat_<number> format"
	case "dish_id":
		return "must match the dish_<number> format"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
