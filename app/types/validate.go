package types

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

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

// validateStruct runs the struct's validate tags and turns the first failure
// into a message that can be shown to the user.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return fmt.Errorf("invalid validation error: %w", err)
	}

	first := validationErrors[0]
	field, param := first.Field(), first.Param()
	switch first.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "email":
		return fmt.Errorf("%s must be a valid email address", field)
	case "min":
		if first.Kind() == reflect.String {
			return fmt.Errorf("%s must be at least %s characters long", field, param)
		}
		return fmt.Errorf("%s must be at least %s", field, param)
	case "max":
		if first.Kind() == reflect.String {
			return fmt.Errorf("%s must be at most %s characters long", field, param)
		}
		return fmt.Errorf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "datetime":
		return fmt.Errorf("%s must match the layout %s", field, param)
	default:
		return fmt.Errorf("%s is invalid", field)
	}
}
