package model

import (
	"errors"
	"fmt"
	apperrors "hoteldesk/pkg/errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		if err := v.RegisterValidation("day", validateDay); err != nil {
			panic(fmt.Sprintf("register 'day' validator: %v", err))
		}
		validate = v
	})
	return validate
}

func validateDay(fl validator.FieldLevel) bool {
	_, err := ParseDay(fl.Field().String())
	return err == nil
}

// Validate runs the struct tag rules on v and returns an AppError with one
// detail entry per failing field.
func Validate(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.Internal("validation could not run", err)
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fe.Field(), Message: describe(fe)})
	}
	return toAppError(out)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "e164":
		return "must be a valid phone number"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "eqfield":
		return "must match " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "day":
		return "must be a date in YYYY-MM-DD format"
	case "datetime":
		return "must be an RFC 3339 timestamp"
	default:
		return "failed the '" + fe.Tag() + "' rule"
	}
}

func fieldError(field, message string) error {
	return toAppError(ValidationErrors{{Field: field, Message: message}})
}

func requireFields(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	errs := make(ValidationErrors, 0, len(missing))
	for _, field := range missing {
		errs = append(errs, ValidationError{Field: field, Message: "is required"})
	}
	return toAppError(errs)
}

func toAppError(errs ValidationErrors) error {
	details := make(map[string]any, len(errs))
	for _, e := range errs {
		details[e.Field] = e.Message
	}
	appErr := apperrors.Validation(errs.Error(), details)
	appErr.Err = errs
	return appErr
}
