package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/deppfellow/tokenfarms-api/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Typical pattern:
//   - define a request struct with validator tags
//   - implement Validate() error that calls Struct(req)
type Validatable interface {
	Validate() error
}

// BindAndValidate binds the request body into payload and validates it.
//
// Every failing field is reported in one 400 *errs.HTTPError: a value of the
// wrong JSON type becomes a field error next to the failed rules of the other
// fields. An explicit null is bound as the zero value and validated.
func BindAndValidate(c echo.Context, payload Validatable) error {
	bound, err := bindBody(c, payload)
	if err != nil {
		return bodyError(err)
	}

	var ruleErrors []errs.FieldError
	if err := payload.Validate(); err != nil {
		httpErr := extractValidationError(err)
		if len(httpErr.Errors) == 0 {
			return httpErr
		}
		ruleErrors = httpErr.Errors
	}

	if fieldErrors := bound.mergeFieldErrors(ruleErrors); len(fieldErrors) > 0 {
		return errs.NewBadRequestError("Validation failed", nil, fieldErrors)
	}

	return nil
}

func extractValidationError(err error) *errs.HTTPError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		var httpErr *errs.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		return errs.ValidationError(err)
	}

	fieldErrors := make([]errs.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fieldErrors = append(fieldErrors, errs.FieldError{
			Type:     "field",
			Value:    fe.Value(),
			Msg:      message(fe),
			Path:     fe.Field(),
			Location: errs.LocationBody,
		})
	}

	return errs.NewBadRequestError("Validation failed", nil, fieldErrors)
}

// message renders the client-facing text for one failed rule.
func message(fe validator.FieldError) string {
	field := fe.Field()
	name := label(field)

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)

	case "account":
		if value, ok := fe.Value().(string); ok && (len(value) < 1 || len(value) > AccountMaxLength) {
			return fmt.Sprintf("%s length must be between 1 and %d characters", name, AccountMaxLength)
		}
		return fmt.Sprintf("Invalid %s format: only a-z, 1-5, and . are allowed", field)

	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		}
		if fe.Param() == "1" {
			return fmt.Sprintf("%s must be a positive integer", name)
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())

	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must not exceed %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must be a positive integer and max %s", name, fe.Param())

	case "oneof":
		return fmt.Sprintf("Invalid %s method: must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))

	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s: %s:%s", field, fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s: %s", field, fe.Tag())
	}
}

// label turns a snake_case JSON name into "Original Creator".
func label(field string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(field, "_", " "))
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "unknown"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.String:
		return "string"
	default:
		return t.Kind().String()
	}
}
