// Package validation contains the logic for validating request data.
//
// It uses the `validator` library to enforce rules defined in struct tags
// and turns every failing field into an errs.FieldError the client can
// understand. All failing fields are reported, not just the first.
package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// AccountMaxLength is the longest identifier the chain accepts.
const AccountMaxLength = 12

// accountRegex matches identifiers: lowercase letters, digits 1-5 and dots.
var accountRegex = regexp.MustCompile(`^[a-z1-5.]+$`)

// IsValidAccount reports whether s is a well-formed farm/account identifier.
func IsValidAccount(s string) bool {
	return len(s) >= 1 && len(s) <= AccountMaxLength && accountRegex.MatchString(s)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON name, which is what clients send.
	v.RegisterTagNameFunc(jsonName)

	// account: identifier pattern plus length 1..12.
	_ = v.RegisterValidation("account", func(fl validator.FieldLevel) bool {
		return IsValidAccount(fl.Field().String())
	})

	return v
}

// Struct validates s against its `validate` tags using the shared validator.
func Struct(s any) error {
	return validate.Struct(s)
}
