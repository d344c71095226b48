// Package validation builds the shared go-playground validator used for
// request input, including the account password policy.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/pkg/errors"
)

const (
	// TagPassword is the struct tag for the password policy.
	TagPassword = "password"
	// TagNotBlank rejects strings that are empty after trimming.
	TagNotBlank = "notblank"

	passwordMinLength = 8
	passwordMaxLength = 15
	passwordSpecials  = "@$!%*?&"
)

// New returns a validator with the custom account tags registered.
// Field names in errors follow the json tag.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}

		return name
	})

	// Registration only fails for empty or reserved tags.
	_ = v.RegisterValidation(TagPassword, func(fl validator.FieldLevel) bool {
		return ValidPassword(fl.Field().String())
	})
	_ = v.RegisterValidation(TagNotBlank, validators.NotBlank)

	return v
}

// ValidPassword reports whether password satisfies the policy: 8 to 15
// characters drawn from letters, digits and @$!%*?&, with at least one
// lower-case letter, upper-case letter, digit and special character.
func ValidPassword(password string) bool {
	if len(password) < passwordMinLength || len(password) > passwordMaxLength {
		return false
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}

	return lower && upper && digit && special
}

// Message renders the first validation failure in err as a sentence a
// client can act on. Non-validation errors are returned as-is.
func Message(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required", TagNotBlank:
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s should be a valid email", fe.Field())
	case TagPassword:
		return fmt.Sprintf("%s should be valid password", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
