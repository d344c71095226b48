// Package validator adapts the shared go-playground validator to echo.Validator.
package validator

import (
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// CustomValidator implements echo.Validator.
type CustomValidator struct {
	validate *validator.Validate
}

// New wraps validate, building the default account validator when nil.
func New(validate *validator.Validate) *CustomValidator {
	if validate == nil {
		validate = validation.New()
	}

	return &CustomValidator{validate: validate}
}

// Validate checks i against its struct tags. Failures are returned as
// ErrValidationFailed carrying a client-facing message.
func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validate.Struct(i); err != nil {
		return errors.WithStack(domainerrors.ErrValidationFailed.WithMessage(validation.Message(err)))
	}

	return nil
}
