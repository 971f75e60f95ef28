package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aescanero/tripplanner/pkg/domain"
	"github.com/go-playground/validator/v10"
)

// Validator validates plan requests
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new request validator
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate checks that the required request fields are present. Every
// failure wraps domain.ErrInvalidRequest.
func (v *Validator) Validate(req domain.Request) error {
	err := v.validate.Struct(req.Normalize())
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	missing := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		missing = append(missing, strings.ToLower(fe.Field()))
	}
	return fmt.Errorf("%w: %s required", domain.ErrInvalidRequest, strings.Join(missing, " and "))
}
