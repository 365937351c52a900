package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks struct tags with the same validator gin binding
// uses, so tool-call arguments face exactly the constraints the HTTP
// DTOs do.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (val *Validator) Validate(obj interface{}) error {
	if err := val.v.Struct(obj); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			first := errs[0]
			return fmt.Errorf("field %s failed %s validation", first.Field(), first.Tag())
		}
		return err
	}
	return nil
}
