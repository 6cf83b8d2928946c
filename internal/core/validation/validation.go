// Package validation checks struct tags and reports failures as AppErrors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"invoicing/internal/core/apperror"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Struct validates s by its `validate` tags. The first failing field is
// returned as a VALIDATION_ERROR with "field" and "rule" details; all failures
// are listed under "fields".
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.NewInternal(fmt.Errorf("validate: %w", err))
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}

	first := verrs[0]
	return apperror.NewValidation(fmt.Sprintf("%s is invalid (%s)", first.Field(), first.Tag())).
		WithDetail("field", first.Field()).
		WithDetail("rule", first.Tag()).
		WithDetail("fields", fields)
}
