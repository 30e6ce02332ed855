// Package validation wraps go-playground/validator with the request rules used by the API.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hongminglow/tenantauth/internal/apperr"
	"github.com/hongminglow/tenantauth/internal/auth"
	"github.com/hongminglow/tenantauth/internal/models/dto"
)

// Validator validates request DTOs by struct tag.
type Validator struct {
	v *validator.Validate
}

// New builds a Validator with the custom password rule registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("bcryptsafe", bcryptSafe)
	v.RegisterCustomTypeFunc(nullableValue, dto.NullableString{})
	return &Validator{v: v}
}

// bcryptSafe accepts passwords of min..auth.MaxPasswordBytes bytes, where min is
// the tag parameter (bcryptsafe=8) and defaults to 1. Both bounds count bytes.
func bcryptSafe(fl validator.FieldLevel) bool {
	n := len(fl.Field().String())
	return n >= minBytes(fl.Param()) && n <= auth.MaxPasswordBytes
}

func minBytes(param string) int {
	n, err := strconv.Atoi(param)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// nullableValue lets string rules apply to a present NullableString. Absent and
// null values validate as nil, so omitempty skips them.
func nullableValue(field reflect.Value) any {
	n, ok := field.Interface().(dto.NullableString)
	if !ok || n.Value == nil {
		return nil
	}
	return *n.Value
}

// Struct validates s and returns a validation *apperr.Error listing failing fields.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(apperr.KindValidation, "invalid request", err)
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = message(fe)
	}
	return apperr.Validation("invalid request").WithDetails(details)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "bcryptsafe":
		return fmt.Sprintf("must be between %d and %d bytes", minBytes(fe.Param()), auth.MaxPasswordBytes)
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
