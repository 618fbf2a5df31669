package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field messages shown in a field's message slot.
const (
	MsgRequired   = "This field is required"
	MsgName       = "Only letters, with single spaces between words"
	MsgNationalID = "Must be exactly 8 digits"
	MsgPassword   = "Password does not meet requirements"
	MsgMismatch   = "Passwords do not match"
)

// FieldErrors maps a JSON field name to the first rule it broke.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e[k]))
	}
	return "invalid fields: " + strings.Join(parts, "; ")
}

// Validator checks DTOs tagged with the portal rules:
// tbs_name, tbs_nic, tbs_email and tbs_password.
type Validator struct {
	validate *validator.Validate
	rules    Rules
}

func NewValidator(rules Rules) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	mustRegister(v, "tbs_name", func(fl validator.FieldLevel) bool {
		return IsNameValid(fl.Field().String())
	})
	mustRegister(v, "tbs_nic", func(fl validator.FieldLevel) bool {
		return IsNationalIDValid(fl.Field().String())
	})
	mustRegister(v, "tbs_email", func(fl validator.FieldLevel) bool {
		return rules.IsEmailValid(fl.Field().String())
	})
	mustRegister(v, "tbs_password", func(fl validator.FieldLevel) bool {
		return IsPasswordValid(fl.Field().String())
	})

	return &Validator{validate: v, rules: rules}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s: %v", tag, err))
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// Struct validates s. Rule violations come back as FieldErrors; any other
// error means s could not be validated at all.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = v.message(fe.Tag(), fe.Param())
		}
	}
	return out
}

func (v *Validator) message(tag, param string) string {
	switch tag {
	case "required", "required_with":
		return MsgRequired
	case "tbs_name":
		return MsgName
	case "tbs_nic":
		return MsgNationalID
	case "tbs_email":
		return v.rules.EmailHint()
	case "tbs_password":
		return MsgPassword
	case "eqfield":
		return MsgMismatch
	case "oneof":
		return "Must be one of: " + param
	default:
		return "Invalid value"
	}
}
