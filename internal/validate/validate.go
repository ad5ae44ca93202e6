// Package validate holds the client-side form rules. A ValidationError never
// reaches the network: callers check forms before building any request.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	PasswordMinLength = 8
	PasswordMaxLength = 20
	passwordSpecials  = "!@#$%^&*"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError maps form fields to the messages that block submission.
type ValidationError struct {
	Fields map[string][]string
}

func (v *ValidationError) Error() string {
	msgs := v.Messages()
	if len(msgs) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (v *ValidationError) add(field, message string) {
	if v.Fields == nil {
		v.Fields = make(map[string][]string)
	}
	v.Fields[field] = append(v.Fields[field], message)
}

// HasErrors reports whether any field level issue was recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.Fields) > 0
}

// Messages returns every message ordered by field name.
func (v *ValidationError) Messages() []string {
	if v == nil {
		return nil
	}
	fields := make([]string, 0, len(v.Fields))
	for f := range v.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var out []string
	for _, f := range fields {
		out = append(out, v.Fields[f]...)
	}
	return out
}

// Single returns a validation error with one message on one field.
func Single(field, message string) *ValidationError {
	v := &ValidationError{}
	v.add(field, message)
	return v
}

var fieldLabels = map[string]string{
	"email":           "Email",
	"password":        "Password",
	"confirmPassword": "Confirm Password",
	"currentPassword": "Current password",
	"newPassword":     "New password",
	"displayName":     "Display name",
	"token":           "Reset token",
	"roomId":          "Room",
	"title":           "Title",
	"date":            "Date",
	"startTime":       "Start time",
	"endTime":         "End time",
	"name":            "Name",
	"capacity":        "Capacity",
}

func label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

var instance = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their form names rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "simple_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "strong_password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %s: %v", tag, err))
	}
}

// StrongPassword reports whether s mixes upper and lower case letters, digits
// and one of the special characters !@#$%^&*, within the allowed length.
func StrongPassword(s string) bool {
	n := len([]rune(s))
	if n < PasswordMinLength || n > PasswordMaxLength {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r) && r < unicode.MaxASCII:
			upper = true
		case unicode.IsLower(r) && r < unicode.MaxASCII:
			lower = true
		case unicode.IsDigit(r) && r < unicode.MaxASCII:
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return upper && lower && digit && special
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return label(field) + " is required"
	case "simple_email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", label(field), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be less than or equal to %s characters long", label(field), fe.Param())
	case "strong_password":
		return label(field) + " must include uppercase, lowercase, numbers, and special characters"
	case "eqfield":
		return "Passwords do not match"
	case "datetime":
		return fmt.Sprintf("%s must use the format %s", label(field), fe.Param())
	default:
		return label(field) + " is invalid"
	}
}

// Struct checks form against its validate tags and converts failures into a
// *ValidationError. It returns nil when the form is valid.
func Struct(form any) error {
	err := instance.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.add(fe.Field(), message(fe))
	}
	return verr
}
