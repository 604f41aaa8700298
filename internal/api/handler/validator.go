package handler

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	accountNumberRe = regexp.MustCompile(`^\d{8,12}$`)
	employeeIDRe    = regexp.MustCompile(`^[A-Z]{3}\d{3,4}$`)
	swiftRe         = regexp.MustCompile(`^[A-Z]{6}[A-Z0-9]{2}([A-Z0-9]{3})?$`)
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator with the portal's custom format tags
// registered, ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	v := validator.New()

	// account_number: 8-12 digit customer account.
	_ = v.RegisterValidation("account_number", func(fl validator.FieldLevel) bool {
		return accountNumberRe.MatchString(fl.Field().String())
	})
	// employee_id: staff identifier, e.g. EMP001 or ADM1001.
	_ = v.RegisterValidation("employee_id", func(fl validator.FieldLevel) bool {
		return employeeIDRe.MatchString(fl.Field().String())
	})
	// login_account: either format, accepted at the shared login endpoint.
	_ = v.RegisterValidation("login_account", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return accountNumberRe.MatchString(s) || employeeIDRe.MatchString(s)
	})
	// swift: ISO 9362 BIC, 8 or 11 characters.
	_ = v.RegisterValidation("swift", func(fl validator.FieldLevel) bool {
		return swiftRe.MatchString(fl.Field().String())
	})

	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "account_number":
		return field + " must be 8-12 digits"
	case "employee_id":
		return field + " must match the employee id format (e.g. EMP001)"
	case "login_account":
		return field + " must be an account number or employee id"
	case "swift":
		return field + " must be a valid SWIFT/BIC code"
	case "numeric":
		return field + " must contain only digits"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
