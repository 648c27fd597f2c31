package service

import (
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/AlibekovAA/bearer-auth/internal/auth/domain"
	"github.com/AlibekovAA/bearer-auth/internal/common/constants"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors lists every rule a signup request violated, in rule order.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

func AsValidationErrors(err error) (ValidationErrors, bool) {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type signupRule struct {
	field   string
	message string
	valid   func(domain.SignupRequest) bool
}

// CredentialValidator checks signup payloads. Every rule runs regardless of
// earlier failures.
type CredentialValidator struct {
	validate *validator.Validate
	rules    []signupRule
}

func NewCredentialValidator() *CredentialValidator {
	cv := &CredentialValidator{validate: validator.New()}
	cv.rules = []signupRule{
		{
			field:   "name",
			message: "Name is required",
			valid: func(r domain.SignupRequest) bool {
				return len(strings.TrimSpace(r.Name)) >= constants.NameMinLength
			},
		},
		{
			field:   "email",
			message: "Invalid email",
			valid: func(r domain.SignupRequest) bool {
				return cv.validate.Var(normalizeEmail(r.Email), "required,email") == nil
			},
		},
		{
			field:   "password",
			message: "Password must be at least 6 characters",
			valid: func(r domain.SignupRequest) bool {
				return len([]rune(r.Password)) >= constants.PasswordMinLength
			},
		},
		{
			field:   "password",
			message: "Password must be at most 72 bytes",
			valid: func(r domain.SignupRequest) bool {
				return len(r.Password) <= constants.PasswordMaxBytes
			},
		},
		{
			field:   "password",
			message: "Password must contain at least one uppercase letter",
			valid: func(r domain.SignupRequest) bool {
				return strings.IndexFunc(r.Password, isASCIIUpper) >= 0
			},
		},
		{
			field:   "password",
			message: "Password must contain at least one special character",
			valid: func(r domain.SignupRequest) bool {
				return strings.ContainsAny(r.Password, constants.PasswordSymbols)
			},
		},
	}
	return cv
}

// Validate returns the request with name trimmed and email normalized, or
// ValidationErrors naming each violated rule.
func (cv *CredentialValidator) Validate(req domain.SignupRequest) (domain.SignupRequest, error) {
	var errs ValidationErrors
	for _, rule := range cv.rules {
		if !rule.valid(req) {
			errs = append(errs, FieldError{Field: rule.field, Message: rule.message})
		}
	}
	if len(errs) > 0 {
		return domain.SignupRequest{}, errs
	}

	return domain.SignupRequest{
		Name:     strings.TrimSpace(req.Name),
		Email:    normalizeEmail(req.Email),
		Password: req.Password,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isASCIIUpper(r rune) bool {
	return r <= unicode.MaxASCII && unicode.IsUpper(r)
}
