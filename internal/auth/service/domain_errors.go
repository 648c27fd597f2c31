package service

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/bearer-auth/internal/common/errors"
)

var (
	ErrValidation = commonerrors.NewDomainError(
		"VALIDATION_FAILED",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"validation failed",
	)

	// ErrDuplicateAccount deliberately names the conflict on signup; signin
	// never reveals whether an email is registered.
	ErrDuplicateAccount = commonerrors.NewDomainError(
		"DUPLICATE_ACCOUNT",
		commonerrors.CategoryConflict,
		http.StatusBadRequest,
		"User already exists",
	)

	ErrMissingField = commonerrors.NewDomainError(
		"MISSING_FIELD",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"Please enter all required fields",
	)

	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryUnauthorized,
		http.StatusBadRequest,
		"Invalid credentials",
	)

	ErrInternal = commonerrors.NewDomainError(
		"INTERNAL_ERROR",
		commonerrors.CategoryInternal,
		http.StatusInternalServerError,
		"Server Error",
	)
)

func newInternalError(cause error) commonerrors.DomainError {
	return ErrInternal.WithCause(cause)
}
