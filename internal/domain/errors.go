package domain

import "fmt"

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: 409}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Status: 403}
}

func ErrAccountLocked(msg string) *AppError {
	return &AppError{Code: "ACCOUNT_LOCKED", Message: msg, Status: 429}
}

func ErrRateLimited(msg string) *AppError {
	return &AppError{Code: "RATE_LIMITED", Message: msg, Status: 429}
}

// ErrSourceUnavailable covers network errors, timeouts and non-auth HTTP
// failures from the playtime source.
func ErrSourceUnavailable(cause error) *AppError {
	return &AppError{
		Code:    "SOURCE_UNAVAILABLE",
		Message: "could not reach the Steam API; the Steam ID may be invalid or the profile private",
		Status:  502,
		Cause:   cause,
	}
}

// ErrSourceAuth is returned when the playtime source rejects our credentials.
// Kept distinct from ErrSourceUnavailable so operators see a different message.
func ErrSourceAuth(cause error) *AppError {
	return &AppError{
		Code:    "SOURCE_AUTH",
		Message: "Steam API rejected the configured API key; check STEAM_API_KEY",
		Status:  502,
		Cause:   cause,
	}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}
