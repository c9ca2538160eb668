package verification

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("verification code not found")
	ErrInvalidTarget     = errors.New("invalid verification target")
	ErrInvalidCodeFormat = errors.New("invalid verification code format")
	ErrInvalidCode       = errors.New("invalid verification code")
	ErrCodeExpired       = errors.New("verification code expired")
	ErrTooManyAttempts   = errors.New("too many attempts")
	ErrRateLimited       = errors.New("verification code requested too recently")
	ErrDeliveryFailed    = errors.New("verification code delivery failed")
	ErrNotVerified       = errors.New("contact not verified")
)

// HTTPStatus maps verification errors to a status, error code and user
// facing message. ok is false for errors this package does not own.
func HTTPStatus(err error) (status int, code, message string, ok bool) {
	switch {
	case errors.Is(err, ErrInvalidTarget):
		return http.StatusBadRequest, "INVALID_TARGET", "Invalid email or phone number", true
	case errors.Is(err, ErrInvalidCodeFormat):
		return http.StatusBadRequest, "INVALID_CODE_FORMAT", "Code must be 6 digits", true
	case errors.Is(err, ErrInvalidCode), errors.Is(err, ErrNotFound):
		return http.StatusBadRequest, "INVALID_CODE", "Invalid verification code", true
	case errors.Is(err, ErrCodeExpired):
		return http.StatusBadRequest, "CODE_EXPIRED", "Verification code expired, request a new one", true
	case errors.Is(err, ErrTooManyAttempts):
		return http.StatusTooManyRequests, "TOO_MANY_ATTEMPTS", "Too many attempts, request a new code", true
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED", "Please wait before requesting another code", true
	case errors.Is(err, ErrDeliveryFailed):
		return http.StatusBadGateway, "DELIVERY_FAILED", "Could not deliver the message, try again later", true
	case errors.Is(err, ErrNotVerified):
		return http.StatusForbidden, "NOT_VERIFIED", "Contact must be verified first", true
	default:
		return http.StatusInternalServerError, "INTERNAL", "Internal error", false
	}
}
