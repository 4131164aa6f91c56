// Package handlers defines the HTTP-layer error codes used across all API
// endpoints. Codes are lowercase snake_case and stable: clients branch on
// them programmatically, so changing one is a breaking API change.
package handlers

const (
	ErrCodeBadRequest           = "bad_request"
	ErrCodeValidationFailed     = "validation_failed"
	ErrCodeUnauthorized         = "unauthorized"
	ErrCodeForbidden            = "forbidden"
	ErrCodeNotFound             = "not_found"
	ErrCodeConfirmationRequired = "confirmation_required"
	ErrCodeRateLimited          = "rate_limited"
	ErrCodeStorageUnavailable   = "storage_unavailable"
	ErrCodeInternal             = "internal_error"
	ErrCodeMethodNotAllowed     = "method_not_allowed"
)
