package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeBanned             = "banned"
	ErrCodeBadRequest         = "bad_request"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeRateLimited        = "rate_limited"
	ErrCodeUnsupportedVersion = "unsupported_version"
)

var (
	// ErrBanned rejects registration of a username that carries a ban record.
	ErrBanned = errors.New("user is banned")
	// ErrEmptyUsername rejects registration of a connection without identity.
	ErrEmptyUsername = errors.New("username is required")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

// NewError builds a CoreError.
func NewError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
