package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeRoomNotFound     = "room_not_found"
	ErrCodeBadRequest       = "bad_request"
	ErrCodeInvalidUsername  = "invalid_username"
	ErrCodeAlreadyConnected = "already_connected"
	ErrCodeNotConnected     = "not_connected"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrBadRequest       = errors.New("bad request")
	ErrInvalidUsername  = errors.New("invalid username")
	ErrAlreadyConnected = errors.New("already connected")
	ErrNotConnected     = errors.New("not connected")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
	err     error
}

func (e *CoreError) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel so callers can use errors.Is.
func (e *CoreError) Unwrap() error {
	return e.err
}

func coreError(code, msg string, sentinel error) *CoreError {
	return &CoreError{Code: code, Message: msg, err: sentinel}
}

// ErrorCode extracts the domain code from err, or "" when err is not a CoreError.
func ErrorCode(err error) string {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
