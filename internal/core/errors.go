package core

import "errors"

// Error codes for the client error taxonomy.
const (
	ErrCodeConfig      = "config"
	ErrCodeDecode      = "decode"
	ErrCodeTransport   = "transport"
	ErrCodePersistence = "persistence"
)

var (
	ErrNoBaseURL    = errors.New("no websocket base address configured")
	ErrNoRoom       = errors.New("no room id")
	ErrNotConnected = errors.New("not connected")
	ErrEmptyMessage = errors.New("empty message")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
	Err     error
}

func (e *CoreError) Error() string {
	return e.Message
}

func (e *CoreError) Unwrap() error {
	return e.Err
}

func coreError(code, msg string, err error) *CoreError {
	return &CoreError{Code: code, Message: msg, Err: err}
}
