package services

import "errors"

// Sentinel errors the handlers map onto HTTP status codes.
var (
	ErrNotFound           = errors.New("not found")
	ErrUserExists         = errors.New("user already exists")
	ErrConflict           = errors.New("conflict")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

func invalidf(msg string) error {
	return wrapped{msg: msg, err: ErrInvalidInput}
}

func notFoundf(msg string) error {
	return wrapped{msg: msg, err: ErrNotFound}
}

func conflictf(msg string) error {
	return wrapped{msg: msg, err: ErrConflict}
}

// wrapped attaches a human-readable message to a sentinel so handlers can
// both classify with errors.Is and surface the message.
type wrapped struct {
	msg string
	err error
}

func (w wrapped) Error() string { return w.msg }
func (w wrapped) Unwrap() error { return w.err }
