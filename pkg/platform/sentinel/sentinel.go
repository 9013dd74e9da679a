package sentinel

import "errors"

// Sentinel dependency errors. Storage backends, transports and blob stores
// return these (optionally wrapped) so services can translate them into
// domain errors exactly once.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrClosed        = errors.New("closed")
	ErrInvalidState  = errors.New("invalid state")
	ErrUnavailable   = errors.New("unavailable")
	ErrTimeout       = errors.New("timeout")
)
