package services

import "errors"

var (
	ErrDuplicateEmail     = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrAnalysisNotFound   = errors.New("analysis not found")
	ErrCenterNotFound     = errors.New("recycling center not found")
)

// ValidationError reports bad input. Its message is safe to show to clients.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(msg string) error {
	return &ValidationError{Msg: msg}
}
