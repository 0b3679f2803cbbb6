package service

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrUsernameTaken      = conflict("username is already taken")
	ErrEmailTaken         = conflict("email is already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountNotVerified = errors.New("please verify your email before logging in")
	ErrPasswordMismatch   = errors.New("current password is incorrect")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrMoodNotFound       = errors.New("mood entry not found")
)

type conflictError struct {
	msg string
}

func conflict(msg string) error {
	return &conflictError{msg: msg}
}

func (e *conflictError) Error() string { return e.msg }

func (e *conflictError) Unwrap() error { return ErrConflict }
