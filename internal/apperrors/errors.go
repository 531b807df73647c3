package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrMissingFields   = errors.New("required fields are missing")
	ErrUsernameTooLong = errors.New("username is too long")

	// Amount can't be represented as a JSON number
	ErrAmountOutOfRange = errors.New("amount is out of range")

	// Token errors are intentionally coarse: callers must not learn why a token was rejected
	ErrMissingToken = errors.New("access token is missing")
	ErrInvalidToken = errors.New("access token is invalid")

	// Returned both when record not exists and when it belongs to another user
	ErrRecordNotFound = errors.New("record not found")
)
