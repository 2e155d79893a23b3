package domain

import "errors"

var (
	ErrInvalidEmail = errors.New("invalid_email")
	ErrUserNotFound = errors.New("user_not_found")
)
