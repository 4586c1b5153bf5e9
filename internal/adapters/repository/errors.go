package repository

import "errors"

// Sentinel kinds for account store errors.
var (
	ErrNotFound         = errors.New("account not found")
	ErrAlreadyExists    = errors.New("account already exists")
	ErrProtectedAccount = errors.New("account is protected")
	ErrInvalidAccount   = errors.New("invalid account")
)
