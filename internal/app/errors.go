package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("admin access required")
	ErrInvalidRole        = errors.New("invalid role")
)
