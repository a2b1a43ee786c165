package entity

import "errors"

var (
	ErrLeadNotFound       = errors.New("lead not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidStage       = errors.New("invalid stage")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrValueOutOfRange    = errors.New("value out of range")
)
