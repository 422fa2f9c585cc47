package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrBanned             = errors.New("user is banned")
	ErrKeyExpired         = errors.New("activation key expired")
	ErrRedeemExhausted    = errors.New("free redeem already used")
	ErrUserLocked         = errors.New("another interaction for this user is in progress")
	ErrInvalidExecContext = errors.New("invalid executor context")
)
