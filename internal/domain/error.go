package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound         = errors.New("entity not found")
	ErrAlreadyExists    = errors.New("entity already exists")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrLockNotAcquired  = errors.New("conversation is busy, lock not acquired")
	ErrUnknownLocale    = errors.New("unknown prompt catalog locale")
	ErrIncompleteRecord = errors.New("reservation record is incomplete")
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrReadDatabaseRow  = errors.New("failed to read database row")
)
