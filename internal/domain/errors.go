package domain

import "errors"

// Sentinel errors used throughout the application.
// HTTP handlers translate these to status codes via a single mapError function.
var (
	ErrNotFound            = errors.New("post not found")
	ErrNoPending           = errors.New("no pending posts")
	ErrInvalidPlatform     = errors.New("invalid platform: must be twitter, telegram, or webhook")
	ErrInvalidContent      = errors.New("content must not be empty")
	ErrInvalidPriority     = errors.New("priority must not be negative")
	ErrUnsupportedPlatform = errors.New("unsupported platform: no adapter registered")
	ErrContentTooLong      = errors.New("content exceeds the platform size limit")
)
