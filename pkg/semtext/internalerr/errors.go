package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidURL         = errors.New("invalid url")
	ErrInvalidID          = errors.New("invalid id")
	ErrMissingOffset      = errors.New("missing offset")
	ErrUnsupportedMeaning = errors.New("unsupported meaning")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrInvalidConfig      = errors.New("invalid configuration")
)
