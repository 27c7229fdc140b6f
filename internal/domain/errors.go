package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrJobTerminal     = errors.New("job already terminal")
	ErrProviderFailure = errors.New("provider failure")
)
