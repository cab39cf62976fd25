package auth

import "errors"

var (
	ErrMissingAPIKey = errors.New("missing API key")
	ErrInvalidAPIKey = errors.New("invalid API key")
	ErrAdminDisabled = errors.New("admin API is not configured")
)
