// Package common defines shared constants and sentinel errors used across
// the layers of the identity service. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrEmailTaken = errors.New("email already used")

	// Service-level errors (generic/internal flow control). Details behind
	// ErrorInternal are logged server-side and never cross the boundary.
	ErrorInternal = errors.New("internal error")

	// Credential and token validation errors. Every verification failure
	// collapses into one of these so callers cannot distinguish the cause.
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidToken        = errors.New("invalid token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// Validation errors for request payloads.
	ErrInvalidEmail = errors.New("invalid email")
)
