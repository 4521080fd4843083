// Package common defines sentinel errors shared across the layers of
// authkeeper. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrorPersistence = errors.New("persistence failure")

	// Service-level errors.
	ErrorInternal          = errors.New("internal error")
	ErrorUserAlreadyExists = errors.New("user already exists")
	ErrorUserNotFound      = errors.New("user not found")
	ErrorInvalidPassword   = errors.New("invalid password")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
