package common

import "errors"

var (
	// Storage-level errors.
	ErrorNotFound = errors.New("not found")

	// Payload errors.
	ErrorIncorrectPayload = errors.New("incorrect payload")

	// Token lifecycle errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenMissing = errors.New("refresh token missing")
)
