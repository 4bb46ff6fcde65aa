// Package common defines shared constants and sentinel errors used across
// client and server layers of tripsync. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Sync-level errors.
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrOffline        = errors.New("device is offline")
	ErrNoToken        = errors.New("no access token")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Validation errors.
	ErrUnknownDataType = errors.New("unknown data type")
)
