// Package common contains shared constants and sentinel errors used across
// the liftfield client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Cache / local store errors.
	ErrNoCachedData = errors.New("no cached data")

	// Gate decisions surfaced to the UI layer.
	ErrOfflineWriteBlocked = errors.New("unavailable offline")
	ErrAuthRequired        = errors.New("offline: authentication required")
	ErrGatewayUnavailable  = errors.New("remote gateway unavailable")

	// Identity provider failure kinds. Unmapped provider codes are wrapped
	// around ErrOperationFailed together with the provider message.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("wrong password")
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password is too weak")
	ErrOperationFailed    = errors.New("operation failed")

	// Domain validation errors.
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidDocumentURL = errors.New("document url must be an absolute uri")
	ErrTaskNotFound       = errors.New("task not found")
	ErrDocumentNotFound   = errors.New("document not found")

	// Session errors.
	ErrSessionExpired = errors.New("cached session expired")
	ErrNotLoggedIn    = errors.New("not logged in")
)
