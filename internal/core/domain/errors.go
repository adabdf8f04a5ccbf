package domain

import "errors"

// Sentinel errors shared across the layers. Adapters translate their
// backend failures into these; the HTTP layer maps them onto status
// codes without knowing which backend produced them.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")

	// Authentication and sessions
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// LLM providers
	ErrInvalidProvider       = errors.New("invalid provider")
	ErrProviderNotConfigured = errors.New("provider not configured")
	ErrServiceUnavailable    = errors.New("service unavailable")

	// Guide document loading and chunking
	ErrDocumentLoad    = errors.New("document load failed")
	ErrEmptyDocument   = errors.New("document is empty")
	ErrInvalidChunking = errors.New("invalid chunking configuration")
)
