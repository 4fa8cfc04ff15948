package domain

import (
	"errors"
	"time"
)

var (
	// ErrNoAuthToken is returned when an authentication token is required but not provided.
	ErrNoAuthToken = errors.New("no auth token")
	// ErrInvalidAuthToken is returned when a token is malformed or its signature does not match.
	ErrInvalidAuthToken = errors.New("invalid auth token")
	// ErrAuthTokenExpired is returned when a token is past its expiry.
	ErrAuthTokenExpired = errors.New("auth token expired")
	// ErrForbidden is returned when the authenticated user may not act on a resource.
	ErrForbidden = errors.New("forbidden")
	// ErrNoSigningKey is returned at startup when no token signing material is configured.
	ErrNoSigningKey = errors.New("no signing key configured")
)

// Identity is the verified caller attached to a request by the request guard.
type Identity struct {
	Username  string    `json:"username"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AuthTokenResponse represents a response containing an authentication token.
type AuthTokenResponse struct {
	Token string `json:"token"`
}

// LoginRequest is the client payload for obtaining a token.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
