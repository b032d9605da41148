// Package auth manages credentials for the marketplace API.
package auth

import (
	"context"
	"errors"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoToken             = errors.New("no API token configured")
	ErrStaticTokenRefresh  = errors.New("static token cannot be refreshed")
	ErrTokenManagerMissing = errors.New("no token manager configured")
)

// Token represents an API credential.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Valid reports whether the token can still be used.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Before(t.ExpiresAt)
}

// TokenManager provides tokens for authenticated requests.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) error
	SetToken(token string, expiresAt time.Time)
}

// StaticTokenManager serves a fixed API key. Marketplace keys do not expire
// on their own, so refresh is not supported.
type StaticTokenManager struct {
	token string
}

// NewStaticTokenManager creates a token manager around a fixed API key.
func NewStaticTokenManager(token string) *StaticTokenManager {
	return &StaticTokenManager{token: token}
}

// GetToken returns the configured API key.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	if m.token == "" {
		return "", ErrNoToken
	}

	return m.token, nil
}

// RefreshToken always fails for static tokens.
func (m *StaticTokenManager) RefreshToken(ctx context.Context) error {
	return ErrStaticTokenRefresh
}

// SetToken replaces the stored API key.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.token = token
}
