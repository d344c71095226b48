package service

import (
	"errors"
	"time"

	"accounts/internal/domain/entity"
)

// ErrInvalidToken is returned by Verify for malformed, tampered or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// TokenService issues and verifies signed, time-limited identity tokens.
type TokenService interface {
	// Issue creates a token for the account that expires TTL after issuance.
	Issue(accountID entity.AccountID) (string, error)

	// Verify checks signature and expiry and returns the embedded account ID.
	// Every rejection wraps ErrInvalidToken.
	Verify(token string) (entity.AccountID, error)

	// TTL returns the lifetime of issued tokens.
	TTL() time.Duration
}
