// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"accounts/config"
	"accounts/internal/domain/entity"
	"accounts/internal/domain/service"
)

// DefaultTokenTTL is the lifetime of an access token when none is configured.
const DefaultTokenTTL = time.Hour

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	secret []byte           // Secret key for signing access tokens.
	ttl    time.Duration    // Absolute lifetime of an access token.
	now    func() time.Time // Clock, replaceable in tests.
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg == nil || cfg.SecretKey.Access == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	ttl := DefaultTokenTTL
	if cfg.Auth != nil && cfg.Auth.TokenTTL > 0 {
		ttl = cfg.Auth.TokenTTL
	}

	return newJWTService(cfg.SecretKey.Access, ttl, time.Now), nil
}

func newJWTService(secret string, ttl time.Duration, now func() time.Time) *jwtService {
	return &jwtService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    now,
	}
}

// Issue creates a signed access token for the account.
func (s *jwtService) Issue(accountID entity.AccountID) (string, error) {
	issuedAt := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   accountID.String(),                      // Subject (who the token is for)
		IssuedAt:  jwt.NewNumericDate(issuedAt),            // Issued At
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)), // Expiration Time
		ID:        uuid.NewString(),                        // Distinguishes tokens issued in the same second
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// Verify checks the signature and expiry of a token and returns its subject.
func (s *jwtService) Verify(tokenString string) (entity.AccountID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return entity.NilAccountID, errors.Wrap(service.ErrInvalidToken, err.Error())
	}

	accountID, err := entity.ParseAccountID(claims.Subject)
	if err != nil {
		return entity.NilAccountID, errors.Wrap(service.ErrInvalidToken, "subject is not an account id")
	}

	return accountID, nil
}

// TTL returns the configured token lifetime.
func (s *jwtService) TTL() time.Duration {
	return s.ttl
}
