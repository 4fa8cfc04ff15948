package authsvc

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mkrupp/myflix/internal/domain"
)

// TokenService mints and verifies signed, time-bounded bearer tokens.
type TokenService struct {
	signing SigningMaterial
	ttl     time.Duration
	issuer  string
	now     func() time.Time
}

// NewTokenService creates a TokenService. now may be nil to use time.Now.
func NewTokenService(signing SigningMaterial, ttl time.Duration, issuer string, now func() time.Time) *TokenService {
	if now == nil {
		now = time.Now
	}

	return &TokenService{
		signing: signing,
		ttl:     ttl,
		issuer:  issuer,
		now:     now,
	}
}

// Issue signs a token for username valid from now until now+TTL.
func (s *TokenService) Issue(username string) (string, domain.Identity, error) {
	now := s.now().Truncate(time.Second)
	expiry := now.Add(s.ttl)

	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiry),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(s.signing.Method, claims).SignedString(s.signing.SignKey)
	if err != nil {
		return "", domain.Identity{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, domain.Identity{Username: username, IssuedAt: now, ExpiresAt: expiry}, nil
}

// Parse verifies the token's signature, issuer and expiry and returns the identity it names.
// Returns domain.ErrAuthTokenExpired once now reaches the expiry and
// domain.ErrInvalidAuthToken for anything malformed or tampered with.
func (s *TokenService) Parse(tokenString string) (domain.Identity, error) {
	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.signing.VerifyKey, nil
	},
		jwt.WithValidMethods([]string{s.signing.Method.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, errors.Join(domain.ErrAuthTokenExpired, err)
		}

		return domain.Identity{}, errors.Join(domain.ErrInvalidAuthToken, err)
	}

	if claims.Subject == "" || claims.IssuedAt == nil {
		return domain.Identity{}, domain.ErrInvalidAuthToken
	}

	return domain.Identity{
		Username:  claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
