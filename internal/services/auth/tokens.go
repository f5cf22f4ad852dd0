package auth

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/notesmith/smart-notes/internal/apperr"
	"github.com/notesmith/smart-notes/internal/models"
)

// DefaultSessionTTL is the default lifetime of an issued session token
const DefaultSessionTTL = 24 * time.Hour

// TokenService issues and verifies session tokens. Sessions are self-signed
// HS256 JWTs so verification needs no network or database round trip.
type TokenService struct {
	key    jwk.Key
	issuer string
	ttl    time.Duration
}

// NewTokenService creates a token service from the shared session secret.
func NewTokenService(secret, issuer string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 bytes")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	key, err := jwk.FromRaw([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("build signing key: %w", err)
	}

	return &TokenService{
		key:    key,
		issuer: issuer,
		ttl:    ttl,
	}, nil
}

// Issue creates a signed session token for the given user
func (s *TokenService) Issue(user *models.User) (string, error) {
	now := time.Now()

	builder := jwt.NewBuilder().
		Issuer(s.issuer).
		Subject(user.ID.String()).
		IssuedAt(now).
		Expiration(now.Add(s.ttl)).
		Claim("email", user.Email)
	if user.Name != nil {
		builder = builder.Claim("name", *user.Name)
	}

	token, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, s.key))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return string(signed), nil
}

// Verify checks a session token's signature, expiry, and issuer, and
// extracts its claims.
func (s *TokenService) Verify(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(jwa.HS256, s.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(s.issuer),
	)
	if err != nil {
		return nil, apperr.Unauthorized("invalid session token")
	}

	claims := &models.SessionClaims{
		Sub: token.Subject(),
		Iss: token.Issuer(),
		Exp: token.Expiration().Unix(),
		Iat: token.IssuedAt().Unix(),
	}

	if email, ok := token.Get("email"); ok {
		if emailStr, ok := email.(string); ok {
			claims.Email = emailStr
		}
	}
	if name, ok := token.Get("name"); ok {
		if nameStr, ok := name.(string); ok {
			claims.Name = nameStr
		}
	}

	return claims, nil
}
