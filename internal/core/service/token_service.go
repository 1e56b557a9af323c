package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/userdeck/user-directory-api/internal/core/domain"
	"github.com/userdeck/user-directory-api/internal/core/ports"
)

// TokenService issues and verifies HS256-signed bearer tokens. The signing
// key is injected once at construction; an empty key is rejected at startup
// by cmd/api, never per request.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

var _ ports.TokenService = (*TokenService)(nil)

// Issue signs a token carrying the identity claims with the configured
// expiration window.
func (s *TokenService) Issue(identity domain.Identity) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   identity.ID,
		"email": identity.Email,
		"role":  identity.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify parses and validates a signed token. Malformed input, a wrong
// signature, an unexpected algorithm, and expiry all collapse into
// domain.ErrInvalidToken; partially trusted claims are never returned.
func (s *TokenService) Verify(token string) (domain.Identity, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !tkn.Valid {
		return domain.Identity{}, domain.ErrInvalidToken
	}

	identity := domain.Identity{
		ID:    stringClaim(claims, "sub"),
		Email: stringClaim(claims, "email"),
		Role:  stringClaim(claims, "role"),
	}
	if identity.ID == "" || identity.Role == "" {
		return domain.Identity{}, domain.ErrInvalidToken
	}

	return identity, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
