// Package auth provides JWT issuance/validation, bcrypt password hashing,
// and the request middleware that authenticates API calls.
//
// Tokens are stateless HS256 JWTs: the user's internal ID travels in the
// "sub" claim and the signature makes it tamper-proof, so validating a
// request needs no database lookup.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "detox-companion"

// Token validity windows. Login issues a long-lived token so the mobile
// app doesn't force daily re-authentication; registration issues a
// shorter one — the first real login refreshes it (and starts the
// streak).
const (
	TokenTTLLogin    = 30 * 24 * time.Hour
	TokenTTLRegister = 7 * 24 * time.Hour
)

// TokenService signs and validates JWT access tokens.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given HMAC secret.
// The secret should be at least 32 bytes of random data in production,
// e.g. JWT_SECRET=$(openssl rand -hex 32).
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload; the internal user ID lives in the standard
// "sub" claim.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs an access token for userID, valid for ttl.
// Callers pass TokenTTLLogin or TokenTTLRegister depending on the flow.
func (s *TokenService) Generate(userID string, ttl time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a JWT string and returns the userID from
// the "sub" claim. WithValidMethods pins HS256 so an attacker can't swap
// the algorithm; the issuer check rejects tokens minted by other apps
// sharing the secret.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
