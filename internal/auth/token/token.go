// Package token issues and verifies the bearer tokens that carry end-user
// identity. Tokens are signed with HS256 over a secret shared between the
// user service (issuer) and the gateway (sole verifier); downstream
// services never re-verify tokens, they trust the gateway's injected
// identity headers instead.
package token

import (
	"errors"
	"time"

	"marketbay_backend/internal/auth"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the verified identity material extracted from a token.
type Claims struct {
	Email string
	Role  auth.Role
}

// Issue signs a token for the given subject and role, expiring ttl from now.
func Issue(email string, role auth.Role, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  email,
		"role": role.String(),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Verify checks signature and expiry and returns the embedded claims.
// Any failure (malformed token, bad signature, expiry passed, missing
// claims) yields ErrInvalidToken; the token is never partially trusted.
func Verify(raw, secret string) (Claims, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	email, _ := mc["sub"].(string)
	roleRaw, _ := mc["role"].(string)
	role, roleErr := auth.ParseRole(roleRaw)
	if email == "" || roleErr != nil {
		return Claims{}, ErrInvalidToken
	}

	return Claims{Email: email, Role: role}, nil
}
