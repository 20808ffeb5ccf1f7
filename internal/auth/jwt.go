// Package auth issues and verifies the bearer tokens that stand in for
// the host chain's transaction signatures: a token's subject is the
// acting account, and its role claim gates the privileged operations.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role is the privilege level carried by a token.
type Role string

const (
	// RolePlayer can commit, reveal and trigger cleanup for itself.
	RolePlayer Role = "player"
	// RoleAdmin maps to the configured admin account: token pricing,
	// pause, withdrawals.
	RoleAdmin Role = "admin"
	// RoleOperator is the deployment's own authority: configuration
	// and the inbound payment hook.
	RoleOperator Role = "operator"
)

// Claims are the token claims: subject is the account name.
type Claims struct {
	Role Role `json:"role"`

	jwt.RegisteredClaims
}

// JWT signs and verifies HS256 tokens.
type JWT struct {
	Secret   []byte
	TokenTTL time.Duration
}

// Sign mints a token for account with the given role.
func (j JWT) Sign(account string, role Role) (token string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	expiresAt = now.Add(j.TokenTTL)

	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   account,
			Issuer:    "zoltaran-speaks",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Second)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, expiresAt, nil
}

// Verify parses and validates a token.
func (j JWT) Verify(token string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return j.Secret, nil
	})
	if err != nil {
		return Claims{}, err
	}
	c, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}
	return *c, nil
}
