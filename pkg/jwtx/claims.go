package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the default lifetime for access tokens. The mesh issues
// short-lived tokens with no refresh path, so one hour is the ceiling.
const DefaultTokenTTL = time.Hour

// Claims are the access-token claims shared by every service in the mesh.
// The gateway reconstructs the request principal from these, so changes here
// must stay additive.
type Claims struct {
	jwt.RegisteredClaims

	// Authorities granted to the subject, e.g. ["ROLE_ADMIN"]. Order is not
	// significant; values are plain strings with no nesting.
	Authorities []string `json:"authorities,omitempty"`
}

// NewClaims builds minimally-correct claims for a subject.
func NewClaims(subject string, authorities []string, now time.Time, ttl time.Duration) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Authorities: authorities,
	}
}

// ValidateShape rejects claims whose required fields are missing or malformed.
// A token with no subject or no authorities list cannot name a principal, so
// it is as useless as one with a bad signature.
func (c *Claims) ValidateShape() error {
	if c.Subject == "" {
		return ErrInvalidClaims
	}
	if len(c.Authorities) == 0 {
		return ErrInvalidClaims
	}
	for _, a := range c.Authorities {
		if a == "" {
			return ErrInvalidClaims
		}
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp). A missing exp is
// rejected outright: every token this mesh issues is time-bounded.
func (c *Claims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt == nil {
		return ErrExpired
	}
	if !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}
