package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidSignature covers every way a token can fail structural or
	// cryptographic verification: bad MAC, malformed segments, or a signing
	// algorithm other than HS512. Callers must not learn which.
	ErrInvalidSignature = errors.New("jwtx: invalid token signature")

	// ErrInvalidClaims reports a verified token whose claims are unusable:
	// missing subject or a missing/malformed authorities list.
	ErrInvalidClaims = errors.New("jwtx: invalid token claims")

	// ErrExpired reports a verified token past its expiry.
	ErrExpired = errors.New("jwtx: token expired")
)

// Codec signs and verifies the mesh's bearer tokens with a single shared
// secret and a fixed MAC algorithm (HS512). The secret is configuration
// loaded once at startup; a Codec is immutable and safe for concurrent use.
type Codec struct {
	secret []byte
}

// NewCodec returns a Codec bound to the shared secret.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: empty signing secret")
	}
	return &Codec{secret: secret}, nil
}

// Encode signs claims for subject into a compact token string. The token
// carries sub, iat, exp and the authorities list, nothing else.
func (c *Codec) Encode(subject string, authorities []string, now time.Time, ttl time.Duration) (string, error) {
	claims := NewClaims(subject, authorities, now, ttl)
	return jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(c.secret)
}

// Decode verifies a compact token string and returns its claims.
//
// Verification order is fixed: the signature is checked before any claim is
// inspected, then the claims shape, then expiry. A token that is both
// tampered and expired therefore reports ErrInvalidSignature.
func (c *Codec) Decode(token string) (Claims, error) {
	return c.DecodeAt(token, time.Now().UTC())
}

// DecodeAt is Decode with an explicit "current time", for tests and clock
// injection.
func (c *Codec) DecodeAt(token string, now time.Time) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		// Expiry is validated by hand below so the signature/expiry error
		// ordering is ours, not the library's.
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	parsed, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidSignature
	}

	if err := claims.ValidateShape(); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(now); err != nil {
		return Claims{}, err
	}

	return claims, nil
}
