package service

import (
	"time"

	"github.com/storemesh/storemesh/internal/auth/domain"
	"github.com/storemesh/storemesh/pkg/jwtx"
)

// IssuedToken is the result of a successful login or guest session request.
type IssuedToken struct {
	Token       string         // the bare compact JWT
	HeaderValue string         // prefix + token, ready for the auth header
	ExpiresAt   time.Time      // when the token stops verifying
	Profile     domain.Profile // safe-to-return account fields
}

// TokenIssuer mints signed tokens for verified credentials.
type TokenIssuer struct {
	Codec  *jwtx.Codec
	Prefix string        // e.g. "Bearer "
	TTL    time.Duration // token lifetime

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

// Issue signs a token for the credential, embedding its authority.
func (i *TokenIssuer) Issue(cred domain.Credential) (IssuedToken, error) {
	now := time.Now().UTC()
	if i.Now != nil {
		now = i.Now().UTC()
	}

	token, err := i.Codec.Encode(cred.Email, []string{cred.Authority()}, now, i.TTL)
	if err != nil {
		return IssuedToken{}, err
	}

	return IssuedToken{
		Token:       token,
		HeaderValue: i.Prefix + token,
		ExpiresAt:   now.Add(i.TTL),
		Profile:     cred.Profile(),
	}, nil
}
