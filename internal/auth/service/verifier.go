package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"github.com/storemesh/storemesh/internal/auth/domain"
	"github.com/storemesh/storemesh/internal/auth/resolver"
	"github.com/storemesh/storemesh/pkg/cryptox"
)

// ErrInvalidCredentials is returned when the email is unknown or the password
// does not match. Callers must not be able to tell which.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CredentialVerifier checks submitted credentials against the user service.
//
// Lookups run through a circuit breaker. When the user service is unreachable
// or the breaker is open, verification degrades to the guest identity instead
// of failing: the submitted password is then checked against the guest
// credential, so anonymous browsing stays available during an outage. A
// not-found answer is a healthy round trip and never trips the breaker.
type CredentialVerifier struct {
	resolver resolver.Resolver
	guest    domain.Credential
	breaker  *gobreaker.CircuitBreaker
	logger   *slog.Logger
}

type resolved struct {
	cred  domain.Credential
	found bool
}

// NewCredentialVerifier builds a verifier whose breaker opens after the given
// number of consecutive lookup failures and probes again after cooldown.
func NewCredentialVerifier(
	r resolver.Resolver,
	guest domain.Credential,
	failures uint32,
	cooldown time.Duration,
	logger *slog.Logger,
) *CredentialVerifier {
	v := &CredentialVerifier{
		resolver: r,
		guest:    guest,
		logger:   logger,
	}

	v.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "credential-resolver",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return v
}

// GuestCredential returns the shared anonymous identity.
func (v *CredentialVerifier) GuestCredential() domain.Credential {
	return v.guest
}

// Verify resolves the account for email and checks password against its hash.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (domain.Credential, error) {
	cred, err := v.lookup(ctx, email)
	switch {
	case errors.Is(err, resolver.ErrNotFound):
		return domain.Credential{}, ErrInvalidCredentials
	case err != nil:
		v.logger.Warn("credential lookup degraded to guest", "err", err)
		cred = v.guest
	}

	if err := cryptox.VerifyPassword(password, cred.PasswordHash); err != nil {
		return domain.Credential{}, ErrInvalidCredentials
	}
	return cred, nil
}

func (v *CredentialVerifier) lookup(ctx context.Context, email string) (domain.Credential, error) {
	out, err := v.breaker.Execute(func() (any, error) {
		cred, err := v.resolver.Resolve(ctx, email)
		if errors.Is(err, resolver.ErrNotFound) {
			return resolved{}, nil
		}
		if err != nil {
			return nil, err
		}
		return resolved{cred: cred, found: true}, nil
	})
	if err != nil {
		return domain.Credential{}, err
	}

	res := out.(resolved)
	if !res.found {
		return domain.Credential{}, resolver.ErrNotFound
	}
	return res.cred, nil
}
