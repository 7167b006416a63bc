package service_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/storemesh/storemesh/internal/auth/domain"
	"github.com/storemesh/storemesh/internal/auth/resolver"
	"github.com/storemesh/storemesh/internal/auth/service"
	"github.com/storemesh/storemesh/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

var errBrokerDown = errors.New("broker down")

// fakeResolver scripts lookup outcomes per email and counts invocations.
type fakeResolver struct {
	creds map[string]domain.Credential
	err   error
	calls int
}

func (f *fakeResolver) Resolve(_ context.Context, email string) (domain.Credential, error) {
	f.calls++
	if f.err != nil {
		return domain.Credential{}, f.err
	}
	cred, ok := f.creds[email]
	if !ok {
		return domain.Credential{}, resolver.ErrNotFound
	}
	return cred, nil
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)
	return hash
}

func testGuest(t *testing.T) domain.Credential {
	t.Helper()
	return domain.NewGuest("Guest", "GUEST", mustHash(t, "guest"))
}

func TestVerifyKnownUser(t *testing.T) {
	alice := domain.Credential{
		Email:        "alice@example.com",
		FirstName:    "Alice",
		PasswordHash: mustHash(t, "s3cret"),
		Role:         "USER",
	}
	fake := &fakeResolver{creds: map[string]domain.Credential{alice.Email: alice}}
	v := service.NewCredentialVerifier(fake, testGuest(t), 3, time.Minute, slog.Default())

	cred, err := v.Verify(context.Background(), alice.Email, "s3cret")
	require.NoError(t, err)
	require.Equal(t, alice.Email, cred.Email)
	require.Equal(t, "ROLE_USER", cred.Authority())
}

func TestVerifyWrongPassword(t *testing.T) {
	alice := domain.Credential{Email: "alice@example.com", PasswordHash: mustHash(t, "s3cret"), Role: "USER"}
	fake := &fakeResolver{creds: map[string]domain.Credential{alice.Email: alice}}
	v := service.NewCredentialVerifier(fake, testGuest(t), 3, time.Minute, slog.Default())

	_, err := v.Verify(context.Background(), alice.Email, "wrong")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestVerifyUnknownUser(t *testing.T) {
	fake := &fakeResolver{}
	v := service.NewCredentialVerifier(fake, testGuest(t), 3, time.Minute, slog.Default())

	_, err := v.Verify(context.Background(), "nobody@example.com", "whatever")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestVerifyFallsBackToGuestOnOutage(t *testing.T) {
	fake := &fakeResolver{err: errBrokerDown}
	v := service.NewCredentialVerifier(fake, testGuest(t), 3, time.Minute, slog.Default())

	// The guest password unlocks the fallback identity.
	cred, err := v.Verify(context.Background(), "alice@example.com", "guest")
	require.NoError(t, err)
	require.Equal(t, "Guest", cred.Email)
	require.Equal(t, "ROLE_GUEST", cred.Authority())

	// Any other password still fails, even against the fallback.
	_, err = v.Verify(context.Background(), "alice@example.com", "s3cret")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	fake := &fakeResolver{err: errBrokerDown}
	v := service.NewCredentialVerifier(fake, testGuest(t), 3, time.Minute, slog.Default())

	for i := 0; i < 5; i++ {
		_, err := v.Verify(context.Background(), "alice@example.com", "guest")
		require.NoError(t, err)
	}

	// After three consecutive failures the breaker is open; the last two
	// attempts short-circuit without touching the resolver.
	require.Equal(t, 3, fake.calls)
}

func TestBreakerRecoversAfterCooldown(t *testing.T) {
	alice := domain.Credential{Email: "alice@example.com", PasswordHash: mustHash(t, "s3cret"), Role: "USER"}
	fake := &fakeResolver{err: errBrokerDown, creds: map[string]domain.Credential{alice.Email: alice}}
	v := service.NewCredentialVerifier(fake, testGuest(t), 1, 50*time.Millisecond, slog.Default())

	_, err := v.Verify(context.Background(), alice.Email, "guest")
	require.NoError(t, err) // outage, guest fallback

	fake.err = nil
	_, err = v.Verify(context.Background(), alice.Email, "s3cret")
	require.ErrorIs(t, err, service.ErrInvalidCredentials) // breaker still open

	time.Sleep(60 * time.Millisecond)

	cred, err := v.Verify(context.Background(), alice.Email, "s3cret")
	require.NoError(t, err)
	require.Equal(t, alice.Email, cred.Email)
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	fake := &fakeResolver{}
	v := service.NewCredentialVerifier(fake, testGuest(t), 2, time.Minute, slog.Default())

	for i := 0; i < 5; i++ {
		_, err := v.Verify(context.Background(), "nobody@example.com", "x")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	}

	// Every attempt reached the resolver; not-found never opened the breaker.
	require.Equal(t, 5, fake.calls)
}
