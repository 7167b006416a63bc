package cryptox_test

import (
	"strings"
	"testing"

	"github.com/storemesh/storemesh/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := cryptox.HashPassword("p1")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$2"), "expected a bcrypt hash, got %q", hash)

	t.Run("correct password", func(t *testing.T) {
		require.NoError(t, cryptox.VerifyPassword("p1", hash))
	})

	t.Run("wrong password", func(t *testing.T) {
		err := cryptox.VerifyPassword("p2", hash)
		require.ErrorIs(t, err, cryptox.ErrPasswordMismatch)
	})

	t.Run("garbage hash", func(t *testing.T) {
		err := cryptox.VerifyPassword("p1", "not-a-hash")
		require.ErrorIs(t, err, cryptox.ErrPasswordMismatch)
	})
}

func TestHashPasswordSalts(t *testing.T) {
	a, err := cryptox.HashPassword("same-password")
	require.NoError(t, err)
	b, err := cryptox.HashPassword("same-password")
	require.NoError(t, err)

	// Same input, different salts, different hashes; both still verify.
	require.NotEqual(t, a, b)
	require.NoError(t, cryptox.VerifyPassword("same-password", a))
	require.NoError(t, cryptox.VerifyPassword("same-password", b))
}
