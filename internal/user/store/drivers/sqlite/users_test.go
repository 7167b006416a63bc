package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/storemesh/storemesh/internal/user/domain"
	"github.com/storemesh/storemesh/internal/user/store"
	"github.com/storemesh/storemesh/internal/user/store/drivers/sqlite"
	"github.com/storemesh/storemesh/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "user.db")
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newUser(email string) domain.User {
	now := time.Now().UTC().Truncate(time.Second)
	return domain.User{
		ID:           idx.New().String(),
		Email:        email,
		FirstName:    "Alice",
		LastName:     "Smith",
		PasswordHash: "$2a$10$fakehashfakehashfakehash",
		Role:         domain.DefaultRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestCreateAndGetUser(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	u := newUser("alice@example.com")
	require.NoError(t, st.Users().CreateUser(ctx, u))

	byID, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, byID.Email)
	require.Equal(t, u.PasswordHash, byID.PasswordHash)

	byEmail, err := st.Users().GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)
}

func TestDuplicateEmail(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Users().CreateUser(ctx, newUser("alice@example.com")))

	err := st.Users().CreateUser(ctx, newUser("alice@example.com"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestGetMissingUser(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.Users().GetUserByID(ctx, idx.New().String())
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.Users().GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateUser(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	u := newUser("alice@example.com")
	require.NoError(t, st.Users().CreateUser(ctx, u))

	u.FirstName = "Alicia"
	u.Role = "ADMIN"
	u.UpdatedAt = u.UpdatedAt.Add(time.Minute)
	require.NoError(t, st.Users().UpdateUser(ctx, u))

	got, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Alicia", got.FirstName)
	require.Equal(t, "ADMIN", got.Role)

	missing := newUser("ghost@example.com")
	require.ErrorIs(t, st.Users().UpdateUser(ctx, missing), store.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	u := newUser("alice@example.com")
	require.NoError(t, st.Users().CreateUser(ctx, u))
	require.NoError(t, st.Users().DeleteUser(ctx, u.ID))

	_, err := st.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, st.Users().DeleteUser(ctx, u.ID), store.ErrNotFound)
}

func TestListUsersNewestFirst(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	older := newUser("older@example.com")
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	newer := newUser("newer@example.com")

	require.NoError(t, st.Users().CreateUser(ctx, older))
	require.NoError(t, st.Users().CreateUser(ctx, newer))

	users, err := st.Users().ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "newer@example.com", users[0].Email)
	require.Equal(t, "older@example.com", users[1].Email)
}
