package service_test

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/storemesh/storemesh/internal/user/service"
	"github.com/storemesh/storemesh/internal/user/store/drivers/sqlite"
	"github.com/storemesh/storemesh/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *service.UserService {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "user.db")
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	return &service.UserService{Store: st, Logger: slog.Default()}
}

func TestCreateHashesPasswordAndDefaultsRole(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, service.CreateUserInput{
		Email:     "alice@example.com",
		FirstName: "Alice",
		Password:  "s3cret",
	})
	require.NoError(t, err)
	require.Equal(t, "USER", user.Role)
	require.NotEqual(t, "s3cret", user.PasswordHash)
	require.NoError(t, cryptox.VerifyPassword("s3cret", user.PasswordHash))
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	in := service.CreateUserInput{Email: "alice@example.com", FirstName: "Alice", Password: "s3cret"}
	_, err := svc.Create(ctx, in)
	require.NoError(t, err)

	_, err = svc.Create(ctx, in)
	require.ErrorIs(t, err, service.ErrEmailInUse)
}

func TestUpdateKeepsPasswordWhenEmpty(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, service.CreateUserInput{
		Email:     "alice@example.com",
		FirstName: "Alice",
		Password:  "s3cret",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, service.UpdateUserInput{FirstName: "Alicia"})
	require.NoError(t, err)
	require.Equal(t, "Alicia", updated.FirstName)
	require.Equal(t, created.PasswordHash, updated.PasswordHash)

	updated, err = svc.Update(ctx, created.ID, service.UpdateUserInput{Password: "n3wpass"})
	require.NoError(t, err)
	require.NoError(t, cryptox.VerifyPassword("n3wpass", updated.PasswordHash))
}

func TestFindAndDeleteMissingUser(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.FindOne(ctx, "does-not-exist")
	require.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.FindByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, service.ErrNotFound)

	require.ErrorIs(t, svc.Delete(ctx, "does-not-exist"), service.ErrNotFound)
}
