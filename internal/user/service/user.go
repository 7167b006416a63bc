package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/storemesh/storemesh/internal/user/domain"
	"github.com/storemesh/storemesh/internal/user/store"
	"github.com/storemesh/storemesh/pkg/cryptox"
	"github.com/storemesh/storemesh/pkg/idx"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailInUse = errors.New("email already in use")
)

// CreateUserInput carries the fields accepted on account creation. Role is
// optional and defaults to domain.DefaultRole.
type CreateUserInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Role      string
}

// UpdateUserInput carries the mutable account fields. Empty Password keeps
// the current hash.
type UpdateUserInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Role      string
}

// UserService implements account management on top of the store.
type UserService struct {
	Store  store.Store
	Logger *slog.Logger
}

// FindAll returns every account, newest first.
func (s *UserService) FindAll(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

// FindOne returns the account with the given id.
func (s *UserService) FindOne(ctx context.Context, id string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrNotFound
	}
	return user, err
}

// FindByEmail returns the account registered under email. Used by the
// credential RPC responder.
func (s *UserService) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrNotFound
	}
	return user, err
}

// Create registers a new account, hashing the password before it is stored.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (domain.User, error) {
	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	role := in.Role
	if role == "" {
		role = domain.DefaultRole
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailInUse
		}
		return domain.User{}, err
	}

	s.Logger.Info("user created", "id", user.ID, "email", user.Email, "role", user.Role)
	return user, nil
}

// Update modifies an existing account. A new password replaces the stored
// hash; an empty one keeps it.
func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (domain.User, error) {
	user, err := s.FindOne(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if in.Email != "" {
		user.Email = in.Email
	}
	if in.FirstName != "" {
		user.FirstName = in.FirstName
	}
	user.LastName = in.LastName
	if in.Role != "" {
		user.Role = in.Role
	}
	if in.Password != "" {
		hash, err := cryptox.HashPassword(in.Password)
		if err != nil {
			return domain.User{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.Store.Users().UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return domain.User{}, ErrNotFound
		case errors.Is(err, store.ErrAlreadyExists):
			return domain.User{}, ErrEmailInUse
		}
		return domain.User{}, err
	}

	s.Logger.Info("user updated", "id", user.ID)
	return user, nil
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, id string) error {
	err := s.Store.Users().DeleteUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err == nil {
		s.Logger.Info("user deleted", "id", id)
	}
	return err
}
