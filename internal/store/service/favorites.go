package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/storemesh/storemesh/internal/store/domain"
	"github.com/storemesh/storemesh/internal/store/store"
)

var ErrAlreadyFavorite = errors.New("store already favorited")

// FavoriteService manages per-user favorite stores.
type FavoriteService struct {
	Store  store.Store
	Logger *slog.Logger
}

// Add favorites a store for a user.
func (s *FavoriteService) Add(ctx context.Context, userName, storeID string) (domain.Favorite, error) {
	f := domain.Favorite{
		UserName:  userName,
		StoreID:   storeID,
		CreatedAt: time.Now().UTC(),
	}

	err := s.Store.Favorites().AddFavorite(ctx, f)
	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		return domain.Favorite{}, ErrAlreadyFavorite
	case errors.Is(err, store.ErrNotFound):
		return domain.Favorite{}, ErrNotFound
	case err != nil:
		return domain.Favorite{}, err
	}

	s.Logger.Info("store favorited", "user", userName, "store_id", storeID)
	return f, nil
}

// Remove unfavorites a store for a user.
func (s *FavoriteService) Remove(ctx context.Context, userName, storeID string) error {
	err := s.Store.Favorites().RemoveFavorite(ctx, userName, storeID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err == nil {
		s.Logger.Info("store unfavorited", "user", userName, "store_id", storeID)
	}
	return err
}

// List returns the stores a user has favorited.
func (s *FavoriteService) List(ctx context.Context, userName string) ([]domain.Store, error) {
	return s.Store.Favorites().ListFavoriteStores(ctx, userName)
}
