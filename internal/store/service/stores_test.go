package service_test

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/storemesh/storemesh/internal/store/service"
	"github.com/storemesh/storemesh/internal/store/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newServices(t *testing.T) (*service.StoreService, *service.FavoriteService) {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "stores.db")
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	return &service.StoreService{Store: st, Logger: slog.Default()},
		&service.FavoriteService{Store: st, Logger: slog.Default()}
}

func seedStore(t *testing.T, svc *service.StoreService, city string, lat, lng float64, locationType string) string {
	t.Helper()
	created, err := svc.Create(context.Background(), service.StoreInput{
		City:         city,
		AddressName:  city + " Centrum",
		Latitude:     lat,
		Longitude:    lng,
		LocationType: locationType,
	})
	require.NoError(t, err)
	return created.ID
}

func TestFindAllFiltersByType(t *testing.T) {
	stores, _ := newServices(t)
	ctx := context.Background()

	seedStore(t, stores, "Amsterdam", 52.37, 4.89, "Supermarkt")
	seedStore(t, stores, "Rotterdam", 51.92, 4.48, "PuP")
	seedStore(t, stores, "Depot", 52.0, 5.0, "Warehouse")

	// Default filter excludes the warehouse.
	got, err := stores.FindAll(ctx, nil, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = stores.FindAll(ctx, []string{"Warehouse"}, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Depot", got[0].City)
}

func TestFindNearestSortsByDistance(t *testing.T) {
	stores, _ := newServices(t)
	ctx := context.Background()

	seedStore(t, stores, "Amsterdam", 52.3702, 4.8952, "Supermarkt")
	seedStore(t, stores, "Utrecht", 52.0907, 5.1214, "Supermarkt")
	seedStore(t, stores, "Maastricht", 50.8514, 5.6910, "Supermarkt")

	// Query from Amsterdam Centraal.
	got, err := stores.FindNearest(ctx, 4.9003, 52.3791, nil, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "Amsterdam", got[0].City)
	require.Equal(t, "Utrecht", got[1].City)
	require.Equal(t, "Maastricht", got[2].City)

	// Distances are populated and increasing.
	require.Greater(t, got[0].DistanceMeters, 0.0)
	require.Less(t, got[0].DistanceMeters, 5000.0)
	require.Less(t, got[0].DistanceMeters, got[1].DistanceMeters)
	require.Less(t, got[1].DistanceMeters, got[2].DistanceMeters)

	// Limit applies after sorting.
	got, err = stores.FindNearest(ctx, 4.9003, 52.3791, nil, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Amsterdam", got[0].City)
}

func TestStoreUpdateAndDelete(t *testing.T) {
	stores, _ := newServices(t)
	ctx := context.Background()

	id := seedStore(t, stores, "Amsterdam", 52.37, 4.89, "Supermarkt")

	updated, err := stores.Update(ctx, id, service.StoreInput{
		City:         "Amsterdam",
		AddressName:  "Amsterdam Zuid",
		Latitude:     52.34,
		Longitude:    4.87,
		LocationType: "PuP",
	})
	require.NoError(t, err)
	require.Equal(t, "Amsterdam Zuid", updated.AddressName)
	require.Equal(t, "PuP", updated.LocationType)

	require.NoError(t, stores.Delete(ctx, id))
	_, err = stores.FindOne(ctx, id)
	require.ErrorIs(t, err, service.ErrNotFound)

	require.ErrorIs(t, stores.Delete(ctx, id), service.ErrNotFound)
}

func TestFavorites(t *testing.T) {
	stores, favorites := newServices(t)
	ctx := context.Background()

	amsterdam := seedStore(t, stores, "Amsterdam", 52.37, 4.89, "Supermarkt")
	utrecht := seedStore(t, stores, "Utrecht", 52.09, 5.12, "Supermarkt")

	_, err := favorites.Add(ctx, "alice@example.com", amsterdam)
	require.NoError(t, err)
	_, err = favorites.Add(ctx, "alice@example.com", utrecht)
	require.NoError(t, err)

	// Favoriting twice is rejected.
	_, err = favorites.Add(ctx, "alice@example.com", amsterdam)
	require.ErrorIs(t, err, service.ErrAlreadyFavorite)

	// Favoriting a missing store is rejected.
	_, err = favorites.Add(ctx, "alice@example.com", "no-such-store")
	require.ErrorIs(t, err, service.ErrNotFound)

	list, err := favorites.List(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Another user's favorites are separate.
	list, err = favorites.List(ctx, "bob@example.com")
	require.NoError(t, err)
	require.Empty(t, list)

	require.NoError(t, favorites.Remove(ctx, "alice@example.com", amsterdam))
	require.ErrorIs(t, favorites.Remove(ctx, "alice@example.com", amsterdam), service.ErrNotFound)

	// Deleting a store cascades to favorites.
	require.NoError(t, stores.Delete(ctx, utrecht))
	list, err = favorites.List(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Empty(t, list)
}
