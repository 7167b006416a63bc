package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/storemesh/storemesh/internal/store/domain"
	"github.com/storemesh/storemesh/internal/store/store"
	"github.com/storemesh/storemesh/pkg/idx"
)

var ErrNotFound = errors.New("store not found")

// DefaultLimit caps list and nearest queries when the caller names no limit.
const DefaultLimit = 1000

// StoreInput carries the fields accepted on store creation and update.
type StoreInput struct {
	City            string
	PostalCode      string
	Street          string
	AddressName     string
	Longitude       float64
	Latitude        float64
	LocationType    string
	CollectionPoint bool
	TodayOpen       string
	TodayClose      string
	SapStoreID      string
}

// StoreService implements catalogue queries and management.
type StoreService struct {
	Store  store.Store
	Logger *slog.Logger
}

// FindAll returns stores of the given location types. Empty types fall back
// to the default filter; limit <= 0 falls back to DefaultLimit.
func (s *StoreService) FindAll(ctx context.Context, locationTypes []string, limit int) ([]domain.Store, error) {
	if len(locationTypes) == 0 {
		locationTypes = domain.DefaultLocationTypes
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return s.Store.Stores().ListStores(ctx, locationTypes, limit)
}

// FindNearest returns up to limit stores of the given types sorted by
// distance from the given coordinate, with DistanceMeters populated.
func (s *StoreService) FindNearest(ctx context.Context, lng, lat float64, locationTypes []string, limit int) ([]domain.Store, error) {
	if len(locationTypes) == 0 {
		locationTypes = domain.DefaultLocationTypes
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	// The catalogue is small (hundreds of stores), so the distance sort
	// happens in memory rather than in the database.
	stores, err := s.Store.Stores().ListStores(ctx, locationTypes, DefaultLimit)
	if err != nil {
		return nil, err
	}

	for i := range stores {
		stores[i].DistanceMeters = haversineMeters(lat, lng, stores[i].Latitude, stores[i].Longitude)
	}
	sort.Slice(stores, func(i, j int) bool {
		return stores[i].DistanceMeters < stores[j].DistanceMeters
	})

	if len(stores) > limit {
		stores = stores[:limit]
	}
	return stores, nil
}

// FindOne returns the store with the given id.
func (s *StoreService) FindOne(ctx context.Context, id string) (domain.Store, error) {
	st, err := s.Store.Stores().GetStoreByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Store{}, ErrNotFound
	}
	return st, err
}

// Create adds a store to the catalogue.
func (s *StoreService) Create(ctx context.Context, in StoreInput) (domain.Store, error) {
	now := time.Now().UTC()
	st := domain.Store{
		ID:              idx.New().String(),
		City:            in.City,
		PostalCode:      in.PostalCode,
		Street:          in.Street,
		AddressName:     in.AddressName,
		Longitude:       in.Longitude,
		Latitude:        in.Latitude,
		LocationType:    in.LocationType,
		CollectionPoint: in.CollectionPoint,
		TodayOpen:       in.TodayOpen,
		TodayClose:      in.TodayClose,
		SapStoreID:      in.SapStoreID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.Store.Stores().CreateStore(ctx, st); err != nil {
		return domain.Store{}, fmt.Errorf("create store: %w", err)
	}

	s.Logger.Info("store created", "id", st.ID, "address", st.AddressName)
	return st, nil
}

// Update replaces a store's fields.
func (s *StoreService) Update(ctx context.Context, id string, in StoreInput) (domain.Store, error) {
	st, err := s.FindOne(ctx, id)
	if err != nil {
		return domain.Store{}, err
	}

	st.City = in.City
	st.PostalCode = in.PostalCode
	st.Street = in.Street
	st.AddressName = in.AddressName
	st.Longitude = in.Longitude
	st.Latitude = in.Latitude
	st.LocationType = in.LocationType
	st.CollectionPoint = in.CollectionPoint
	st.TodayOpen = in.TodayOpen
	st.TodayClose = in.TodayClose
	st.SapStoreID = in.SapStoreID
	st.UpdatedAt = time.Now().UTC()

	if err := s.Store.Stores().UpdateStore(ctx, st); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Store{}, ErrNotFound
		}
		return domain.Store{}, err
	}

	s.Logger.Info("store updated", "id", st.ID)
	return st, nil
}

// Delete removes a store and its favorites.
func (s *StoreService) Delete(ctx context.Context, id string) error {
	err := s.Store.Stores().DeleteStore(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err == nil {
		s.Logger.Info("store deleted", "id", id)
	}
	return err
}

const earthRadiusMeters = 6371000

// haversineMeters returns the great-circle distance between two coordinates.
func haversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}
