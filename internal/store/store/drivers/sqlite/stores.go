package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/storemesh/storemesh/internal/store/domain"
)

type storesRepo struct {
	db *sql.DB
}

const storeColumns = `id, city, postal_code, street, address_name, longitude, latitude,
	location_type, collection_point, today_open, today_close, sap_store_id,
	created_at, updated_at`

func (r *storesRepo) CreateStore(ctx context.Context, s domain.Store) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stores (`+storeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.City, s.PostalCode, s.Street, s.AddressName, s.Longitude, s.Latitude,
		s.LocationType, s.CollectionPoint, s.TodayOpen, s.TodayClose, s.SapStoreID,
		s.CreatedAt, s.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *storesRepo) GetStoreByID(ctx context.Context, id string) (domain.Store, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+storeColumns+` FROM stores WHERE id = ?`, id)
	return scanStore(row)
}

func (r *storesRepo) ListStores(ctx context.Context, locationTypes []string, limit int) ([]domain.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores`
	args := make([]any, 0, len(locationTypes)+1)

	if len(locationTypes) > 0 {
		query += ` WHERE location_type IN (?` + strings.Repeat(", ?", len(locationTypes)-1) + `)`
		for _, lt := range locationTypes {
			args = append(args, lt)
		}
	}
	query += ` ORDER BY city, address_name LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanStores(rows)
}

func (r *storesRepo) UpdateStore(ctx context.Context, s domain.Store) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE stores
		SET city = ?, postal_code = ?, street = ?, address_name = ?, longitude = ?, latitude = ?,
			location_type = ?, collection_point = ?, today_open = ?, today_close = ?, sap_store_id = ?,
			updated_at = ?
		WHERE id = ?`,
		s.City, s.PostalCode, s.Street, s.AddressName, s.Longitude, s.Latitude,
		s.LocationType, s.CollectionPoint, s.TodayOpen, s.TodayClose, s.SapStoreID,
		s.UpdatedAt, s.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *storesRepo) DeleteStore(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stores WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStore(row rowScanner) (domain.Store, error) {
	var s domain.Store
	err := row.Scan(
		&s.ID, &s.City, &s.PostalCode, &s.Street, &s.AddressName, &s.Longitude, &s.Latitude,
		&s.LocationType, &s.CollectionPoint, &s.TodayOpen, &s.TodayClose, &s.SapStoreID,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return domain.Store{}, mapNotFound(err)
	}
	return s, nil
}

func scanStores(rows *sql.Rows) ([]domain.Store, error) {
	var stores []domain.Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}
