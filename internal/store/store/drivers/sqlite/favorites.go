package sqlite

import (
	"context"
	"database/sql"

	"github.com/storemesh/storemesh/internal/store/domain"
)

type favoritesRepo struct {
	db *sql.DB
}

func (r *favoritesRepo) AddFavorite(ctx context.Context, f domain.Favorite) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO favorites (user_name, store_id, created_at)
		VALUES (?, ?, ?)`,
		f.UserName, f.StoreID, f.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *favoritesRepo) RemoveFavorite(ctx context.Context, userName, storeID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM favorites WHERE user_name = ? AND store_id = ?`,
		userName, storeID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *favoritesRepo) ListFavoriteStores(ctx context.Context, userName string) ([]domain.Store, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+prefixedStoreColumns+`
		FROM favorites f
		JOIN stores s ON s.id = f.store_id
		WHERE f.user_name = ?
		ORDER BY f.created_at DESC`, userName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanStores(rows)
}

const prefixedStoreColumns = `s.id, s.city, s.postal_code, s.street, s.address_name,
	s.longitude, s.latitude, s.location_type, s.collection_point,
	s.today_open, s.today_close, s.sap_store_id, s.created_at, s.updated_at`
