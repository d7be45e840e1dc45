package postgres

import (
	"context"
	"fmt"

	"github.com/vietddude/sparki/internal/core/domain"
)

const wholesalerColumns = `id, store_name, current_status, open_time, close_time, distance,
	duration, email, location, longitude, latitude, created_at`

// WholesalerRepo implements storage.WholesalerRepository using PostgreSQL.
type WholesalerRepo struct {
	exec *Executor
}

// NewWholesalerRepo creates a new PostgreSQL wholesaler repository.
func NewWholesalerRepo(exec *Executor) *WholesalerRepo {
	return &WholesalerRepo{exec: exec}
}

func (r *WholesalerRepo) Create(ctx context.Context, w *domain.Wholesaler) (int64, error) {
	var id int64
	err := r.exec.InsertReturning(ctx, &id, `
		INSERT INTO wholesalers (
			store_name, current_status, open_time, close_time, distance,
			duration, email, location, longitude, latitude
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		w.StoreName, w.CurrentStatus, w.OpenTime, w.CloseTime, w.Distance,
		w.Duration, w.Email, w.Location, w.Longitude, w.Latitude,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create wholesaler: %w", err)
	}
	return id, nil
}

// Exists matches on store name, location, coordinates and email. A missing
// location only matches another missing location.
func (r *WholesalerRepo) Exists(ctx context.Context, w *domain.Wholesaler) (bool, error) {
	ok, err := exists(ctx, r.exec, `
		SELECT 1 FROM wholesalers
		WHERE store_name = ? AND location IS NOT DISTINCT FROM ?
		  AND latitude = ? AND longitude = ? AND email = ?
		LIMIT 1`,
		w.StoreName, w.Location, w.Latitude, w.Longitude, w.Email,
	)
	if err != nil {
		return false, fmt.Errorf("failed to check wholesaler: %w", err)
	}
	return ok, nil
}

// All scans the whole directory.
func (r *WholesalerRepo) All(ctx context.Context) ([]domain.Wholesaler, error) {
	var out []domain.Wholesaler
	if err := r.exec.Select(ctx, &out, "SELECT "+wholesalerColumns+" FROM wholesalers ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to list wholesalers: %w", err)
	}
	return out, nil
}

func (r *WholesalerRepo) Update(ctx context.Context, id int64, u domain.WholesalerUpdate) (bool, error) {
	var a assignments
	a.set("store_name", u.StoreName)
	a.set("current_status", u.CurrentStatus)
	a.set("open_time", u.OpenTime)
	a.set("close_time", u.CloseTime)
	a.set("distance", u.Distance)
	a.set("duration", u.Duration)
	a.set("email", u.Email)
	a.set("location", u.Location)
	a.set("longitude", u.Longitude)
	a.set("latitude", u.Latitude)
	if a.empty() {
		return false, nil
	}

	query, args := a.statement("wholesalers", id)
	res, err := r.exec.ExecIdempotent(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update wholesaler: %w", err)
	}
	return res.RowsAffected > 0, nil
}

func (r *WholesalerRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.exec.Exec(ctx, "DELETE FROM wholesalers WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete wholesaler: %w", err)
	}
	return res.RowsAffected > 0, nil
}
