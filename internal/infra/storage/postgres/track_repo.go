package postgres

import (
	"context"
	"fmt"
)

// TrackRepo implements storage.TrackRepository using PostgreSQL.
type TrackRepo struct {
	exec *Executor
}

// NewTrackRepo creates a new PostgreSQL read-tracking repository.
func NewTrackRepo(exec *Executor) *TrackRepo {
	return &TrackRepo{exec: exec}
}

// Exists reports whether the user has read the resource.
func (r *TrackRepo) Exists(ctx context.Context, userID, educationID int64) (bool, error) {
	ok, err := exists(ctx, r.exec,
		"SELECT 1 FROM education_user_track WHERE user_id = ? AND education_id = ? LIMIT 1",
		userID, educationID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to check education track: %w", err)
	}
	return ok, nil
}

// Create records a read.
func (r *TrackRepo) Create(ctx context.Context, userID, educationID int64) error {
	_, err := r.exec.Exec(ctx,
		"INSERT INTO education_user_track (user_id, education_id) VALUES (?, ?)",
		userID, educationID,
	)
	if err != nil {
		return fmt.Errorf("failed to create education track: %w", err)
	}
	return nil
}
