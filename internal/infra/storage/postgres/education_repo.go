package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vietddude/sparki/internal/core/domain"
)

const educationColumns = "id, title, description, read_time, icon, category, level, created_at"

// EducationRepo implements storage.EducationRepository using PostgreSQL.
type EducationRepo struct {
	exec *Executor
}

// NewEducationRepo creates a new PostgreSQL education repository.
func NewEducationRepo(exec *Executor) *EducationRepo {
	return &EducationRepo{exec: exec}
}

func (r *EducationRepo) Create(ctx context.Context, e *domain.Education) (int64, error) {
	var id int64
	err := r.exec.InsertReturning(ctx, &id, `
		INSERT INTO education (title, description, read_time, icon, category, level)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		e.Title, e.Description, e.ReadTime, e.Icon, e.Category, e.Level,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create education resource: %w", err)
	}
	return id, nil
}

func (r *EducationRepo) GetByID(ctx context.Context, id int64) (*domain.Education, error) {
	var e domain.Education
	err := r.exec.Get(ctx, &e, "SELECT "+educationColumns+" FROM education WHERE id = ? LIMIT 1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get education resource: %w", err)
	}
	return &e, nil
}

func (r *EducationRepo) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	ok, err := exists(ctx, r.exec, "SELECT 1 FROM education WHERE title = ? LIMIT 1", title)
	if err != nil {
		return false, fmt.Errorf("failed to check education title: %w", err)
	}
	return ok, nil
}

func (r *EducationRepo) List(ctx context.Context, level, category string) ([]domain.Education, error) {
	var out []domain.Education
	err := r.exec.Select(ctx, &out,
		"SELECT "+educationColumns+" FROM education WHERE level = ? AND category = ? ORDER BY id",
		level, category,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list education resources: %w", err)
	}
	return out, nil
}

func (r *EducationRepo) Update(ctx context.Context, id int64, u domain.EducationUpdate) (bool, error) {
	var a assignments
	a.set("title", u.Title)
	a.set("description", u.Description)
	a.set("read_time", u.ReadTime)
	a.set("icon", u.Icon)
	a.set("category", u.Category)
	a.set("level", u.Level)
	if a.empty() {
		return false, nil
	}

	query, args := a.statement("education", id)
	res, err := r.exec.ExecIdempotent(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update education resource: %w", err)
	}
	return res.RowsAffected > 0, nil
}

func (r *EducationRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.exec.Exec(ctx, "DELETE FROM education WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete education resource: %w", err)
	}
	return res.RowsAffected > 0, nil
}

func (r *EducationRepo) Categories(ctx context.Context) ([]string, error) {
	var out []string
	err := r.exec.Select(ctx, &out,
		"SELECT DISTINCT category FROM education WHERE category <> '' ORDER BY category",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return out, nil
}

// exists runs a SELECT 1 probe.
func exists(ctx context.Context, exec *Executor, query string, args ...any) (bool, error) {
	var one int
	err := exec.Get(ctx, &one, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
