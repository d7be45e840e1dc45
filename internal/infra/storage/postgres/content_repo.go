package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vietddude/sparki/internal/core/domain"
)

const contentColumns = "id, education_id, author, content, created_at"

// ContentRepo implements storage.ContentRepository using PostgreSQL.
type ContentRepo struct {
	exec *Executor
}

// NewContentRepo creates a new PostgreSQL education content repository.
func NewContentRepo(exec *Executor) *ContentRepo {
	return &ContentRepo{exec: exec}
}

func (r *ContentRepo) Create(ctx context.Context, c *domain.EducationContent) (int64, error) {
	var id int64
	err := r.exec.InsertReturning(ctx, &id,
		"INSERT INTO education_content (education_id, author, content) VALUES (?, ?, ?) RETURNING id",
		c.EducationID, c.Author, c.Content,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create education content: %w", err)
	}
	return id, nil
}

func (r *ContentRepo) GetByID(ctx context.Context, id int64) (*domain.EducationContent, error) {
	var c domain.EducationContent
	err := r.exec.Get(ctx, &c, "SELECT "+contentColumns+" FROM education_content WHERE id = ? LIMIT 1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get education content: %w", err)
	}
	return &c, nil
}

func (r *ContentRepo) ListByEducation(ctx context.Context, educationID int64) ([]domain.EducationContent, error) {
	var out []domain.EducationContent
	err := r.exec.Select(ctx, &out,
		"SELECT "+contentColumns+" FROM education_content WHERE education_id = ? ORDER BY id",
		educationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list education content: %w", err)
	}
	return out, nil
}

func (r *ContentRepo) ExistsForEducationOrAuthor(ctx context.Context, educationID int64, author string) (bool, error) {
	ok, err := exists(ctx, r.exec,
		"SELECT 1 FROM education_content WHERE education_id = ? OR author = ? LIMIT 1",
		educationID, author,
	)
	if err != nil {
		return false, fmt.Errorf("failed to check education content: %w", err)
	}
	return ok, nil
}

func (r *ContentRepo) Update(ctx context.Context, id int64, author, content string) (bool, error) {
	res, err := r.exec.ExecIdempotent(ctx,
		"UPDATE education_content SET author = ?, content = ? WHERE id = ?",
		author, content, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update education content: %w", err)
	}
	return res.RowsAffected > 0, nil
}

func (r *ContentRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.exec.Exec(ctx, "DELETE FROM education_content WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete education content: %w", err)
	}
	return res.RowsAffected > 0, nil
}
