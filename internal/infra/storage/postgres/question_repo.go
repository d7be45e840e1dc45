package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/sourcegraph/conc/pool"

	"github.com/vietddude/sparki/internal/core/domain"
)

const questionColumns = "q.id, q.user_id, q.title, q.details, q.tags, q.posted_at"

// QuestionRepo implements storage.QuestionRepository using PostgreSQL.
type QuestionRepo struct {
	exec *Executor
}

// NewQuestionRepo creates a new PostgreSQL question repository.
func NewQuestionRepo(exec *Executor) *QuestionRepo {
	return &QuestionRepo{exec: exec}
}

// Create inserts a question posted now.
func (r *QuestionRepo) Create(ctx context.Context, q *domain.Question) (int64, error) {
	var id int64
	err := r.exec.InsertReturning(ctx, &id,
		"INSERT INTO questions (title, details, user_id, tags, posted_at) VALUES (?, ?, ?, ?, NOW()) RETURNING id",
		q.Title, q.Details, q.UserID, q.Tags,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create question: %w", err)
	}
	return id, nil
}

func (r *QuestionRepo) Exists(ctx context.Context, id int64) (bool, error) {
	ok, err := exists(ctx, r.exec, "SELECT 1 FROM questions WHERE id = ? LIMIT 1", id)
	if err != nil {
		return false, fmt.Errorf("failed to check question: %w", err)
	}
	return ok, nil
}

func (r *QuestionRepo) ExistsByTitle(ctx context.Context, userID int64, title string) (bool, error) {
	ok, err := exists(ctx, r.exec,
		"SELECT 1 FROM questions WHERE title = ? AND user_id = ? LIMIT 1",
		title, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to check question title: %w", err)
	}
	return ok, nil
}

func (r *QuestionRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Question, error) {
	var out []domain.Question
	err := r.exec.Select(ctx, &out,
		"SELECT "+questionColumns+" FROM questions q WHERE q.user_id = ? ORDER BY q.posted_at DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list user questions: %w", err)
	}
	return out, nil
}

func (r *QuestionRepo) ListPage(ctx context.Context, limit, offset int) ([]domain.QuestionWithAuthor, error) {
	var out []domain.QuestionWithAuthor
	err := r.exec.Select(ctx, &out, `
		SELECT `+questionColumns+`, u.first_name, u.last_name, u.profile_picture
		FROM questions q
		JOIN users u ON q.user_id = u.id
		ORDER BY q.posted_at DESC
		LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return out, nil
}

type questionCount struct {
	QuestionID int64 `db:"question_id"`
	N          int64 `db:"n"`
}

// Counts runs the likes, views and comments aggregates concurrently. Ids with
// no rows are absent from the result.
func (r *QuestionRepo) Counts(ctx context.Context, ids []int64) (map[int64]domain.QuestionCounts, error) {
	out := make(map[int64]domain.QuestionCounts, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var likes, views, comments []questionCount
	count := func(table string, dest *[]questionCount) func(context.Context) error {
		return func(ctx context.Context) error {
			return r.exec.Select(ctx, dest,
				"SELECT question_id, COUNT(*) AS n FROM "+table+" WHERE question_id = ANY(?) GROUP BY question_id",
				pq.Array(ids),
			)
		}
	}

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(count("question_likes", &likes))
	p.Go(count("question_views", &views))
	p.Go(count("question_comments", &comments))
	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("failed to count question engagement: %w", err)
	}

	for _, c := range likes {
		qc := out[c.QuestionID]
		qc.Likes = c.N
		out[c.QuestionID] = qc
	}
	for _, c := range views {
		qc := out[c.QuestionID]
		qc.Views = c.N
		out[c.QuestionID] = qc
	}
	for _, c := range comments {
		qc := out[c.QuestionID]
		qc.Comments = c.N
		out[c.QuestionID] = qc
	}
	return out, nil
}

func (r *QuestionRepo) HasViewed(ctx context.Context, questionID, userID int64) (bool, error) {
	ok, err := exists(ctx, r.exec,
		"SELECT 1 FROM question_views WHERE question_id = ? AND user_id = ? LIMIT 1",
		questionID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to check question view: %w", err)
	}
	return ok, nil
}

func (r *QuestionRepo) AddView(ctx context.Context, questionID, userID int64) error {
	_, err := r.exec.Exec(ctx,
		"INSERT INTO question_views (question_id, user_id) VALUES (?, ?)",
		questionID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to add question view: %w", err)
	}
	return nil
}

func (r *QuestionRepo) HasLiked(ctx context.Context, questionID, userID int64) (bool, error) {
	ok, err := exists(ctx, r.exec,
		"SELECT 1 FROM question_likes WHERE question_id = ? AND user_id = ? LIMIT 1",
		questionID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to check question like: %w", err)
	}
	return ok, nil
}

func (r *QuestionRepo) AddLike(ctx context.Context, questionID, userID int64) error {
	_, err := r.exec.Exec(ctx,
		"INSERT INTO question_likes (question_id, user_id) VALUES (?, ?)",
		questionID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to add question like: %w", err)
	}
	return nil
}

func (r *QuestionRepo) RemoveLike(ctx context.Context, questionID, userID int64) (bool, error) {
	res, err := r.exec.Exec(ctx,
		"DELETE FROM question_likes WHERE question_id = ? AND user_id = ?",
		questionID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove question like: %w", err)
	}
	return res.RowsAffected > 0, nil
}

func (r *QuestionRepo) AddComment(ctx context.Context, questionID, userID int64, comment string) (int64, error) {
	var id int64
	err := r.exec.InsertReturning(ctx, &id,
		"INSERT INTO question_comments (question_id, user_id, comment, posted_at) VALUES (?, ?, ?, NOW()) RETURNING id",
		questionID, userID, comment,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to add question comment: %w", err)
	}
	return id, nil
}

func (r *QuestionRepo) Comments(ctx context.Context, questionID int64) ([]domain.QuestionComment, error) {
	var out []domain.QuestionComment
	err := r.exec.Select(ctx, &out, `
		SELECT qc.id, qc.comment, qc.posted_at, u.first_name, u.last_name, u.profile_picture
		FROM question_comments qc
		JOIN users u ON qc.user_id = u.id
		WHERE qc.question_id = ?
		ORDER BY qc.posted_at DESC`,
		questionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list question comments: %w", err)
	}
	return out, nil
}
