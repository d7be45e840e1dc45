package storage

import (
	"context"
	"time"

	"github.com/vietddude/sparki/internal/core/domain"
)

// Reads that find nothing return a nil entity and a nil error. Update and
// Delete report whether a row was affected.

// UserRepository handles account storage
type UserRepository interface {
	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByID retrieves a user by id
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// Create inserts a pending account and returns its id
	Create(ctx context.Context, user domain.NewUser) (int64, error)

	// Activate marks the account active and clears its OTP
	Activate(ctx context.Context, id int64) error

	// SetOTP stores a signup/login OTP and its issue time
	SetOTP(ctx context.Context, id int64, otp string, issuedAt time.Time) error

	// SetResetOTP stores the password reset OTP
	SetResetOTP(ctx context.Context, id int64, otp string) error

	// ResetPassword replaces the password hash and clears the reset OTP
	ResetPassword(ctx context.Context, id int64, passwordHash string) error

	// UpdateProfile applies the non-empty fields of update
	UpdateProfile(ctx context.Context, id int64, update domain.ProfileUpdate) (bool, error)

	// Delete removes the account
	Delete(ctx context.Context, id int64) (bool, error)

	// ClearExpiredOTPs drops OTPs issued before the cutoff
	ClearExpiredOTPs(ctx context.Context, before time.Time) (int64, error)
}

// EducationRepository handles education resources
type EducationRepository interface {
	Create(ctx context.Context, e *domain.Education) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Education, error)
	ExistsByTitle(ctx context.Context, title string) (bool, error)

	// List returns resources filed under level and category
	List(ctx context.Context, level, category string) ([]domain.Education, error)

	Update(ctx context.Context, id int64, update domain.EducationUpdate) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)

	// Categories returns the distinct non-empty categories
	Categories(ctx context.Context) ([]string, error)
}

// ContentRepository handles education content
type ContentRepository interface {
	Create(ctx context.Context, c *domain.EducationContent) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.EducationContent, error)
	ListByEducation(ctx context.Context, educationID int64) ([]domain.EducationContent, error)

	// ExistsForEducationOrAuthor reports whether content already exists for
	// the resource or by the author
	ExistsForEducationOrAuthor(ctx context.Context, educationID int64, author string) (bool, error)

	Update(ctx context.Context, id int64, author, content string) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// TrackRepository records which resources a user has read
type TrackRepository interface {
	Exists(ctx context.Context, userID, educationID int64) (bool, error)
	Create(ctx context.Context, userID, educationID int64) error
}

// QuestionRepository handles questions and their engagement
type QuestionRepository interface {
	Create(ctx context.Context, q *domain.Question) (int64, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ExistsByTitle(ctx context.Context, userID int64, title string) (bool, error)

	// ListByUser returns the user's questions, newest first
	ListByUser(ctx context.Context, userID int64) ([]domain.Question, error)

	// ListPage returns one page of all questions with their posters, newest first
	ListPage(ctx context.Context, limit, offset int) ([]domain.QuestionWithAuthor, error)

	// Counts returns likes, views and comments per question id
	Counts(ctx context.Context, ids []int64) (map[int64]domain.QuestionCounts, error)

	HasViewed(ctx context.Context, questionID, userID int64) (bool, error)
	AddView(ctx context.Context, questionID, userID int64) error
	HasLiked(ctx context.Context, questionID, userID int64) (bool, error)
	AddLike(ctx context.Context, questionID, userID int64) error
	RemoveLike(ctx context.Context, questionID, userID int64) (bool, error)
	AddComment(ctx context.Context, questionID, userID int64, comment string) (int64, error)
	Comments(ctx context.Context, questionID int64) ([]domain.QuestionComment, error)
}

// WholesalerRepository handles the wholesaler directory
type WholesalerRepository interface {
	Create(ctx context.Context, w *domain.Wholesaler) (int64, error)

	// Exists reports whether a wholesaler with the same store name, location,
	// coordinates and email is already listed
	Exists(ctx context.Context, w *domain.Wholesaler) (bool, error)

	// All returns every wholesaler
	All(ctx context.Context) ([]domain.Wholesaler, error)

	Update(ctx context.Context, id int64, update domain.WholesalerUpdate) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
