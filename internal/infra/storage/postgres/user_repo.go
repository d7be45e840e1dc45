package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vietddude/sparki/internal/core/domain"
)

const userColumns = `id, first_name, last_name, email, password, hear_about_us, user_type,
	status, trade_level, latitude, longitude, location, profile_picture, about_us,
	otp, otp_issued_at, reset_otp, created_at, updated_at`

// UserRepo implements storage.UserRepository using PostgreSQL.
type UserRepo struct {
	exec *Executor
}

// NewUserRepo creates a new PostgreSQL user repository.
func NewUserRepo(exec *Executor) *UserRepo {
	return &UserRepo{exec: exec}
}

func (r *UserRepo) get(ctx context.Context, where string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.exec.Get(ctx, &u, "SELECT "+userColumns+" FROM users WHERE "+where+" LIMIT 1", arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := r.get(ctx, "email = ?", email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := r.get(ctx, "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// Create inserts a pending account.
func (r *UserRepo) Create(ctx context.Context, u domain.NewUser) (int64, error) {
	var id int64
	err := r.exec.InsertReturning(ctx, &id, `
		INSERT INTO users (first_name, last_name, email, password, hear_about_us, user_type, status, otp, otp_issued_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		u.FirstName, u.LastName, u.Email, u.PasswordHash, u.HearAboutUs,
		string(u.UserType), string(domain.AccountStatusPending), u.OTP, u.OTPIssuedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

// Activate marks the account active.
func (r *UserRepo) Activate(ctx context.Context, id int64) error {
	_, err := r.exec.ExecIdempotent(ctx,
		"UPDATE users SET status = ?, otp = NULL, otp_issued_at = NULL, updated_at = NOW() WHERE id = ?",
		string(domain.AccountStatusActive), id,
	)
	if err != nil {
		return fmt.Errorf("failed to activate user: %w", err)
	}
	return nil
}

// SetOTP stores a fresh OTP.
func (r *UserRepo) SetOTP(ctx context.Context, id int64, otp string, issuedAt time.Time) error {
	_, err := r.exec.ExecIdempotent(ctx,
		"UPDATE users SET otp = ?, otp_issued_at = ? WHERE id = ?",
		otp, issuedAt, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set otp: %w", err)
	}
	return nil
}

// SetResetOTP stores the password reset OTP.
func (r *UserRepo) SetResetOTP(ctx context.Context, id int64, otp string) error {
	_, err := r.exec.ExecIdempotent(ctx, "UPDATE users SET reset_otp = ? WHERE id = ?", otp, id)
	if err != nil {
		return fmt.Errorf("failed to set reset otp: %w", err)
	}
	return nil
}

// ResetPassword replaces the password and invalidates the reset OTP.
func (r *UserRepo) ResetPassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.exec.ExecIdempotent(ctx,
		"UPDATE users SET password = ?, reset_otp = NULL, updated_at = NOW() WHERE id = ?",
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return nil
}

// UpdateProfile applies the non-empty profile fields and bumps updated_at.
func (r *UserRepo) UpdateProfile(ctx context.Context, id int64, p domain.ProfileUpdate) (bool, error) {
	var a assignments
	a.setNonEmpty("first_name", p.FirstName)
	a.setNonEmpty("last_name", p.LastName)
	a.setNonEmpty("trade_level", p.TradeLevel)
	a.setNonEmpty("latitude", p.Latitude)
	a.setNonEmpty("longitude", p.Longitude)
	a.setNonEmpty("profile_picture", p.ProfilePicture)
	a.setNonEmpty("about_us", p.AboutUs)
	a.setNonEmpty("location", p.Location)
	if a.empty() {
		return false, nil
	}

	query, args := a.statement("users", id, "updated_at = NOW()")
	res, err := r.exec.ExecIdempotent(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update profile: %w", err)
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the account. Rows owned by it cascade.
func (r *UserRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.exec.Exec(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return res.RowsAffected > 0, nil
}

// ClearExpiredOTPs drops OTPs issued before the cutoff.
func (r *UserRepo) ClearExpiredOTPs(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.exec.ExecIdempotent(ctx,
		"UPDATE users SET otp = NULL, otp_issued_at = NULL WHERE otp IS NOT NULL AND otp_issued_at < ?",
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired otps: %w", err)
	}
	return res.RowsAffected, nil
}
