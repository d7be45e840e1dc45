package api

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = 10
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

func (h BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// OTPPurpose says why a code was sent.
type OTPPurpose string

const (
	OTPSignup        OTPPurpose = "Signup"
	OTPLogin         OTPPurpose = "Login"
	OTPResetPassword OTPPurpose = "Reset Password"
)

// OTPMessage is one code delivery.
type OTPMessage struct {
	To        string
	FirstName string
	LastName  string
	Code      string
	Purpose   OTPPurpose
}

// Mailer delivers OTP codes.
type Mailer interface {
	SendOTP(ctx context.Context, msg OTPMessage) error
}

// LogMailer logs deliveries instead of sending them. The code itself is
// never logged.
type LogMailer struct{}

func (LogMailer) SendOTP(ctx context.Context, msg OTPMessage) error {
	slog.Info("OTP issued", "to", msg.To, "purpose", string(msg.Purpose))
	return nil
}

// Clock returns the current time.
type Clock func() time.Time

var otpRange = big.NewInt(900000)

// NewOTP returns a random six digit code.
func NewOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpRange)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
