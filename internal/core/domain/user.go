package domain

import (
	"time"
)

type UserType string

const (
	UserTypeAdmin   UserType = "admin"
	UserTypeVisitor UserType = "visitor"
)

// Valid reports whether t is a type accepted at signup.
func (t UserType) Valid() bool {
	return t == UserTypeAdmin || t == UserTypeVisitor
}

type AccountStatus string

const (
	AccountStatusPending AccountStatus = "pending"
	AccountStatusActive  AccountStatus = "active"
)

// User represents a registered account
type User struct {
	ID             int64         `db:"id"`
	FirstName      string        `db:"first_name"`
	LastName       string        `db:"last_name"`
	Email          string        `db:"email"`
	PasswordHash   string        `db:"password"`
	HearAboutUs    *string       `db:"hear_about_us"`
	UserType       UserType      `db:"user_type"`
	Status         AccountStatus `db:"status"`
	TradeLevel     *string       `db:"trade_level"`
	Latitude       *string       `db:"latitude"`
	Longitude      *string       `db:"longitude"`
	Location       *string       `db:"location"`
	ProfilePicture *string       `db:"profile_picture"`
	AboutUs        *string       `db:"about_us"`
	OTP            *string       `db:"otp"`
	OTPIssuedAt    *time.Time    `db:"otp_issued_at"`
	ResetOTP       *string       `db:"reset_otp"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

// FullName joins first and last name the way listings display it.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// OTPValid reports whether code matches the pending OTP and was issued
// within ttl of now.
func (u *User) OTPValid(code string, now time.Time, ttl time.Duration) bool {
	if u.OTP == nil || *u.OTP != code {
		return false
	}
	return !u.OTPExpired(now, ttl)
}

// OTPExpired reports whether the pending OTP is missing or older than ttl.
func (u *User) OTPExpired(now time.Time, ttl time.Duration) bool {
	if u.OTP == nil || u.OTPIssuedAt == nil {
		return true
	}
	return now.Sub(*u.OTPIssuedAt) > ttl
}

// NewUser holds the columns written at signup.
type NewUser struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	HearAboutUs  *string
	UserType     UserType
	OTP          string
	OTPIssuedAt  time.Time
}

// ProfileUpdate carries the editable profile columns. Nil fields are left
// untouched.
type ProfileUpdate struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	TradeLevel     *string `json:"trade_level"`
	Latitude       *string `json:"latitude"`
	Longitude      *string `json:"longitude"`
	Location       *string `json:"location"`
	ProfilePicture *string `json:"profile_picture"`
	AboutUs        *string `json:"about_us"`
}

// Empty reports whether no non-empty field was supplied.
func (p ProfileUpdate) Empty() bool {
	for _, v := range []*string{
		p.FirstName, p.LastName, p.TradeLevel, p.Latitude,
		p.Longitude, p.Location, p.ProfilePicture, p.AboutUs,
	} {
		if v != nil && *v != "" {
			return false
		}
	}
	return true
}

// ProfileLocation groups the coordinates shown on a profile.
type ProfileLocation struct {
	Latitude  *string `json:"latitude"`
	Longitude *string `json:"longitude"`
	Location  *string `json:"location"`
}

// Profile is the public view of a user.
type Profile struct {
	ID             int64           `json:"id"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	Email          string          `json:"email"`
	HearAboutUs    *string         `json:"hear_about_us"`
	TradeLevel     *string         `json:"trade_level"`
	Location       ProfileLocation `json:"location"`
	ProfilePicture *string         `json:"profile_picture"`
	Status         AccountStatus   `json:"status"`
	UserType       UserType        `json:"user_type"`
	AboutUs        *string         `json:"about_us"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		HearAboutUs:    u.HearAboutUs,
		TradeLevel:     u.TradeLevel,
		Location:       ProfileLocation{Latitude: u.Latitude, Longitude: u.Longitude, Location: u.Location},
		ProfilePicture: u.ProfilePicture,
		Status:         u.Status,
		UserType:       u.UserType,
		AboutUs:        u.AboutUs,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// Principal is the caller identity forwarded by the gateway.
type Principal struct {
	UserID   int64
	UserType UserType
}

func (p Principal) IsAdmin() bool {
	return p.UserType == UserTypeAdmin
}
