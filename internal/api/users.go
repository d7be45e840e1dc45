package api

import (
	"net/http"
	"strings"

	"github.com/vietddude/sparki/internal/core/domain"
)

type signupRequest struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	HearAboutUs *string `json:"hear_about_us"`
	UserType    string  `json:"user_type"`
}

type otpRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
	OTP         string `json:"otp"`
}

type deleteAccountRequest struct {
	ConfirmDeletion bool   `json:"confirmDeletion"`
	Password        string `json:"password"`
}

// account is returned after verification and login. Tokens are minted by
// the gateway, not here.
type account struct {
	ID             int64                  `json:"id"`
	Email          string                 `json:"email"`
	FullName       string                 `json:"fullName"`
	HearAboutUs    *string                `json:"hear_about_us"`
	TradeLevel     *string                `json:"trade_level"`
	AboutUs        *string                `json:"about_us"`
	ProfilePicture *string                `json:"profile_picture"`
	Account        domain.AccountStatus   `json:"account"`
	Location       domain.ProfileLocation `json:"location"`
	UserType       domain.UserType        `json:"userType"`
}

func accountOf(u *domain.User) account {
	return account{
		ID:             u.ID,
		Email:          u.Email,
		FullName:       u.FullName(),
		HearAboutUs:    u.HearAboutUs,
		TradeLevel:     u.TradeLevel,
		AboutUs:        u.AboutUs,
		ProfilePicture: u.ProfilePicture,
		Account:        u.Status,
		Location:       domain.ProfileLocation{Latitude: u.Latitude, Longitude: u.Longitude, Location: u.Location},
		UserType:       u.UserType,
	}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "No data received")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		fail(w, http.StatusBadRequest, "Email and Password are required")
		return
	}
	userType := domain.UserType(req.UserType)
	if !userType.Valid() {
		fail(w, http.StatusBadRequest, "Invalid user type")
		return
	}

	ctx := r.Context()
	existing, err := s.deps.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if existing != nil {
		fail(w, http.StatusBadRequest, "Email already exists")
		return
	}

	otp, err := s.deps.NewOTP()
	if err != nil {
		internalError(w, r, err)
		return
	}
	hash, err := s.deps.Hasher.Hash(req.Password)
	if err != nil {
		internalError(w, r, err)
		return
	}

	if _, err := s.deps.Users.Create(ctx, domain.NewUser{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
		HearAboutUs:  req.HearAboutUs,
		UserType:     userType,
		OTP:          otp,
		OTPIssuedAt:  s.deps.Clock(),
	}); err != nil {
		internalError(w, r, err)
		return
	}

	if err := s.deps.Mailer.SendOTP(ctx, OTPMessage{
		To:        req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Code:      otp,
		Purpose:   OTPSignup,
	}); err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "OTP sent to your email", nil)
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := decode(r, &req); err != nil || req.Email == "" || req.OTP == "" {
		fail(w, http.StatusBadRequest, "Email and OTP are required")
		return
	}

	ctx := r.Context()
	user, err := s.deps.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if user == nil {
		fail(w, http.StatusNotFound, "User not found")
		return
	}
	if user.Status == domain.AccountStatusActive {
		fail(w, http.StatusBadRequest, "User is already verified")
		return
	}
	if user.OTP == nil || *user.OTP != req.OTP {
		fail(w, http.StatusBadRequest, "Invalid OTP")
		return
	}
	if user.OTPExpired(s.deps.Clock(), s.cfg.OTPTTL) {
		fail(w, http.StatusBadRequest, "OTP expired")
		return
	}

	if err := s.deps.Users.Activate(ctx, user.ID); err != nil {
		internalError(w, r, err)
		return
	}
	user.Status = domain.AccountStatusActive
	respond(w, http.StatusOK, "User successfully verified and registered", accountOf(user))
}

func (s *Server) handleResendOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := decode(r, &req); err != nil || req.Email == "" {
		fail(w, http.StatusBadRequest, "Email is required")
		return
	}

	ctx := r.Context()
	user, err := s.deps.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if user == nil {
		fail(w, http.StatusNotFound, "Invalid email")
		return
	}
	if user.Status == domain.AccountStatusActive {
		respond(w, http.StatusOK, "User is already verified", nil)
		return
	}

	now := s.deps.Clock()
	var otp string
	if !user.OTPExpired(now, s.cfg.OTPTTL) {
		otp = *user.OTP
	} else if otp, err = s.deps.NewOTP(); err != nil {
		internalError(w, r, err)
		return
	}
	if !s.issueOTP(w, r, user, otp, OTPLogin) {
		return
	}
	respond(w, http.StatusOK, "OTP sent to your email", nil)
}

// issueOTP stores otp with a fresh issue time and mails it. It writes the
// error response itself and reports whether the caller may continue.
func (s *Server) issueOTP(w http.ResponseWriter, r *http.Request, user *domain.User, otp string, purpose OTPPurpose) bool {
	ctx := r.Context()
	if err := s.deps.Users.SetOTP(ctx, user.ID, otp, s.deps.Clock()); err != nil {
		internalError(w, r, err)
		return false
	}
	if err := s.deps.Mailer.SendOTP(ctx, OTPMessage{
		To:        user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Code:      otp,
		Purpose:   purpose,
	}); err != nil {
		internalError(w, r, err)
		return false
	}
	return true
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil || req.Email == "" || req.Password == "" {
		fail(w, http.StatusBadRequest, "Email and Password are required")
		return
	}

	user, err := s.deps.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if user == nil {
		fail(w, http.StatusNotFound, "Invalid credentials")
		return
	}
	if !s.deps.Hasher.Compare(user.PasswordHash, req.Password) {
		fail(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	if user.Status != domain.AccountStatusActive {
		otp, err := s.deps.NewOTP()
		if err != nil {
			internalError(w, r, err)
			return
		}
		if !s.issueOTP(w, r, user, otp, OTPLogin) {
			return
		}
		respond(w, http.StatusOK, "OTP sent to your email", nil)
		return
	}
	respond(w, http.StatusOK, "Login successful", accountOf(user))
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := decode(r, &req); err != nil || req.Email == "" {
		fail(w, http.StatusBadRequest, "Email is required")
		return
	}

	ctx := r.Context()
	user, err := s.deps.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if user == nil {
		fail(w, http.StatusNotFound, "User with this email does not exist")
		return
	}

	otp, err := s.deps.NewOTP()
	if err != nil {
		internalError(w, r, err)
		return
	}
	if err := s.deps.Users.SetResetOTP(ctx, user.ID, otp); err != nil {
		internalError(w, r, err)
		return
	}
	if err := s.deps.Mailer.SendOTP(ctx, OTPMessage{
		To:        user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Code:      otp,
		Purpose:   OTPResetPassword,
	}); err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Password reset OTP sent to your email", nil)
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decode(r, &req); err != nil || req.Email == "" || req.OTP == "" || req.NewPassword == "" {
		fail(w, http.StatusBadRequest, "Email, OTP and new password are required")
		return
	}

	ctx := r.Context()
	user, err := s.deps.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if user == nil {
		fail(w, http.StatusNotFound, "User with this email does not exist")
		return
	}
	if user.ResetOTP == nil || *user.ResetOTP != req.OTP {
		fail(w, http.StatusBadRequest, "Invalid OTP")
		return
	}

	hash, err := s.deps.Hasher.Hash(req.NewPassword)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if err := s.deps.Users.ResetPassword(ctx, user.ID, hash); err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Password reset successfully", nil)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	user, err := s.deps.Users.GetByID(r.Context(), p.UserID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if user == nil {
		fail(w, http.StatusNotFound, "User not found.")
		return
	}
	respond(w, http.StatusOK, "User profile retrieved successfully", user.Profile())
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	var update domain.ProfileUpdate
	if err := decode(r, &update); err != nil || update.Empty() {
		fail(w, http.StatusBadRequest, "At least one field is required for update.")
		return
	}

	ok, err := s.deps.Users.UpdateProfile(r.Context(), p.UserID, update)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if !ok {
		fail(w, http.StatusNotFound, "User not found or no changes were made.")
		return
	}
	respond(w, http.StatusOK, "Profile updated successfully.", nil)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	var req deleteAccountRequest
	if err := decode(r, &req); err != nil || !req.ConfirmDeletion {
		fail(w, http.StatusBadRequest, "Please confirm account deletion.")
		return
	}

	ctx := r.Context()
	user, err := s.deps.Users.GetByID(ctx, p.UserID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if user == nil {
		fail(w, http.StatusNotFound, "User not found.")
		return
	}
	if user.Status != domain.AccountStatusActive {
		fail(w, http.StatusForbidden, "Only active accounts can be deleted.")
		return
	}
	if !s.deps.Hasher.Compare(user.PasswordHash, req.Password) {
		fail(w, http.StatusUnauthorized, "Incorrect password.")
		return
	}
	if s.deps.Clock().Sub(user.CreatedAt) < s.cfg.MinAccountAge {
		fail(w, http.StatusForbidden, "Account must be at least 30 days old to be deleted.")
		return
	}

	if _, err := s.deps.Users.Delete(ctx, user.ID); err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Account deleted successfully.", nil)
}
