package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/vietddude/sparki/internal/infra/storage"
)

// Config holds API server settings.
type Config struct {
	Port           int
	RateLimit      float64
	RateLimitBurst int
	OTPTTL         time.Duration
	MinAccountAge  time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 3000
	}
	if c.RateLimit == 0 {
		c.RateLimit = 100
	}
	if c.RateLimitBurst == 0 {
		c.RateLimitBurst = 200
	}
	if c.OTPTTL == 0 {
		c.OTPTTL = 5 * time.Minute
	}
	if c.MinAccountAge == 0 {
		c.MinAccountAge = 30 * 24 * time.Hour
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 30 * time.Second
	}
}

// Deps are the collaborators the handlers use.
type Deps struct {
	Users       storage.UserRepository
	Education   storage.EducationRepository
	Content     storage.ContentRepository
	Tracks      storage.TrackRepository
	Questions   storage.QuestionRepository
	Wholesalers storage.WholesalerRepository

	Hasher PasswordHasher
	Mailer Mailer
	Clock  Clock
	NewOTP func() (string, error)
}

// Server serves the community API.
type Server struct {
	cfg        Config
	deps       Deps
	limiter    *rate.Limiter
	httpServer *http.Server
}

// NewServer creates the API server.
func NewServer(cfg Config, deps Deps) *Server {
	cfg.applyDefaults()
	if deps.Hasher == nil {
		deps.Hasher = BcryptHasher{}
	}
	if deps.Mailer == nil {
		deps.Mailer = LogMailer{}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.NewOTP == nil {
		deps.NewOTP = NewOTP
	}

	s := &Server{
		cfg:     cfg,
		deps:    deps,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst),
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	public := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, s.withMiddleware(pattern, h))
	}
	user := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, s.withMiddleware(pattern, authMiddleware(h)))
	}
	admin := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, s.withMiddleware(pattern, adminMiddleware(h)))
	}

	public("POST /api/user/signup", s.handleSignup)
	public("POST /api/user/verify_otp", s.handleVerifyOTP)
	public("POST /api/user/resend_otp", s.handleResendOTP)
	public("POST /api/user/login", s.handleLogin)
	public("POST /api/user/forgotPassword", s.handleForgotPassword)
	public("POST /api/user/resetPassword", s.handleResetPassword)
	user("GET /api/user/getProfile", s.handleGetProfile)
	user("PATCH /api/user/updateProfile", s.handleUpdateProfile)
	user("DELETE /api/user/deleteAccount", s.handleDeleteAccount)

	admin("POST /api/wholesaler/addWholesaler", s.handleAddWholesaler)
	user("GET /api/wholesaler/getWholesalers/{latitude}/{longitude}", s.handleGetWholesalers)
	admin("PATCH /api/wholesaler/updateWholesaler/{id}", s.handleUpdateWholesaler)
	admin("DELETE /api/wholesaler/deleteWholesaler/{id}", s.handleDeleteWholesaler)

	admin("POST /api/education/addEducationResource", s.handleAddEducation)
	user("GET /api/education/getEducationResources", s.handleGetEducation)
	admin("PATCH /api/education/updateEducationResources/{id}", s.handleUpdateEducation)
	admin("DELETE /api/education/deleteEducationResources/{id}", s.handleDeleteEducation)
	user("GET /api/education/getEducationFilter", s.handleEducationFilter)
	admin("POST /api/education/addEducationResourceContent", s.handleAddContent)
	user("GET /api/education/getEducationResourceContent/{id}", s.handleGetContent)
	admin("PATCH /api/education/updateEducationResourceContent/{id}", s.handleUpdateContent)
	admin("DELETE /api/education/deleteEducationResourcesContent/{id}", s.handleDeleteContent)
	user("POST /api/education/addEducationUserTrack", s.handleAddTrack)

	user("POST /api/question/addQuestion", s.handleAddQuestion)
	user("POST /api/question/addQuestionsViews", s.handleAddQuestionView)
	user("POST /api/question/addQuestionLikes", s.handleAddQuestionLike)
	user("POST /api/question/removeQuestionLikes", s.handleRemoveQuestionLike)
	user("POST /api/question/addQuestionComments", s.handleAddQuestionComment)
	user("GET /api/question/getCurrentUserPostedQuestions", s.handleUserQuestions)
	user("GET /api/question/getAllQuestions", s.handleAllQuestions)
	user("GET /api/question/getQuestionComments", s.handleQuestionComments)

	return mux
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	slog.Info("API server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
