package api

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/sparki/internal/core/domain"
)

// =============================================================================
// Stub repositories
// =============================================================================

type stubUsers struct {
	mu       sync.Mutex
	byID     map[int64]*domain.User
	nextID   int64
	created  []domain.NewUser
	otps     map[int64]string
	resetOTP map[int64]string
	err      error
}

func newStubUsers(users ...*domain.User) *stubUsers {
	s := &stubUsers{
		byID:     map[int64]*domain.User{},
		nextID:   100,
		otps:     map[int64]string{},
		resetOTP: map[int64]string{},
	}
	for _, u := range users {
		s.byID[u.ID] = u
	}
	return s
}

func (s *stubUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *stubUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *stubUsers) Create(ctx context.Context, nu domain.NewUser) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.created = append(s.created, nu)
	otp, issued := nu.OTP, nu.OTPIssuedAt
	s.byID[s.nextID] = &domain.User{
		ID:           s.nextID,
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		UserType:     nu.UserType,
		Status:       domain.AccountStatusPending,
		OTP:          &otp,
		OTPIssuedAt:  &issued,
	}
	return s.nextID, nil
}

func (s *stubUsers) Activate(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID[id]; ok {
		u.Status = domain.AccountStatusActive
		u.OTP = nil
	}
	return nil
}

func (s *stubUsers) SetOTP(ctx context.Context, id int64, otp string, issuedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.otps[id] = otp
	if u, ok := s.byID[id]; ok {
		u.OTP = &otp
		u.OTPIssuedAt = &issuedAt
	}
	return nil
}

func (s *stubUsers) SetResetOTP(ctx context.Context, id int64, otp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetOTP[id] = otp
	if u, ok := s.byID[id]; ok {
		u.ResetOTP = &otp
	}
	return nil
}

func (s *stubUsers) ResetPassword(ctx context.Context, id int64, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID[id]; ok {
		u.PasswordHash = hash
		u.ResetOTP = nil
	}
	return nil
}

func (s *stubUsers) UpdateProfile(ctx context.Context, id int64, update domain.ProfileUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	if update.FirstName != nil {
		u.FirstName = *update.FirstName
	}
	return true, nil
}

func (s *stubUsers) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byID[id]
	delete(s.byID, id)
	return ok, nil
}

func (s *stubUsers) ClearExpiredOTPs(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type stubWholesalers struct {
	all     []domain.Wholesaler
	dup     bool
	created []*domain.Wholesaler
	found   bool
	err     error
}

func (s *stubWholesalers) Create(ctx context.Context, w *domain.Wholesaler) (int64, error) {
	s.created = append(s.created, w)
	return int64(len(s.created)), nil
}

func (s *stubWholesalers) Exists(ctx context.Context, w *domain.Wholesaler) (bool, error) {
	return s.dup, nil
}

func (s *stubWholesalers) All(ctx context.Context) ([]domain.Wholesaler, error) {
	return s.all, s.err
}

func (s *stubWholesalers) Update(ctx context.Context, id int64, u domain.WholesalerUpdate) (bool, error) {
	return s.found, nil
}

func (s *stubWholesalers) Delete(ctx context.Context, id int64) (bool, error) {
	return s.found, nil
}

type stubEducation struct {
	byID       map[int64]*domain.Education
	titles     map[string]bool
	list       []domain.Education
	categories []string
	created    []*domain.Education
	updated    bool
}

func (s *stubEducation) Create(ctx context.Context, e *domain.Education) (int64, error) {
	s.created = append(s.created, e)
	return int64(len(s.created)), nil
}

func (s *stubEducation) GetByID(ctx context.Context, id int64) (*domain.Education, error) {
	return s.byID[id], nil
}

func (s *stubEducation) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	return s.titles[title], nil
}

func (s *stubEducation) List(ctx context.Context, level, category string) ([]domain.Education, error) {
	return s.list, nil
}

func (s *stubEducation) Update(ctx context.Context, id int64, u domain.EducationUpdate) (bool, error) {
	return s.updated, nil
}

func (s *stubEducation) Delete(ctx context.Context, id int64) (bool, error) {
	_, ok := s.byID[id]
	return ok, nil
}

func (s *stubEducation) Categories(ctx context.Context) ([]string, error) {
	return s.categories, nil
}

type stubContent struct {
	content []domain.EducationContent
	exists  bool
	created []*domain.EducationContent
}

func (s *stubContent) Create(ctx context.Context, c *domain.EducationContent) (int64, error) {
	s.created = append(s.created, c)
	return 1, nil
}

func (s *stubContent) GetByID(ctx context.Context, id int64) (*domain.EducationContent, error) {
	return nil, nil
}

func (s *stubContent) ListByEducation(ctx context.Context, educationID int64) ([]domain.EducationContent, error) {
	return s.content, nil
}

func (s *stubContent) ExistsForEducationOrAuthor(ctx context.Context, educationID int64, author string) (bool, error) {
	return s.exists, nil
}

func (s *stubContent) Update(ctx context.Context, id int64, author, content string) (bool, error) {
	return false, nil
}

func (s *stubContent) Delete(ctx context.Context, id int64) (bool, error) {
	return false, nil
}

type stubTracks struct {
	tracked map[[2]int64]bool
}

func (s *stubTracks) Exists(ctx context.Context, userID, educationID int64) (bool, error) {
	return s.tracked[[2]int64{userID, educationID}], nil
}

func (s *stubTracks) Create(ctx context.Context, userID, educationID int64) error {
	if s.tracked == nil {
		s.tracked = map[[2]int64]bool{}
	}
	s.tracked[[2]int64{userID, educationID}] = true
	return nil
}

type stubQuestions struct {
	existing map[int64]bool
	titles   map[string]bool
	byUser   []domain.Question
	page     []domain.QuestionWithAuthor
	counts   map[int64]domain.QuestionCounts
	views    map[[2]int64]bool
	likes    map[[2]int64]bool
	comments []domain.QuestionComment
	created  []*domain.Question

	pageLimit, pageOffset int
}

func newStubQuestions() *stubQuestions {
	return &stubQuestions{
		existing: map[int64]bool{},
		titles:   map[string]bool{},
		counts:   map[int64]domain.QuestionCounts{},
		views:    map[[2]int64]bool{},
		likes:    map[[2]int64]bool{},
	}
}

func (s *stubQuestions) Create(ctx context.Context, q *domain.Question) (int64, error) {
	s.created = append(s.created, q)
	return 77, nil
}

func (s *stubQuestions) Exists(ctx context.Context, id int64) (bool, error) {
	return s.existing[id], nil
}

func (s *stubQuestions) ExistsByTitle(ctx context.Context, userID int64, title string) (bool, error) {
	return s.titles[title], nil
}

func (s *stubQuestions) ListByUser(ctx context.Context, userID int64) ([]domain.Question, error) {
	return s.byUser, nil
}

func (s *stubQuestions) ListPage(ctx context.Context, limit, offset int) ([]domain.QuestionWithAuthor, error) {
	s.pageLimit, s.pageOffset = limit, offset
	return s.page, nil
}

func (s *stubQuestions) Counts(ctx context.Context, ids []int64) (map[int64]domain.QuestionCounts, error) {
	return s.counts, nil
}

func (s *stubQuestions) HasViewed(ctx context.Context, questionID, userID int64) (bool, error) {
	return s.views[[2]int64{questionID, userID}], nil
}

func (s *stubQuestions) AddView(ctx context.Context, questionID, userID int64) error {
	s.views[[2]int64{questionID, userID}] = true
	return nil
}

func (s *stubQuestions) HasLiked(ctx context.Context, questionID, userID int64) (bool, error) {
	return s.likes[[2]int64{questionID, userID}], nil
}

func (s *stubQuestions) AddLike(ctx context.Context, questionID, userID int64) error {
	s.likes[[2]int64{questionID, userID}] = true
	return nil
}

func (s *stubQuestions) RemoveLike(ctx context.Context, questionID, userID int64) (bool, error) {
	key := [2]int64{questionID, userID}
	ok := s.likes[key]
	delete(s.likes, key)
	return ok, nil
}

func (s *stubQuestions) AddComment(ctx context.Context, questionID, userID int64, comment string) (int64, error) {
	return 1, nil
}

func (s *stubQuestions) Comments(ctx context.Context, questionID int64) ([]domain.QuestionComment, error) {
	return s.comments, nil
}

// =============================================================================
// Collaborators
// =============================================================================

// plainHasher stores passwords with a fixed prefix so tests stay fast.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }

func (plainHasher) Compare(hash, p string) bool { return hash == "hashed:"+p }

type recordingMailer struct {
	mu   sync.Mutex
	sent []OTPMessage
}

func (m *recordingMailer) SendOTP(ctx context.Context, msg OTPMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) last() OTPMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}
