package api

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/sparki/internal/core/domain"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	srv         *Server
	users       *stubUsers
	wholesalers *stubWholesalers
	education   *stubEducation
	content     *stubContent
	tracks      *stubTracks
	questions   *stubQuestions
	mailer      *recordingMailer
}

func newHarness(t *testing.T, users ...*domain.User) *harness {
	t.Helper()
	h := &harness{
		users:       newStubUsers(users...),
		wholesalers: &stubWholesalers{},
		education:   &stubEducation{byID: map[int64]*domain.Education{}, titles: map[string]bool{}},
		content:     &stubContent{},
		tracks:      &stubTracks{},
		questions:   newStubQuestions(),
		mailer:      &recordingMailer{},
	}
	h.srv = NewServer(Config{}, Deps{
		Users:       h.users,
		Education:   h.education,
		Content:     h.content,
		Tracks:      h.tracks,
		Questions:   h.questions,
		Wholesalers: h.wholesalers,
		Hasher:      plainHasher{},
		Mailer:      h.mailer,
		Clock:       func() time.Time { return testNow },
		NewOTP:      func() (string, error) { return "123456", nil },
	})
	return h
}

type testResponse struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Error      string          `json:"error"`
	Data       json.RawMessage `json:"data"`
	Details    []string        `json:"details"`
}

// do sends a request as the given principal. A zero principal sends no
// identity headers.
func (h *harness) do(t *testing.T, method, path string, body any, as domain.Principal) (int, testResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if as.UserID != 0 {
		req.Header.Set(HeaderUserID, strconv.FormatInt(as.UserID, 10))
		req.Header.Set(HeaderUserType, string(as.UserType))
	}
	rec := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(rec, req)

	var resp testResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	assert.Equal(t, rec.Code, resp.StatusCode)
	return rec.Code, resp
}

var (
	visitor = domain.Principal{UserID: 1, UserType: domain.UserTypeVisitor}
	admin   = domain.Principal{UserID: 2, UserType: domain.UserTypeAdmin}
)

func strp(s string) *string { return &s }

func activeUser() *domain.User {
	return &domain.User{
		ID:           1,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		PasswordHash: "hashed:secret",
		UserType:     domain.UserTypeVisitor,
		Status:       domain.AccountStatusActive,
		CreatedAt:    testNow.Add(-60 * 24 * time.Hour),
	}
}

func pendingUser(otp string, issued time.Time) *domain.User {
	u := activeUser()
	u.Status = domain.AccountStatusPending
	u.OTP = strp(otp)
	u.OTPIssuedAt = &issued
	return u
}

// =============================================================================
// Identity
// =============================================================================

func TestAuth_MissingIdentity(t *testing.T) {
	h := newHarness(t)
	code, resp := h.do(t, http.MethodGet, "/api/user/getProfile", nil, domain.Principal{})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "error", resp.Status)
}

func TestAuth_AdminRouteRejectsVisitor(t *testing.T) {
	h := newHarness(t)
	code, resp := h.do(t, http.MethodDelete, "/api/wholesaler/deleteWholesaler/3", nil, visitor)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "You are not authorized to perform this action", resp.Message)
}

func TestRequestIDHeader(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodGet, "/api/education/getEducationFilter", nil)
	req.Header.Set(HeaderUserID, "1")
	req.Header.Set(HeaderUserType, "visitor")
	rec := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

// =============================================================================
// Accounts
// =============================================================================

func TestSignup(t *testing.T) {
	h := newHarness(t)
	code, resp := h.do(t, http.MethodPost, "/api/user/signup", map[string]any{
		"first_name": "Grace",
		"last_name":  "Hopper",
		"email":      "grace@example.com",
		"password":   "cobol",
		"user_type":  "visitor",
	}, domain.Principal{})

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OTP sent to your email", resp.Message)
	require.Len(t, h.users.created, 1)
	created := h.users.created[0]
	assert.Equal(t, "hashed:cobol", created.PasswordHash)
	assert.Equal(t, "123456", created.OTP)
	assert.Equal(t, testNow, created.OTPIssuedAt)
	assert.Equal(t, OTPSignup, h.mailer.last().Purpose)
}

func TestSignup_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		body    map[string]any
		message string
	}{
		{
			name:    "invalid user type",
			body:    map[string]any{"email": "x@example.com", "password": "p", "user_type": "root"},
			message: "Invalid user type",
		},
		{
			name:    "existing email",
			body:    map[string]any{"email": "ada@example.com", "password": "p", "user_type": "visitor"},
			message: "Email already exists",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, activeUser())
			code, resp := h.do(t, http.MethodPost, "/api/user/signup", tt.body, domain.Principal{})
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, tt.message, resp.Message)
			assert.Empty(t, h.users.created)
		})
	}
}

func TestVerifyOTP(t *testing.T) {
	tests := []struct {
		name    string
		user    *domain.User
		otp     string
		code    int
		message string
	}{
		{"valid", pendingUser("123456", testNow.Add(-time.Minute)), "123456", http.StatusOK, "User successfully verified and registered"},
		{"wrong code", pendingUser("123456", testNow), "654321", http.StatusBadRequest, "Invalid OTP"},
		{"expired", pendingUser("123456", testNow.Add(-6*time.Minute)), "123456", http.StatusBadRequest, "OTP expired"},
		{"already active", activeUser(), "123456", http.StatusBadRequest, "User is already verified"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.user)
			code, resp := h.do(t, http.MethodPost, "/api/user/verify_otp",
				map[string]string{"email": "ada@example.com", "otp": tt.otp}, domain.Principal{})
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestVerifyOTP_UnknownUser(t *testing.T) {
	h := newHarness(t)
	code, _ := h.do(t, http.MethodPost, "/api/user/verify_otp",
		map[string]string{"email": "nobody@example.com", "otp": "1"}, domain.Principal{})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestResendOTP_ReusesValidCode(t *testing.T) {
	h := newHarness(t, pendingUser("111111", testNow.Add(-2*time.Minute)))
	code, _ := h.do(t, http.MethodPost, "/api/user/resend_otp",
		map[string]string{"email": "ada@example.com"}, domain.Principal{})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "111111", h.users.otps[1])
	assert.Equal(t, "111111", h.mailer.last().Code)
}

func TestResendOTP_ReplacesExpiredCode(t *testing.T) {
	h := newHarness(t, pendingUser("111111", testNow.Add(-10*time.Minute)))
	code, _ := h.do(t, http.MethodPost, "/api/user/resend_otp",
		map[string]string{"email": "ada@example.com"}, domain.Principal{})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "123456", h.users.otps[1])
}

func TestLogin(t *testing.T) {
	h := newHarness(t, activeUser())
	code, resp := h.do(t, http.MethodPost, "/api/user/login",
		map[string]string{"email": "ada@example.com", "password": "secret"}, domain.Principal{})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Login successful", resp.Message)

	var acct account
	require.NoError(t, json.Unmarshal(resp.Data, &acct))
	assert.Equal(t, "Ada Lovelace", acct.FullName)
	assert.Equal(t, domain.AccountStatusActive, acct.Account)
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newHarness(t, activeUser())
	code, _ := h.do(t, http.MethodPost, "/api/user/login",
		map[string]string{"email": "ada@example.com", "password": "nope"}, domain.Principal{})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestLogin_PendingAccountGetsNewOTP(t *testing.T) {
	h := newHarness(t, pendingUser("999999", testNow.Add(-time.Hour)))
	code, resp := h.do(t, http.MethodPost, "/api/user/login",
		map[string]string{"email": "ada@example.com", "password": "secret"}, domain.Principal{})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OTP sent to your email", resp.Message)
	assert.Equal(t, "123456", h.users.otps[1])
	assert.Equal(t, OTPLogin, h.mailer.last().Purpose)
}

func TestPasswordReset(t *testing.T) {
	h := newHarness(t, activeUser())

	code, _ := h.do(t, http.MethodPost, "/api/user/forgotPassword",
		map[string]string{"email": "ada@example.com"}, domain.Principal{})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, OTPResetPassword, h.mailer.last().Purpose)

	code, resp := h.do(t, http.MethodPost, "/api/user/resetPassword",
		map[string]string{"email": "ada@example.com", "otp": "000000", "newPassword": "new"}, domain.Principal{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid OTP", resp.Message)

	code, _ = h.do(t, http.MethodPost, "/api/user/resetPassword",
		map[string]string{"email": "ada@example.com", "otp": "123456", "newPassword": "new"}, domain.Principal{})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "hashed:new", h.users.byID[1].PasswordHash)
	assert.Nil(t, h.users.byID[1].ResetOTP)
}

func TestGetProfile(t *testing.T) {
	u := activeUser()
	u.Latitude = strp("52.52")
	h := newHarness(t, u)

	code, resp := h.do(t, http.MethodGet, "/api/user/getProfile", nil, visitor)
	require.Equal(t, http.StatusOK, code)

	var profile domain.Profile
	require.NoError(t, json.Unmarshal(resp.Data, &profile))
	assert.Equal(t, int64(1), profile.ID)
	require.NotNil(t, profile.Location.Latitude)
	assert.Equal(t, "52.52", *profile.Location.Latitude)
}

func TestUpdateProfile(t *testing.T) {
	h := newHarness(t, activeUser())

	code, _ := h.do(t, http.MethodPatch, "/api/user/updateProfile", map[string]string{"first_name": ""}, visitor)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.do(t, http.MethodPatch, "/api/user/updateProfile", map[string]string{"first_name": "Augusta"}, visitor)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Augusta", h.users.byID[1].FirstName)
}

func TestDeleteAccount(t *testing.T) {
	young := activeUser()
	young.CreatedAt = testNow.Add(-10 * 24 * time.Hour)
	pending := pendingUser("1", testNow)

	tests := []struct {
		name string
		user *domain.User
		body map[string]any
		code int
	}{
		{"not confirmed", activeUser(), map[string]any{"password": "secret"}, http.StatusBadRequest},
		{"pending account", pending, map[string]any{"confirmDeletion": true, "password": "secret"}, http.StatusForbidden},
		{"wrong password", activeUser(), map[string]any{"confirmDeletion": true, "password": "x"}, http.StatusUnauthorized},
		{"too young", young, map[string]any{"confirmDeletion": true, "password": "secret"}, http.StatusForbidden},
		{"deleted", activeUser(), map[string]any{"confirmDeletion": true, "password": "secret"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.user)
			code, _ := h.do(t, http.MethodDelete, "/api/user/deleteAccount", tt.body, visitor)
			assert.Equal(t, tt.code, code)
			_, stillThere := h.users.byID[1]
			assert.Equal(t, tt.code != http.StatusOK, stillThere)
		})
	}
}

func TestStorageErrorIsReported(t *testing.T) {
	h := newHarness(t)
	h.users.err = errors.New("connection refused")
	code, resp := h.do(t, http.MethodPost, "/api/user/login",
		map[string]string{"email": "a@b.c", "password": "p"}, domain.Principal{})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "connection refused", resp.Message)
}

// =============================================================================
// Wholesalers
// =============================================================================

func wholesaler(id int64, lat, lon string) domain.Wholesaler {
	return domain.Wholesaler{ID: id, StoreName: "store", Latitude: lat, Longitude: lon}
}

func TestGetWholesalers_FiltersAndSorts(t *testing.T) {
	h := newHarness(t)
	h.wholesalers.all = []domain.Wholesaler{
		wholesaler(1, "10.1", "20.0"),
		wholesaler(2, "11.0", "20.0"),
		wholesaler(3, "10.01", "20.0"),
		wholesaler(4, "bad", "20.0"),
	}

	code, resp := h.do(t, http.MethodGet, "/api/wholesaler/getWholesalers/10.0/20.0", nil, visitor)
	require.Equal(t, http.StatusOK, code)

	var nearby []domain.NearbyWholesaler
	require.NoError(t, json.Unmarshal(resp.Data, &nearby))
	require.Len(t, nearby, 2)
	assert.Equal(t, int64(3), nearby[0].ID)
	assert.InDelta(t, 1.113, nearby[0].DistanceInKm, 1e-9)
	assert.Equal(t, int64(1), nearby[1].ID)
	assert.InDelta(t, 11.132, nearby[1].DistanceInKm, 1e-9)
}

func TestGetWholesalers_NoneFound(t *testing.T) {
	h := newHarness(t)

	code, resp := h.do(t, http.MethodGet, "/api/wholesaler/getWholesalers/10/20", nil, visitor)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "success", resp.Status)
	assert.JSONEq(t, "[]", string(resp.Data))

	h.wholesalers.all = []domain.Wholesaler{wholesaler(1, "50", "50")}
	code, resp = h.do(t, http.MethodGet, "/api/wholesaler/getWholesalers/10/20", nil, visitor)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "No wholesalers found within 50km", resp.Message)
}

func TestGetWholesalers_InvalidOrigin(t *testing.T) {
	h := newHarness(t)
	code, _ := h.do(t, http.MethodGet, "/api/wholesaler/getWholesalers/abc/20", nil, visitor)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAddWholesaler(t *testing.T) {
	body := map[string]string{
		"store_name": "Depot", "current_status": "open", "open_time": "08:00",
		"close_time": "18:00", "distance": "2km", "duration": "5m",
		"email": "depot@example.com", "latitude": "1", "longitude": "2",
	}

	h := newHarness(t)
	code, _ := h.do(t, http.MethodPost, "/api/wholesaler/addWholesaler", body, admin)
	assert.Equal(t, http.StatusCreated, code)
	require.Len(t, h.wholesalers.created, 1)

	h.wholesalers.dup = true
	code, _ = h.do(t, http.MethodPost, "/api/wholesaler/addWholesaler", body, admin)
	assert.Equal(t, http.StatusConflict, code)

	delete(body, "email")
	code, _ = h.do(t, http.MethodPost, "/api/wholesaler/addWholesaler", body, admin)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestUpdateWholesaler(t *testing.T) {
	h := newHarness(t)
	code, _ := h.do(t, http.MethodPatch, "/api/wholesaler/updateWholesaler/9", map[string]string{}, admin)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.do(t, http.MethodPatch, "/api/wholesaler/updateWholesaler/9", map[string]string{"email": "x"}, admin)
	assert.Equal(t, http.StatusNotFound, code)

	h.wholesalers.found = true
	code, _ = h.do(t, http.MethodPatch, "/api/wholesaler/updateWholesaler/9", map[string]string{"email": "x"}, admin)
	assert.Equal(t, http.StatusOK, code)
}

// =============================================================================
// Education
// =============================================================================

func TestAddEducation(t *testing.T) {
	h := newHarness(t)
	body := map[string]string{
		"title": "Wiring", "description": "d", "read_time": "5m",
		"icon": "i", "category": "Electrical", "level": "Beginner",
	}
	code, _ := h.do(t, http.MethodPost, "/api/education/addEducationResource", body, admin)
	assert.Equal(t, http.StatusCreated, code)

	h.education.titles["Wiring"] = true
	code, _ = h.do(t, http.MethodPost, "/api/education/addEducationResource", body, admin)
	assert.Equal(t, http.StatusConflict, code)

	body["level"] = "Guru"
	code, resp := h.do(t, http.MethodPost, "/api/education/addEducationResource", body, admin)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Message, "'Guru' is not a valid level")

	code, resp = h.do(t, http.MethodPost, "/api/education/addEducationResource", map[string]string{"level": "Expert"}, admin)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Len(t, resp.Details, 5)
}

func TestGetEducation(t *testing.T) {
	h := newHarness(t)
	code, _ := h.do(t, http.MethodGet, "/api/education/getEducationResources?level=Beginner", nil, visitor)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.do(t, http.MethodGet, "/api/education/getEducationResources?level=Beginner&category=Solar", nil, visitor)
	assert.Equal(t, http.StatusNotFound, code)

	h.education.list = []domain.Education{{ID: 1, Title: "Panels"}}
	code, _ = h.do(t, http.MethodGet, "/api/education/getEducationResources?level=Beginner&category=Solar", nil, visitor)
	assert.Equal(t, http.StatusOK, code)
}

func TestEducationFilter(t *testing.T) {
	h := newHarness(t)
	h.education.categories = []string{"Electrical", "Solar"}

	code, resp := h.do(t, http.MethodGet, "/api/education/getEducationFilter", nil, visitor)
	require.Equal(t, http.StatusOK, code)

	var filter domain.EducationFilter
	require.NoError(t, json.Unmarshal(resp.Data, &filter))
	assert.Equal(t, []string{"All", "Electrical", "Solar"}, filter.Categories)
	assert.Equal(t, domain.FilterLevels, filter.Levels)
}

func TestGetContent_ReportsReadMark(t *testing.T) {
	h := newHarness(t)
	h.education.byID[5] = &domain.Education{ID: 5, Title: "Panels"}
	h.content.content = []domain.EducationContent{{ID: 1, EducationID: 5, Author: "A", Content: "text"}}
	require.NoError(t, h.tracks.Create(t.Context(), visitor.UserID, 5))

	code, resp := h.do(t, http.MethodGet, "/api/education/getEducationResourceContent/5", nil, visitor)
	require.Equal(t, http.StatusOK, code)

	var detail domain.EducationDetail
	require.NoError(t, json.Unmarshal(resp.Data, &detail))
	assert.True(t, detail.UserHasRead)
	assert.Len(t, detail.Content, 1)
}

func TestAddTrack(t *testing.T) {
	h := newHarness(t, activeUser())
	h.education.byID[5] = &domain.Education{ID: 5}
	body := map[string]int64{"userId": 1, "education_id": 5}

	code, _ := h.do(t, http.MethodPost, "/api/education/addEducationUserTrack", body, visitor)
	assert.Equal(t, http.StatusCreated, code)

	code, _ = h.do(t, http.MethodPost, "/api/education/addEducationUserTrack", body, visitor)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = h.do(t, http.MethodPost, "/api/education/addEducationUserTrack",
		map[string]int64{"userId": 1, "education_id": 6}, visitor)
	assert.Equal(t, http.StatusNotFound, code)
}

// =============================================================================
// Questions
// =============================================================================

func TestAddQuestion(t *testing.T) {
	h := newHarness(t)
	code, resp := h.do(t, http.MethodPost, "/api/question/addQuestion",
		map[string]string{"title": "Breakers?", "details": "Which one", "tags": "a, b,,c"}, visitor)
	require.Equal(t, http.StatusCreated, code)

	var created createdQuestion
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, int64(77), created.QuestionID)
	assert.Equal(t, domain.Tags{"a", "b", "c"}, created.Tags)
	require.Len(t, h.questions.created, 1)
	assert.Equal(t, visitor.UserID, h.questions.created[0].UserID)
}

func TestAddQuestion_TooManyTags(t *testing.T) {
	h := newHarness(t)
	code, resp := h.do(t, http.MethodPost, "/api/question/addQuestion",
		map[string]string{"title": "t", "details": "d", "tags": "1,2,3,4,5,6"}, visitor)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "You can add a maximum of 5 tags only.", resp.Message)
}

func TestQuestionLikes(t *testing.T) {
	h := newHarness(t)
	h.questions.existing[3] = true

	code, _ := h.do(t, http.MethodPost, "/api/question/addQuestionLikes?questionId=4", nil, visitor)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = h.do(t, http.MethodPost, "/api/question/addQuestionLikes?questionId=3", nil, visitor)
	assert.Equal(t, http.StatusCreated, code)

	code, _ = h.do(t, http.MethodPost, "/api/question/addQuestionLikes?questionId=3", nil, visitor)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = h.do(t, http.MethodPost, "/api/question/removeQuestionLikes?questionId=3", nil, visitor)
	assert.Equal(t, http.StatusOK, code)

	code, _ = h.do(t, http.MethodPost, "/api/question/removeQuestionLikes?questionId=3", nil, visitor)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestQuestionViews(t *testing.T) {
	h := newHarness(t)
	h.questions.existing[3] = true

	code, _ := h.do(t, http.MethodPost, "/api/question/addQuestionsViews", nil, visitor)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.do(t, http.MethodPost, "/api/question/addQuestionsViews?questionId=3", nil, visitor)
	assert.Equal(t, http.StatusCreated, code)

	code, _ = h.do(t, http.MethodPost, "/api/question/addQuestionsViews?questionId=3", nil, visitor)
	assert.Equal(t, http.StatusConflict, code)
}

func TestAllQuestions_Pagination(t *testing.T) {
	h := newHarness(t)
	h.questions.page = []domain.QuestionWithAuthor{{
		Question:  domain.Question{ID: 8, Title: "t", Tags: domain.Tags{}},
		FirstName: "Ada",
		LastName:  "Lovelace",
	}}
	h.questions.counts[8] = domain.QuestionCounts{Likes: 2, Views: 5, Comments: 1}

	code, resp := h.do(t, http.MethodGet, "/api/question/getAllQuestions?page=3&limit=4", nil, visitor)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 4, h.questions.pageLimit)
	assert.Equal(t, 8, h.questions.pageOffset)

	var page questionPage
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	require.Len(t, page.Questions, 1)
	assert.Equal(t, int64(2), page.Questions[0].LikesCount)
	assert.Equal(t, "Ada Lovelace", page.Questions[0].User.FullName)

	_, _ = h.do(t, http.MethodGet, "/api/question/getAllQuestions", nil, visitor)
	assert.Equal(t, defaultLimit, h.questions.pageLimit)
	assert.Equal(t, 0, h.questions.pageOffset)
}

func TestAllQuestions_PageBounds(t *testing.T) {
	h := newHarness(t)
	h.questions.page = []domain.QuestionWithAuthor{{
		Question: domain.Question{ID: 8, Title: "t", Tags: domain.Tags{}},
	}}

	code, _ := h.do(t, http.MethodGet, "/api/question/getAllQuestions?page=1&limit=2000000000", nil, visitor)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, maxLimit, h.questions.pageLimit)

	h.questions.pageOffset = 0
	h.questions.pageLimit = 0
	code, _ = h.do(t, http.MethodGet, "/api/question/getAllQuestions?page=9223372036854775807&limit=2", nil, visitor)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Zero(t, h.questions.pageLimit, "out of range pages never reach the repository")
}

func TestUserQuestions(t *testing.T) {
	h := newHarness(t, activeUser())

	code, _ := h.do(t, http.MethodGet, "/api/question/getCurrentUserPostedQuestions", nil, visitor)
	assert.Equal(t, http.StatusNotFound, code)

	h.questions.byUser = []domain.Question{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}}
	h.questions.counts[2] = domain.QuestionCounts{Views: 3}
	code, resp := h.do(t, http.MethodGet, "/api/question/getCurrentUserPostedQuestions", nil, visitor)
	require.Equal(t, http.StatusOK, code)

	var out userQuestions
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	assert.Equal(t, "Ada Lovelace", out.User.FullName)
	require.Len(t, out.Questions, 2)
	assert.Equal(t, int64(0), out.Questions[0].ViewsCount)
	assert.Equal(t, int64(3), out.Questions[1].ViewsCount)
}

func TestQuestionComments(t *testing.T) {
	h := newHarness(t)
	h.questions.existing[3] = true

	code, _ := h.do(t, http.MethodPost, "/api/question/addQuestionComments",
		map[string]any{"questionId": 3, "comment": "use a 20A"}, visitor)
	assert.Equal(t, http.StatusCreated, code)

	code, resp := h.do(t, http.MethodGet, "/api/question/getQuestionComments?questionId=3", nil, visitor)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"comments":[]}`, string(resp.Data))
}
