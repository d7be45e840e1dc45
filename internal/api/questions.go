package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/vietddude/sparki/internal/core/domain"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

type questionRequest struct {
	Title   string `json:"title"`
	Details string `json:"details"`
	Tags    string `json:"tags"`
}

type commentRequest struct {
	QuestionID int64  `json:"questionId"`
	Comment    string `json:"comment"`
}

type createdQuestion struct {
	QuestionID int64       `json:"questionId"`
	Title      string      `json:"title"`
	Details    string      `json:"details"`
	Tags       domain.Tags `json:"tags"`
}

type userQuestions struct {
	User      domain.Author            `json:"user"`
	Questions []domain.QuestionSummary `json:"questions"`
}

type questionPage struct {
	Page      int                      `json:"page"`
	Limit     int                      `json:"limit"`
	Questions []domain.QuestionSummary `json:"questions"`
}

type questionComments struct {
	Comments []domain.QuestionComment `json:"comments"`
}

// queryInt parses a positive integer query parameter, falling back to def.
func queryInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// existingQuestion reads ?questionId= and checks the question exists. It
// writes the error response itself.
func (s *Server) existingQuestion(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("questionId"), 10, 64)
	if err != nil || id <= 0 {
		fail(w, http.StatusBadRequest, "Question ID is required.")
		return 0, false
	}
	return id, s.requireQuestion(w, r, id)
}

func (s *Server) requireQuestion(w http.ResponseWriter, r *http.Request, id int64) bool {
	exists, err := s.deps.Questions.Exists(r.Context(), id)
	if err != nil {
		internalError(w, r, err)
		return false
	}
	if !exists {
		fail(w, http.StatusNotFound, fmt.Sprintf("Question with ID %d does not exist.", id))
		return false
	}
	return true
}

func (s *Server) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	var req questionRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Title is required and must be a string.")
		return
	}

	var problems []string
	if req.Title == "" {
		problems = append(problems, "Title is required and must be a string.")
	}
	if req.Details == "" {
		problems = append(problems, "Details are required and must be a string.")
	}
	tags := domain.ParseTags(req.Tags)
	if len(tags) > domain.MaxQuestionTags {
		problems = append(problems, "You can add a maximum of 5 tags only.")
	}
	if len(problems) > 0 {
		fail(w, http.StatusBadRequest, strings.Join(problems, " "))
		return
	}

	ctx := r.Context()
	exists, err := s.deps.Questions.ExistsByTitle(ctx, p.UserID, req.Title)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if exists {
		fail(w, http.StatusConflict, fmt.Sprintf("A question with the title %q already exists for this user.", req.Title))
		return
	}

	id, err := s.deps.Questions.Create(ctx, &domain.Question{
		UserID:  p.UserID,
		Title:   req.Title,
		Details: req.Details,
		Tags:    tags,
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "Question added successfully", createdQuestion{
		QuestionID: id,
		Title:      req.Title,
		Details:    req.Details,
		Tags:       tags,
	})
}

func (s *Server) handleAddQuestionView(w http.ResponseWriter, r *http.Request) {
	id, ok := s.existingQuestion(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	p, _ := PrincipalFrom(ctx)

	viewed, err := s.deps.Questions.HasViewed(ctx, id, p.UserID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if viewed {
		fail(w, http.StatusConflict, "You have already viewed this question.")
		return
	}
	if err := s.deps.Questions.AddView(ctx, id, p.UserID); err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "Question view recorded successfully.", nil)
}

func (s *Server) handleAddQuestionLike(w http.ResponseWriter, r *http.Request) {
	id, ok := s.existingQuestion(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	p, _ := PrincipalFrom(ctx)

	liked, err := s.deps.Questions.HasLiked(ctx, id, p.UserID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if liked {
		fail(w, http.StatusConflict, "You have already liked this question.")
		return
	}
	if err := s.deps.Questions.AddLike(ctx, id, p.UserID); err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "Question like recorded successfully.", nil)
}

func (s *Server) handleRemoveQuestionLike(w http.ResponseWriter, r *http.Request) {
	id, ok := s.existingQuestion(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	p, _ := PrincipalFrom(ctx)

	removed, err := s.deps.Questions.RemoveLike(ctx, id, p.UserID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if !removed {
		fail(w, http.StatusNotFound, "You have not liked this question.")
		return
	}
	respond(w, http.StatusOK, "Question like removed successfully.", nil)
}

func (s *Server) handleAddQuestionComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decode(r, &req); err != nil || req.QuestionID <= 0 || req.Comment == "" {
		fail(w, http.StatusBadRequest, "Question ID and comment are required.")
		return
	}
	if !s.requireQuestion(w, r, req.QuestionID) {
		return
	}

	p, _ := PrincipalFrom(r.Context())
	if _, err := s.deps.Questions.AddComment(r.Context(), req.QuestionID, p.UserID, req.Comment); err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "Comment added successfully", nil)
}

func (s *Server) handleUserQuestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, _ := PrincipalFrom(ctx)

	questions, err := s.deps.Questions.ListByUser(ctx, p.UserID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if len(questions) == 0 {
		fail(w, http.StatusNotFound, "No questions found for the current user.")
		return
	}

	user, err := s.deps.Users.GetByID(ctx, p.UserID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if user == nil {
		fail(w, http.StatusNotFound, "User not found.")
		return
	}

	counts, err := s.deps.Questions.Counts(ctx, questionIDs(questions))
	if err != nil {
		internalError(w, r, err)
		return
	}

	out := userQuestions{
		User:      domain.Author{FullName: user.FullName(), ProfilePicture: user.ProfilePicture},
		Questions: make([]domain.QuestionSummary, len(questions)),
	}
	for i, q := range questions {
		out.Questions[i] = domain.Summarize(q, nil, counts[q.ID])
	}
	respond(w, http.StatusOK, "Current user's posted questions fetched successfully.", out)
}

func (s *Server) handleAllQuestions(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", defaultPage)
	limit := min(queryInt(r, "limit", defaultLimit), maxLimit)
	if page-1 > math.MaxInt/limit {
		fail(w, http.StatusBadRequest, "Page is out of range.")
		return
	}

	ctx := r.Context()
	rows, err := s.deps.Questions.ListPage(ctx, limit, (page-1)*limit)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if len(rows) == 0 {
		fail(w, http.StatusNotFound, "No questions found.")
		return
	}

	ids := make([]int64, len(rows))
	for i, q := range rows {
		ids[i] = q.ID
	}
	counts, err := s.deps.Questions.Counts(ctx, ids)
	if err != nil {
		internalError(w, r, err)
		return
	}

	out := questionPage{Page: page, Limit: limit, Questions: make([]domain.QuestionSummary, len(rows))}
	for i, q := range rows {
		author := &domain.Author{
			FullName:       q.FirstName + " " + q.LastName,
			ProfilePicture: q.ProfilePicture,
		}
		out.Questions[i] = domain.Summarize(q.Question, author, counts[q.ID])
	}
	respond(w, http.StatusOK, "Questions fetched successfully.", out)
}

func (s *Server) handleQuestionComments(w http.ResponseWriter, r *http.Request) {
	id, ok := s.existingQuestion(w, r)
	if !ok {
		return
	}
	comments, err := s.deps.Questions.Comments(r.Context(), id)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if comments == nil {
		comments = []domain.QuestionComment{}
	}
	respond(w, http.StatusOK, "Comments fetched successfully.", questionComments{Comments: comments})
}

func questionIDs(questions []domain.Question) []int64 {
	ids := make([]int64, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}
