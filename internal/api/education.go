package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/vietddude/sparki/internal/core/domain"
)

var levelsHint = strings.Join(domain.EducationLevels, ", ")

type educationRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ReadTime    string `json:"read_time"`
	Icon        string `json:"icon"`
	Category    string `json:"category"`
	Level       string `json:"level"`
}

func (req educationRequest) missing() []string {
	var details []string
	for _, f := range []struct{ name, value string }{
		{"title", req.Title},
		{"description", req.Description},
		{"read_time", req.ReadTime},
		{"icon", req.Icon},
		{"category", req.Category},
		{"level", req.Level},
	} {
		if f.value == "" {
			details = append(details, f.name+" (string) is required")
		}
	}
	return details
}

type contentRequest struct {
	EducationID int64  `json:"educationId"`
	Author      string `json:"author"`
	Content     string `json:"content"`
}

type trackRequest struct {
	UserID      int64 `json:"userId"`
	EducationID int64 `json:"education_id"`
}

func (s *Server) handleAddEducation(w http.ResponseWriter, r *http.Request) {
	var req educationRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Missing or invalid fields")
		return
	}
	if req.Level != "" && !domain.ValidEducationLevel(req.Level) {
		fail(w, http.StatusBadRequest, fmt.Sprintf("'%s' is not a valid level. Allowed values: %s", req.Level, levelsHint))
		return
	}
	if details := req.missing(); len(details) > 0 {
		fail(w, http.StatusBadRequest, "Missing or invalid fields", details...)
		return
	}

	ctx := r.Context()
	exists, err := s.deps.Education.ExistsByTitle(ctx, req.Title)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if exists {
		fail(w, http.StatusConflict, "An education resource with the same title already exists")
		return
	}

	if _, err := s.deps.Education.Create(ctx, &domain.Education{
		Title:       req.Title,
		Description: req.Description,
		ReadTime:    req.ReadTime,
		Icon:        req.Icon,
		Category:    req.Category,
		Level:       req.Level,
	}); err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "Education resource added successfully", nil)
}

func (s *Server) handleGetEducation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	level := strings.TrimSpace(q.Get("level"))
	category := strings.TrimSpace(q.Get("category"))
	if level == "" || category == "" {
		fail(w, http.StatusBadRequest, "Both 'level' and 'category' query parameters are required and must be strings.")
		return
	}
	if !domain.ValidEducationLevel(level) {
		fail(w, http.StatusBadRequest, fmt.Sprintf("'%s' is not a valid level. Allowed values: %s", level, levelsHint))
		return
	}

	resources, err := s.deps.Education.List(r.Context(), level, category)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if len(resources) == 0 {
		fail(w, http.StatusNotFound, "No education resources found for the specified level and category.")
		return
	}
	respond(w, http.StatusOK, "Education resources retrieved successfully", resources)
}

func (s *Server) handleUpdateEducation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var update domain.EducationUpdate
	if err := decode(r, &update); err != nil {
		fail(w, http.StatusBadRequest, "Invalid input data")
		return
	}
	if update.Level != nil && !domain.ValidEducationLevel(*update.Level) {
		fail(w, http.StatusBadRequest, "Invalid input data", "Invalid level. Allowed: "+levelsHint)
		return
	}

	ctx := r.Context()
	existing, err := s.deps.Education.GetByID(ctx, id)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if existing == nil {
		fail(w, http.StatusNotFound, fmt.Sprintf("Education resource with ID %d does not exist", id))
		return
	}
	if update.Empty() {
		fail(w, http.StatusBadRequest, "At least one field must be provided to update")
		return
	}

	updated, err := s.deps.Education.Update(ctx, id, update)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if !updated {
		fail(w, http.StatusNotFound, "Education resource not found")
		return
	}
	respond(w, http.StatusOK, "Education resource updated successfully", nil)
}

func (s *Server) handleDeleteEducation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := s.deps.Education.Delete(r.Context(), id)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if !deleted {
		fail(w, http.StatusNotFound, fmt.Sprintf("Education resource with ID %d does not exist", id))
		return
	}
	respond(w, http.StatusOK, "Education resource deleted successfully", nil)
}

func (s *Server) handleEducationFilter(w http.ResponseWriter, r *http.Request) {
	categories, err := s.deps.Education.Categories(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Education filter data fetched successfully", domain.EducationFilter{
		Categories:   append([]string{"All"}, categories...),
		Levels:       domain.FilterLevels,
		ReadStatuses: domain.ReadStatuses,
	})
}

func (s *Server) handleAddContent(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Missing or invalid fields")
		return
	}
	req.Author = strings.TrimSpace(req.Author)
	req.Content = strings.TrimSpace(req.Content)

	var details []string
	if req.EducationID <= 0 {
		details = append(details, "educationId (number) is required")
	}
	if req.Author == "" {
		details = append(details, "author (non-empty string) is required")
	}
	if req.Content == "" {
		details = append(details, "content (non-empty string) is required")
	}
	if len(details) > 0 {
		fail(w, http.StatusBadRequest, "Missing or invalid fields", details...)
		return
	}

	ctx := r.Context()
	resource, err := s.deps.Education.GetByID(ctx, req.EducationID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if resource == nil {
		fail(w, http.StatusNotFound, fmt.Sprintf("Education resource with id '%d' does not exist", req.EducationID))
		return
	}

	exists, err := s.deps.Content.ExistsForEducationOrAuthor(ctx, req.EducationID, req.Author)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if exists {
		fail(w, http.StatusConflict, fmt.Sprintf("Content already exists for education resource with id '%d'", req.EducationID))
		return
	}

	if _, err := s.deps.Content.Create(ctx, &domain.EducationContent{
		EducationID: req.EducationID,
		Author:      req.Author,
		Content:     req.Content,
	}); err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "Education content added successfully", nil)
}

func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	resource, err := s.deps.Education.GetByID(ctx, id)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if resource == nil {
		fail(w, http.StatusNotFound, fmt.Sprintf("Education resource with ID %d does not exist", id))
		return
	}

	content, err := s.deps.Content.ListByEducation(ctx, id)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if len(content) == 0 {
		fail(w, http.StatusNotFound, fmt.Sprintf("No content found for education resource with ID %d", id))
		return
	}

	p, _ := PrincipalFrom(ctx)
	read, err := s.deps.Tracks.Exists(ctx, p.UserID, id)
	if err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Education content retrieved successfully", domain.EducationDetail{
		Education:   *resource,
		Content:     content,
		UserHasRead: read,
	})
}

func (s *Server) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req contentRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid input data")
		return
	}
	req.Author = strings.TrimSpace(req.Author)
	req.Content = strings.TrimSpace(req.Content)
	if req.Author == "" {
		fail(w, http.StatusBadRequest, "Author must be a non-empty string")
		return
	}
	if req.Content == "" {
		fail(w, http.StatusBadRequest, "Content must be a non-empty string")
		return
	}

	updated, err := s.deps.Content.Update(r.Context(), id, req.Author, req.Content)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if !updated {
		fail(w, http.StatusNotFound, fmt.Sprintf("Education content with ID %d does not exist", id))
		return
	}
	respond(w, http.StatusOK, "Education content updated successfully", nil)
}

func (s *Server) handleDeleteContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := s.deps.Content.Delete(r.Context(), id)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if !deleted {
		fail(w, http.StatusNotFound, fmt.Sprintf("Education content with ID %d does not exist", id))
		return
	}
	respond(w, http.StatusOK, "Education content deleted successfully", nil)
}

func (s *Server) handleAddTrack(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := decode(r, &req); err != nil || req.UserID <= 0 || req.EducationID <= 0 {
		fail(w, http.StatusBadRequest, "Both userId and education_id are required")
		return
	}

	ctx := r.Context()
	user, err := s.deps.Users.GetByID(ctx, req.UserID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if user == nil {
		fail(w, http.StatusNotFound, fmt.Sprintf("User not found with ID %d", req.UserID))
		return
	}
	resource, err := s.deps.Education.GetByID(ctx, req.EducationID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if resource == nil {
		fail(w, http.StatusNotFound, fmt.Sprintf("Education not found with ID %d", req.EducationID))
		return
	}

	tracked, err := s.deps.Tracks.Exists(ctx, req.UserID, req.EducationID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if tracked {
		fail(w, http.StatusConflict, fmt.Sprintf("User with ID %d has already tracked education with ID %d", req.UserID, req.EducationID))
		return
	}

	if err := s.deps.Tracks.Create(ctx, req.UserID, req.EducationID); err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "Education user track added successfully.", nil)
}
