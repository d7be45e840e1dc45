package domain

import (
	"slices"
	"time"
)

// EducationLevels are the levels a resource can be filed under.
var EducationLevels = []string{"All Levels", "Beginner", "Medium", "Expert"}

// FilterLevels and ReadStatuses are offered to clients for filtering.
var (
	FilterLevels = []string{"All", "Beginner", "Medium", "Expert"}
	ReadStatuses = []string{"all", "read", "unread"}
)

func ValidEducationLevel(level string) bool {
	return slices.Contains(EducationLevels, level)
}

// Education represents a learning resource
type Education struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	ReadTime    string    `db:"read_time" json:"read_time"`
	Icon        string    `db:"icon" json:"icon"`
	Category    string    `db:"category" json:"category"`
	Level       string    `db:"level" json:"level"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// EducationUpdate carries the editable resource columns. Nil fields are left
// untouched.
type EducationUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ReadTime    *string `json:"read_time"`
	Icon        *string `json:"icon"`
	Category    *string `json:"category"`
	Level       *string `json:"level"`
}

func (u EducationUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.ReadTime == nil &&
		u.Icon == nil && u.Category == nil && u.Level == nil
}

// EducationContent is a body of text attached to a resource.
type EducationContent struct {
	ID          int64     `db:"id" json:"id"`
	EducationID int64     `db:"education_id" json:"education_id"`
	Author      string    `db:"author" json:"author"`
	Content     string    `db:"content" json:"content"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// EducationDetail is a resource with its content and the caller's read mark.
type EducationDetail struct {
	Education
	Content     []EducationContent `json:"content"`
	UserHasRead bool               `json:"userHasRead"`
}

// EducationTrack records that a user has read a resource.
type EducationTrack struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	EducationID int64     `db:"education_id"`
	CreatedAt   time.Time `db:"created_at"`
}

// EducationFilter lists the filter values offered to clients.
type EducationFilter struct {
	Categories   []string `json:"categories"`
	Levels       []string `json:"levels"`
	ReadStatuses []string `json:"readStatuses"`
}
