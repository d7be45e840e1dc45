package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// MaxQuestionTags bounds the tags attached to one question.
const MaxQuestionTags = 5

// Tags is stored as a JSON array in a text column.
type Tags []string

// ParseTags splits a comma separated tag list, dropping blanks.
func ParseTags(raw string) Tags {
	tags := Tags{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		t = Tags{}
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *Tags) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported tags type %T", src)
	}
	if len(raw) == 0 {
		*t = Tags{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode tags: %w", err)
	}
	*t = out
	return nil
}

// Question represents a community question
type Question struct {
	ID       int64     `db:"id" json:"id"`
	UserID   int64     `db:"user_id" json:"-"`
	Title    string    `db:"title" json:"title"`
	Details  string    `db:"details" json:"details"`
	Tags     Tags      `db:"tags" json:"tags"`
	PostedAt time.Time `db:"posted_at" json:"posted_at"`
}

// Author is the poster shown next to a question or comment.
type Author struct {
	FullName       string  `json:"fullName"`
	ProfilePicture *string `json:"profilePicture"`
}

// QuestionCounts aggregates the engagement of one question.
type QuestionCounts struct {
	Likes    int64
	Views    int64
	Comments int64
}

// QuestionSummary is a question with its engagement counts.
type QuestionSummary struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Details       string    `json:"details"`
	PostedAt      time.Time `json:"posted_at"`
	Tags          Tags      `json:"tags"`
	User          *Author   `json:"user,omitempty"`
	LikesCount    int64     `json:"likes_count"`
	ViewsCount    int64     `json:"views_count"`
	CommentsCount int64     `json:"comments_count"`
}

// QuestionWithAuthor is a question row joined with its poster.
type QuestionWithAuthor struct {
	Question
	FirstName      string  `db:"first_name"`
	LastName       string  `db:"last_name"`
	ProfilePicture *string `db:"profile_picture"`
}

// Summarize attaches counts to q.
func Summarize(q Question, author *Author, c QuestionCounts) QuestionSummary {
	return QuestionSummary{
		ID:            q.ID,
		Title:         q.Title,
		Details:       q.Details,
		PostedAt:      q.PostedAt,
		Tags:          q.Tags,
		User:          author,
		LikesCount:    c.Likes,
		ViewsCount:    c.Views,
		CommentsCount: c.Comments,
	}
}

// QuestionComment is a comment joined with its poster.
type QuestionComment struct {
	ID             int64     `db:"id" json:"id"`
	Comment        string    `db:"comment" json:"comment"`
	PostedAt       time.Time `db:"posted_at" json:"posted_at"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	ProfilePicture *string   `db:"profile_picture" json:"profile_picture"`
}
