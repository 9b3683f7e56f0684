package model

import "time"

// Story is a published story. CoverURL is the public URL of its cover asset.
type Story struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CoverURL    string    `json:"cover_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StoryPage is a single page of a story with an optional illustration.
type StoryPage struct {
	ID         string    `json:"id"`
	StoryID    string    `json:"story_id"`
	PageNumber int       `json:"page_number"`
	Content    string    `json:"content"`
	ImageURL   string    `json:"image_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// User is a public profile. The push token is never serialized.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	ImageURL    string    `json:"image_url"`
	PushToken   string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PersistResult is what a record persister reports back: a new identifier for
// creates or an affected-row count for updates.
type PersistResult struct {
	ID           string
	RowsAffected int64
}

// OK reports whether the persister signaled success.
func (r PersistResult) OK() bool {
	return r.ID != "" || r.RowsAffected > 0
}
