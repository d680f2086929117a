package models

import "time"

type Text struct {
	ID          int       `json:"id"`
	ShareableID string    `json:"shareable_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Published   bool      `json:"published"`
	AuthorID    int       `json:"author_id"`
	Views       int       `json:"views"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SharedText is the public snapshot served to anonymous readers and stored
// in the cache. Field names match the share API response.
type SharedText struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateTextRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Published bool   `json:"published"`
}

type UpdateTextRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Published *bool   `json:"published"`
}

// UpdateFields is the payload pushed to realtime subscribers when an author
// edits a text.
type UpdateFields struct {
	Title       *string `json:"title,omitempty"`
	Content     *string `json:"content,omitempty"`
	Published   *bool   `json:"published,omitempty"`
	ShareableID string  `json:"shareableId"`
}
