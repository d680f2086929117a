package models

import "time"

type Audio struct {
	ID          int       `json:"id"`
	ShareableID string    `json:"shareable_id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	AuthorID    int       `json:"author_id"`
	CreatedAt   time.Time `json:"created_at"`
}
