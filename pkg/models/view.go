package models

import "time"

// View is one durable read of a shared text. Append-only.
type View struct {
	ID       int       `json:"id"`
	TextID   int       `json:"text_id"`
	ViewerIP string    `json:"viewer_ip"`
	ViewedAt time.Time `json:"viewed_at"`
}

// ViewMessage is the queue payload produced for every view of a shared text.
type ViewMessage struct {
	TextID    int       `json:"textId"`
	ViewerIP  string    `json:"viewerIp"`
	Timestamp time.Time `json:"timestamp"`
}
