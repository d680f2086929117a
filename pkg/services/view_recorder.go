package services

import (
	"context"
	"log"
	"time"

	"pastehub/pkg/models"
	"pastehub/pkg/repository"
)

// Publisher is the broker surface the read path needs.
type Publisher interface {
	Publish(ctx context.Context, queue string, v interface{}) error
}

// ViewRecorder couples the durable record of a view with the best-effort
// realtime signal: the row write must succeed, the queue publish may not.
type ViewRecorder struct {
	views     repository.ViewRepository
	publisher Publisher
	queue     string
}

func NewViewRecorder(views repository.ViewRepository, publisher Publisher) *ViewRecorder {
	return &ViewRecorder{
		views:     views,
		publisher: publisher,
		queue:     "text-views",
	}
}

func (vr *ViewRecorder) Record(ctx context.Context, textID int, viewerIP string) error {
	if err := vr.views.Create(textID, viewerIP); err != nil {
		return err
	}

	msg := models.ViewMessage{
		TextID:    textID,
		ViewerIP:  viewerIP,
		Timestamp: time.Now().UTC(),
	}
	if err := vr.publisher.Publish(ctx, vr.queue, msg); err != nil {
		log.Printf("[SHARE] view event publish failed for text %d: %v", textID, err)
	}
	return nil
}
