package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pastehub/pkg/models"
	"pastehub/pkg/repository"
)

const sharedTextTTL = 300 * time.Second

// Cache is the advisory key-value surface the shared read path uses.
type Cache interface {
	Get(key string, dest interface{}) bool
	Set(key string, value interface{}, ttl time.Duration)
}

type ShareService interface {
	GetShared(ctx context.Context, shareableID, viewerIP string) (models.SharedText, error)
}

type shareService struct {
	texts    repository.TextRepository
	recorder *ViewRecorder
	cache    Cache
}

func NewShareService(texts repository.TextRepository, recorder *ViewRecorder, cache Cache) ShareService {
	return &shareService{texts: texts, recorder: recorder, cache: cache}
}

func sharedKey(shareableID string) string {
	return "text:" + shareableID
}

// GetShared serves the anonymous share page cache-aside. On a hit the
// published/deleted state is NOT re-checked against the store: an entry
// written while the text was published stays servable for its full TTL.
// Negative results are never cached.
func (s *shareService) GetShared(ctx context.Context, shareableID, viewerIP string) (models.SharedText, error) {
	var cached models.SharedText
	if s.cache.Get(sharedKey(shareableID), &cached) {
		if err := s.recorder.Record(ctx, cached.ID, viewerIP); err != nil {
			return models.SharedText{}, err
		}
		return cached, nil
	}

	text, author, err := s.texts.GetShared(shareableID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SharedText{}, ErrNotFound
	}
	if err != nil {
		return models.SharedText{}, err
	}
	if !text.Published {
		return models.SharedText{}, ErrNotFound
	}

	if err := s.recorder.Record(ctx, text.ID, viewerIP); err != nil {
		return models.SharedText{}, err
	}

	snapshot := models.SharedText{
		ID:        text.ID,
		Title:     text.Title,
		Content:   text.Content,
		Author:    author,
		UpdatedAt: text.UpdatedAt,
	}
	s.cache.Set(sharedKey(shareableID), snapshot, sharedTextTTL)
	return snapshot, nil
}
