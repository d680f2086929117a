package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"path"

	"pastehub/pkg/models"
	"pastehub/pkg/repository"

	"github.com/google/uuid"
)

// BlobStore is the object storage surface audio clips live in.
type BlobStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type AudioService interface {
	Upload(ctx context.Context, authorID int, filename, contentType string, r io.Reader, size int64) (models.Audio, error)
	Get(id, authorID int) (models.Audio, error)
	Stream(ctx context.Context, shareableID string) (io.ReadCloser, error)
	Delete(ctx context.Context, id, authorID int) error
}

type audioService struct {
	audios repository.AudioRepository
	store  BlobStore
}

func NewAudioService(audios repository.AudioRepository, store BlobStore) AudioService {
	return &audioService{audios: audios, store: store}
}

// Upload stores the blob first, then the metadata row. The generated audio id
// doubles as the public shareable id.
func (s *audioService) Upload(ctx context.Context, authorID int, filename, contentType string, r io.Reader, size int64) (models.Audio, error) {
	audioID := uuid.NewString()
	key := audioID + "-" + filename

	url, err := s.store.Upload(ctx, key, r, size, contentType)
	if err != nil {
		return models.Audio{}, err
	}

	return s.audios.Create(models.Audio{
		ShareableID: audioID,
		Title:       filename,
		URL:         url,
		AuthorID:    authorID,
	})
}

func (s *audioService) Get(id, authorID int) (models.Audio, error) {
	audio, err := s.audios.GetByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Audio{}, ErrNotFound
	}
	if err != nil {
		return models.Audio{}, err
	}
	if audio.AuthorID != authorID {
		return models.Audio{}, ErrForbidden
	}
	return audio, nil
}

// Stream opens the blob behind a shareable id for anonymous playback.
func (s *audioService) Stream(ctx context.Context, shareableID string) (io.ReadCloser, error) {
	audio, err := s.audios.GetByShareableID(shareableID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, path.Base(audio.URL))
}

func (s *audioService) Delete(ctx context.Context, id, authorID int) error {
	audio, err := s.Get(id, authorID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, path.Base(audio.URL)); err != nil {
		return err
	}

	deleted, err := s.audios.Delete(id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
