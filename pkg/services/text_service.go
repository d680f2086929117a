package services

import (
	"database/sql"
	"errors"

	"pastehub/pkg/models"
	"pastehub/pkg/repository"

	"github.com/google/uuid"
)

// EditBroadcaster pushes edit notifications straight to realtime subscribers.
type EditBroadcaster interface {
	BroadcastEdit(textID int, fields models.UpdateFields)
}

type TextService interface {
	Create(req models.CreateTextRequest, authorID int) (models.Text, error)
	List(authorID int) ([]models.Text, error)
	Get(id, authorID int) (models.Text, error)
	Update(id, authorID int, req models.UpdateTextRequest) (models.Text, error)
	Delete(id, authorID int) error
}

type textService struct {
	texts    repository.TextRepository
	notifier EditBroadcaster
}

func NewTextService(texts repository.TextRepository, notifier EditBroadcaster) TextService {
	return &textService{texts: texts, notifier: notifier}
}

func (s *textService) Create(req models.CreateTextRequest, authorID int) (models.Text, error) {
	return s.texts.Create(models.Text{
		ShareableID: uuid.NewString(),
		Title:       req.Title,
		Content:     req.Content,
		Published:   req.Published,
		AuthorID:    authorID,
	})
}

func (s *textService) List(authorID int) ([]models.Text, error) {
	return s.texts.ListByAuthor(authorID)
}

func (s *textService) Get(id, authorID int) (models.Text, error) {
	text, err := s.texts.GetByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Text{}, ErrNotFound
	}
	if err != nil {
		return models.Text{}, err
	}
	if text.AuthorID != authorID {
		return models.Text{}, ErrForbidden
	}
	return text, nil
}

// Update edits an owned text and broadcasts the new field values to
// subscribers immediately, with no queue in between. Share-page cache
// entries are left alone; they expire by TTL only.
func (s *textService) Update(id, authorID int, req models.UpdateTextRequest) (models.Text, error) {
	existing, err := s.Get(id, authorID)
	if err != nil {
		return models.Text{}, err
	}

	text, err := s.texts.Update(id, req)
	if err != nil {
		return models.Text{}, err
	}

	s.notifier.BroadcastEdit(id, models.UpdateFields{
		Title:       req.Title,
		Content:     req.Content,
		Published:   req.Published,
		ShareableID: existing.ShareableID,
	})
	return text, nil
}

func (s *textService) Delete(id, authorID int) error {
	if _, err := s.Get(id, authorID); err != nil {
		return err
	}

	deleted, err := s.texts.Delete(id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
