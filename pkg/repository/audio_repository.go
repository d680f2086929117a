package repository

import (
	"database/sql"

	"pastehub/pkg/models"
)

type AudioRepository interface {
	Create(a models.Audio) (models.Audio, error)
	GetByID(id int) (models.Audio, error)
	GetByShareableID(shareableID string) (models.Audio, error)
	Delete(id int) (bool, error)
}

type audioRepository struct {
	db *sql.DB
}

func NewAudioRepository(db *sql.DB) AudioRepository {
	return &audioRepository{db: db}
}

func (r *audioRepository) Create(a models.Audio) (models.Audio, error) {
	err := r.db.QueryRow(`
		INSERT INTO audios (shareable_id, title, url, author_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, shareable_id, title, url, author_id, created_at
	`, a.ShareableID, a.Title, a.URL, a.AuthorID).Scan(
		&a.ID, &a.ShareableID, &a.Title, &a.URL, &a.AuthorID, &a.CreatedAt,
	)
	return a, err
}

func (r *audioRepository) GetByID(id int) (models.Audio, error) {
	var a models.Audio
	err := r.db.QueryRow(`
		SELECT id, shareable_id, title, url, author_id, created_at
		FROM audios WHERE id = $1
	`, id).Scan(&a.ID, &a.ShareableID, &a.Title, &a.URL, &a.AuthorID, &a.CreatedAt)
	return a, err
}

func (r *audioRepository) GetByShareableID(shareableID string) (models.Audio, error) {
	var a models.Audio
	err := r.db.QueryRow(`
		SELECT id, shareable_id, title, url, author_id, created_at
		FROM audios WHERE shareable_id = $1
	`, shareableID).Scan(&a.ID, &a.ShareableID, &a.Title, &a.URL, &a.AuthorID, &a.CreatedAt)
	return a, err
}

func (r *audioRepository) Delete(id int) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM audios WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	rowsAff, _ := result.RowsAffected()
	return rowsAff > 0, nil
}
