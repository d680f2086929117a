package repository

import (
	"database/sql"

	"pastehub/pkg/models"
)

type TextRepository interface {
	Create(t models.Text) (models.Text, error)
	ListByAuthor(authorID int) ([]models.Text, error)
	GetByID(id int) (models.Text, error)
	GetShared(shareableID string) (models.Text, string, error)
	Update(id int, req models.UpdateTextRequest) (models.Text, error)
	Delete(id int) (bool, error)
}

type textRepository struct {
	db *sql.DB
}

func NewTextRepository(db *sql.DB) TextRepository {
	return &textRepository{db: db}
}

func (r *textRepository) Create(t models.Text) (models.Text, error) {
	err := r.db.QueryRow(`
		INSERT INTO texts (shareable_id, title, content, published, author_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, shareable_id, title, content, published, author_id, created_at, updated_at
	`, t.ShareableID, t.Title, t.Content, t.Published, t.AuthorID).Scan(
		&t.ID, &t.ShareableID, &t.Title, &t.Content, &t.Published, &t.AuthorID, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *textRepository) ListByAuthor(authorID int) ([]models.Text, error) {
	rows, err := r.db.Query(`
		SELECT t.id, t.shareable_id, t.title, t.content, t.published, t.author_id,
		       (SELECT COUNT(*) FROM visualizations v WHERE v.text_id = t.id),
		       t.created_at, t.updated_at
		FROM texts t WHERE t.author_id = $1
		ORDER BY t.updated_at DESC
	`, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	texts := []models.Text{}
	for rows.Next() {
		var t models.Text
		if err := rows.Scan(
			&t.ID, &t.ShareableID, &t.Title, &t.Content, &t.Published, &t.AuthorID,
			&t.Views, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			continue
		}
		texts = append(texts, t)
	}
	return texts, nil
}

func (r *textRepository) GetByID(id int) (models.Text, error) {
	var t models.Text
	err := r.db.QueryRow(`
		SELECT t.id, t.shareable_id, t.title, t.content, t.published, t.author_id,
		       (SELECT COUNT(*) FROM visualizations v WHERE v.text_id = t.id),
		       t.created_at, t.updated_at
		FROM texts t WHERE t.id = $1
	`, id).Scan(
		&t.ID, &t.ShareableID, &t.Title, &t.Content, &t.Published, &t.AuthorID,
		&t.Views, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

// GetShared reads a text by its public shareable id, joined with the author
// display name for the snapshot.
func (r *textRepository) GetShared(shareableID string) (models.Text, string, error) {
	var t models.Text
	var author string
	err := r.db.QueryRow(`
		SELECT t.id, t.shareable_id, t.title, t.content, t.published, t.author_id,
		       t.created_at, t.updated_at, u.name
		FROM texts t JOIN users u ON u.id = t.author_id
		WHERE t.shareable_id = $1
	`, shareableID).Scan(
		&t.ID, &t.ShareableID, &t.Title, &t.Content, &t.Published, &t.AuthorID,
		&t.CreatedAt, &t.UpdatedAt, &author,
	)
	return t, author, err
}

func (r *textRepository) Update(id int, req models.UpdateTextRequest) (models.Text, error) {
	var t models.Text
	err := r.db.QueryRow(`
		UPDATE texts SET
			title     = COALESCE($2, title),
			content   = COALESCE($3, content),
			published = COALESCE($4, published),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, shareable_id, title, content, published, author_id, created_at, updated_at
	`, id, req.Title, req.Content, req.Published).Scan(
		&t.ID, &t.ShareableID, &t.Title, &t.Content, &t.Published, &t.AuthorID, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *textRepository) Delete(id int) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM texts WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	rowsAff, _ := result.RowsAffected()
	return rowsAff > 0, nil
}
