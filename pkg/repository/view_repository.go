package repository

import (
	"database/sql"
	"time"

	"pastehub/pkg/models"
)

type ViewRepository interface {
	Create(textID int, viewerIP string) error
	CountByText(textID int) (int, error)
	ListByPeriod(textID int, start, end time.Time) ([]models.View, error)
}

type viewRepository struct {
	db *sql.DB
}

func NewViewRepository(db *sql.DB) ViewRepository {
	return &viewRepository{db: db}
}

func (r *viewRepository) Create(textID int, viewerIP string) error {
	_, err := r.db.Exec(`
		INSERT INTO visualizations (text_id, viewer_ip) VALUES ($1, $2)
	`, textID, viewerIP)
	return err
}

func (r *viewRepository) CountByText(textID int) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM visualizations WHERE text_id = $1
	`, textID).Scan(&count)
	return count, err
}

func (r *viewRepository) ListByPeriod(textID int, start, end time.Time) ([]models.View, error) {
	rows, err := r.db.Query(`
		SELECT id, text_id, viewer_ip, viewed_at
		FROM visualizations
		WHERE text_id = $1 AND viewed_at BETWEEN $2 AND $3
		ORDER BY viewed_at ASC
	`, textID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := []models.View{}
	for rows.Next() {
		var v models.View
		if err := rows.Scan(&v.ID, &v.TextID, &v.ViewerIP, &v.ViewedAt); err != nil {
			continue
		}
		views = append(views, v)
	}
	return views, nil
}
