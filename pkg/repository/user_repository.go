package repository

import (
	"database/sql"

	"pastehub/pkg/models"
)

type UserRepository interface {
	Create(email, name, passwordHash string) (models.User, error)
	GetByEmail(email string) (models.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(email, name, passwordHash string) (models.User, error) {
	var u models.User
	err := r.db.QueryRow(`
		INSERT INTO users (email, name, password)
		VALUES ($1, $2, $3)
		RETURNING id, email, name, created_at
	`, email, name, passwordHash).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	return u, err
}

func (r *userRepository) GetByEmail(email string) (models.User, error) {
	var u models.User
	err := r.db.QueryRow(`
		SELECT id, email, name, password, created_at FROM users WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.Name, &u.Password, &u.CreatedAt)
	return u, err
}
