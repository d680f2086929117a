package services

import (
	"database/sql"
	"errors"
	"time"

	"pastehub/pkg/models"
	"pastehub/pkg/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(req models.RegisterRequest) (models.AuthResponse, error)
	Login(req models.LoginRequest) (models.AuthResponse, error)
}

type authService struct {
	users     repository.UserRepository
	jwtSecret []byte
}

func NewAuthService(users repository.UserRepository, jwtSecret string) AuthService {
	return &authService{users: users, jwtSecret: []byte(jwtSecret)}
}

func (s *authService) Register(req models.RegisterRequest) (models.AuthResponse, error) {
	if _, err := s.users.GetByEmail(req.Email); err == nil {
		return models.AuthResponse{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
	if err != nil {
		return models.AuthResponse{}, err
	}

	user, err := s.users.Create(req.Email, req.Name, string(hash))
	if err != nil {
		return models.AuthResponse{}, err
	}

	return s.respond(user)
}

func (s *authService) Login(req models.LoginRequest) (models.AuthResponse, error) {
	user, err := s.users.GetByEmail(req.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AuthResponse{}, ErrBadCredentials
	}
	if err != nil {
		return models.AuthResponse{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return models.AuthResponse{}, ErrBadCredentials
	}

	return s.respond(user)
}

func (s *authService) respond(user models.User) (models.AuthResponse, error) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}).SignedString(s.jwtSecret)
	if err != nil {
		return models.AuthResponse{}, err
	}

	user.Password = ""
	return models.AuthResponse{User: user, Token: token}, nil
}
