package services

import (
	"database/sql"
	"testing"

	"pastehub/pkg/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers struct {
	byEmail map[string]models.User
	nextID  int
}

func newStubUsers() *stubUsers {
	return &stubUsers{byEmail: map[string]models.User{}, nextID: 1}
}

func (s *stubUsers) Create(email, name, passwordHash string) (models.User, error) {
	u := models.User{ID: s.nextID, Email: email, Name: name, Password: passwordHash}
	s.nextID++
	s.byEmail[email] = u
	return u, nil
}

func (s *stubUsers) GetByEmail(email string) (models.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	return u, nil
}

func TestRegisterThenLogin(t *testing.T) {
	svc := NewAuthService(newStubUsers(), "test-secret")

	reg, err := svc.Register(models.RegisterRequest{
		Email: "alice@example.com", Name: "alice", Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Empty(t, reg.User.Password)
	assert.NotEmpty(t, reg.Token)

	login, err := svc.Login(models.LoginRequest{Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	token, err := jwt.Parse(login.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(reg.User.ID), claims["user_id"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newStubUsers()
	svc := NewAuthService(users, "test-secret")

	_, err := svc.Register(models.RegisterRequest{Email: "a@b.c", Name: "a", Password: "pw123456"})
	require.NoError(t, err)

	_, err = svc.Register(models.RegisterRequest{Email: "a@b.c", Name: "a", Password: "pw123456"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginBadCredentials(t *testing.T) {
	users := newStubUsers()
	svc := NewAuthService(users, "test-secret")

	_, err := svc.Login(models.LoginRequest{Email: "nobody@b.c", Password: "pw"})
	require.ErrorIs(t, err, ErrBadCredentials)

	_, err = svc.Register(models.RegisterRequest{Email: "a@b.c", Name: "a", Password: "right-pw"})
	require.NoError(t, err)

	_, err = svc.Login(models.LoginRequest{Email: "a@b.c", Password: "wrong-pw"})
	require.ErrorIs(t, err, ErrBadCredentials)
}
