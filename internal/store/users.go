package store

import (
	"context"
	"errors"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"

	"github.com/gocql/gocql"
)

var ErrUserNotFound = errors.New("utilisateur introuvable")

// UserStore expose la lecture des utilisateurs (jointure nom/email côté admin)
type UserStore interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

type ScyllaUserStore struct{}

func NewScyllaUserStore() *ScyllaUserStore {
	return &ScyllaUserStore{}
}

func (s *ScyllaUserStore) GetByID(ctx context.Context, userID string) (*models.User, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	u := models.User{ID: userID}
	err = session.Query(`SELECT name, email, role FROM users WHERE user_id = ?`, userID).
		WithContext(ctx).Scan(&u.Name, &u.Email, &u.Role)
	if err == gocql.ErrNotFound {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
