// Package account holds user identity and credential verification.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"

	"github.com/bittubunny/BLMS/internal/apperr"
)

// User is a stored identity record. PasswordHash is a bcrypt hash; the
// plaintext is never persisted.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicUser is the view returned to clients.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Store persists users. Email uniqueness is case-sensitive exact match.
type Store interface {
	Insert(ctx context.Context, user User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
}

// Service implements signup and login on top of a Store.
type Service struct {
	store Store
}

// NewService creates an account service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Signup registers a new user. The password is stored as a bcrypt hash.
func (s *Service) Signup(ctx context.Context, name, email, password string) (PublicUser, error) {
	if name == "" || email == "" || password == "" {
		return PublicUser{}, fmt.Errorf("name, email and password are required: %w", apperr.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return PublicUser{}, fmt.Errorf("hashing password: %w", err)
	}

	user := User{
		ID: uuid.NewString(),
		// Display names are NFC-normalized; emails are stored byte-for-byte.
		Name:         norm.NFC.String(name),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.Insert(ctx, user); err != nil {
		return PublicUser{}, err
	}

	slog.Info("user registered", "user_id", user.ID)
	return PublicUser{ID: user.ID, Name: user.Name, Email: user.Email}, nil
}

// Login verifies credentials. Unknown email and wrong password return the
// same error so callers cannot tell which one failed.
func (s *Service) Login(ctx context.Context, email, password string) (PublicUser, error) {
	if email == "" || password == "" {
		return PublicUser{}, apperr.ErrUnauthenticated
	}

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return PublicUser{}, apperr.ErrUnauthenticated
		}
		return PublicUser{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return PublicUser{}, apperr.ErrUnauthenticated
	}

	slog.Info("user logged in", "user_id", user.ID)
	return PublicUser{ID: user.ID, Name: user.Name, Email: user.Email}, nil
}

// List returns the public view of every registered user, newest first.
func (s *Service) List(ctx context.Context) ([]PublicUser, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]PublicUser, len(users))
	for i, u := range users {
		out[i] = PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return out, nil
}
