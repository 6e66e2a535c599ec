// Package announce manages the announcements list and its live feed.
package announce

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bittubunny/BLMS/internal/apperr"
)

// DefaultType is used when an announcement is created without a type.
const DefaultType = "info"

// Announcement is a broadcast message shown to all users.
type Announcement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists announcements.
type Store interface {
	Insert(ctx context.Context, a Announcement) error
	List(ctx context.Context) ([]Announcement, error)
}

// Service wraps a Store with validation and feed publication.
type Service struct {
	store Store
	feed  *Feed
}

// NewService creates an announcement service. feed may be nil to disable the
// live stream.
func NewService(store Store, feed *Feed) *Service {
	return &Service{store: store, feed: feed}
}

// Create validates and stores a new announcement, then publishes it to the
// live feed.
func (s *Service) Create(ctx context.Context, title, message, typ string) (Announcement, error) {
	if title == "" || message == "" {
		return Announcement{}, fmt.Errorf("title and message are required: %w", apperr.ErrValidation)
	}
	if typ == "" {
		typ = DefaultType
	}

	a := Announcement{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		Type:      typ,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, a); err != nil {
		return Announcement{}, err
	}

	if s.feed != nil {
		s.feed.Publish(a)
	}
	slog.Info("announcement created", "announcement_id", a.ID, "type", a.Type)
	return a, nil
}

// List returns all announcements, newest first.
func (s *Service) List(ctx context.Context) ([]Announcement, error) {
	return s.store.List(ctx)
}

// MemoryStore is an in-memory implementation of Store, safe for concurrent
// append and read.
type MemoryStore struct {
	mu            sync.RWMutex
	announcements []Announcement
}

// NewMemoryStore creates a new in-memory announcement store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{announcements: []Announcement{}}
}

func (s *MemoryStore) Insert(_ context.Context, a Announcement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.announcements = append(s.announcements, a)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Announcement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Announcement, 0, len(s.announcements))
	for i := len(s.announcements) - 1; i >= 0; i-- {
		out = append(out, s.announcements[i])
	}
	return out, nil
}
