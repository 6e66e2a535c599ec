// Package catalog manages the course catalog: immutable-once-created courses,
// each owning an ordered list of topics and an ordered list of quiz questions.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bittubunny/BLMS/internal/apperr"
)

// Course is a catalog entry. Topics and Quiz are opaque structured records;
// the catalog only guarantees each entry is an object carrying an id.
type Course struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Duration    string           `json:"duration"`
	Image       string           `json:"image"`
	Topics      []map[string]any `json:"topics"`
	Quiz        []map[string]any `json:"quiz"`
	CreatedAt   time.Time        `json:"created_at"`
}

// CreateInput holds the fields accepted when adding a course.
type CreateInput struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Duration    string           `json:"duration"`
	Image       string           `json:"image"`
	Topics      []map[string]any `json:"topics"`
	Quiz        []map[string]any `json:"quiz"`
}

// Store persists courses.
type Store interface {
	Insert(ctx context.Context, course Course) error
	List(ctx context.Context) ([]Course, error)
	Get(ctx context.Context, id string) (Course, error)
	Delete(ctx context.Context, id string) error
}

// ProgressPurger removes progress records that reference a course. Deleting a
// course cascades through it.
type ProgressPurger interface {
	DeleteByCourse(ctx context.Context, courseID string) error
}

// Catalog wraps a Store with validation and cascade semantics.
type Catalog struct {
	store  Store
	purger ProgressPurger
}

// New creates a catalog. purger may be nil when no progress records exist to
// cascade (tests).
func New(store Store, purger ProgressPurger) *Catalog {
	return &Catalog{store: store, purger: purger}
}

// Create validates the input and adds a new course with a fresh id.
func (c *Catalog) Create(ctx context.Context, in CreateInput) (Course, error) {
	if in.Title == "" || in.Description == "" || in.Duration == "" {
		return Course{}, fmt.Errorf("title, description and duration are required: %w", apperr.ErrValidation)
	}
	if err := validateContent("topics", in.Topics); err != nil {
		return Course{}, err
	}
	if err := validateContent("quiz", in.Quiz); err != nil {
		return Course{}, err
	}

	course := Course{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Duration:    in.Duration,
		Image:       in.Image,
		Topics:      in.Topics,
		Quiz:        in.Quiz,
		CreatedAt:   time.Now().UTC(),
	}
	if course.Topics == nil {
		course.Topics = []map[string]any{}
	}
	if course.Quiz == nil {
		course.Quiz = []map[string]any{}
	}

	if err := c.store.Insert(ctx, course); err != nil {
		return Course{}, err
	}

	slog.Info("course created", "course_id", course.ID, "title", course.Title,
		"topics", len(course.Topics), "quiz_questions", len(course.Quiz))
	return course, nil
}

// List returns all courses, newest first.
func (c *Catalog) List(ctx context.Context) ([]Course, error) {
	return c.store.List(ctx)
}

// Get returns a course by id.
func (c *Catalog) Get(ctx context.Context, id string) (Course, error) {
	return c.store.Get(ctx, id)
}

// Delete removes a course and all progress records that reference it.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}
	if c.purger != nil {
		if err := c.purger.DeleteByCourse(ctx, id); err != nil {
			return err
		}
	}
	slog.Info("course deleted", "course_id", id)
	return nil
}

// QuizQuestionCount returns the number of quiz questions a course defines.
// An unknown course counts as zero questions; certificate evaluation must not
// fail a quiz-score write.
func (c *Catalog) QuizQuestionCount(ctx context.Context, id string) (int, error) {
	course, err := c.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return len(course.Quiz), nil
}
