package catalog_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/bittubunny/BLMS/internal/apperr"
	"github.com/bittubunny/BLMS/internal/catalog"
)

func newCatalog() *catalog.Catalog {
	return catalog.New(catalog.NewMemoryStore(), nil)
}

func TestCreate_RequiredFields(t *testing.T) {
	tests := []struct {
		name  string
		input catalog.CreateInput
	}{
		{"missing title", catalog.CreateInput{Description: "d", Duration: "4 weeks"}},
		{"missing description", catalog.CreateInput{Title: "t", Duration: "4 weeks"}},
		{"missing duration", catalog.CreateInput{Title: "t", Description: "d"}},
	}

	c := newCatalog()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Create(context.Background(), tt.input)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("Create() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCreate_ContentShape(t *testing.T) {
	c := newCatalog()

	_, err := c.Create(context.Background(), catalog.CreateInput{
		Title:       "Go Basics",
		Description: "Introduction to Go",
		Duration:    "4 weeks",
		Topics:      []map[string]any{{"name": "no id here"}},
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("Create() with id-less topic error = %v, want ErrValidation", err)
	}

	_, err = c.Create(context.Background(), catalog.CreateInput{
		Title:       "Go Basics",
		Description: "Introduction to Go",
		Duration:    "4 weeks",
		Quiz:        []map[string]any{{"id": ""}},
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("Create() with empty quiz id error = %v, want ErrValidation", err)
	}
}

func TestCreate_RoundTrip(t *testing.T) {
	c := newCatalog()

	topics := []map[string]any{
		{"id": "t1", "name": "Variables"},
		{"id": "t2", "name": "Functions"},
	}
	quiz := []map[string]any{
		{"id": "q1", "question": "What is a slice?"},
		{"id": "final", "question": "Everything"},
	}

	created, err := c.Create(context.Background(), catalog.CreateInput{
		Title:       "Go Basics",
		Description: "Introduction to Go",
		Duration:    "4 weeks",
		Topics:      topics,
		Quiz:        quiz,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == "" {
		t.Error("Create() returned empty ID")
	}

	got, err := c.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !reflect.DeepEqual(got.Topics, topics) {
		t.Errorf("Topics = %v, want %v", got.Topics, topics)
	}
	if !reflect.DeepEqual(got.Quiz, quiz) {
		t.Errorf("Quiz = %v, want %v", got.Quiz, quiz)
	}
}

func TestCreate_DefaultsEmptyContent(t *testing.T) {
	c := newCatalog()

	created, err := c.Create(context.Background(), catalog.CreateInput{
		Title:       "Empty Course",
		Description: "No content yet",
		Duration:    "1 week",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Topics == nil || len(created.Topics) != 0 {
		t.Errorf("Topics = %v, want empty non-nil slice", created.Topics)
	}
	if created.Quiz == nil || len(created.Quiz) != 0 {
		t.Errorf("Quiz = %v, want empty non-nil slice", created.Quiz)
	}
}

func TestList_NewestFirst(t *testing.T) {
	c := newCatalog()

	for _, title := range []string{"First", "Second", "Third"} {
		_, err := c.Create(context.Background(), catalog.CreateInput{
			Title:       title,
			Description: "d",
			Duration:    "1 week",
		})
		if err != nil {
			t.Fatalf("Create(%s) error = %v", title, err)
		}
	}

	courses, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(courses) != 3 {
		t.Fatalf("List() returned %d courses, want 3", len(courses))
	}
	if courses[0].Title != "Third" || courses[2].Title != "First" {
		t.Errorf("List() order = [%s %s %s], want newest first",
			courses[0].Title, courses[1].Title, courses[2].Title)
	}
}

func TestGet_NotFound(t *testing.T) {
	c := newCatalog()

	_, err := c.Get(context.Background(), "nonexistent")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

type recordingPurger struct {
	courseIDs []string
}

func (p *recordingPurger) DeleteByCourse(_ context.Context, courseID string) error {
	p.courseIDs = append(p.courseIDs, courseID)
	return nil
}

func TestDelete_CascadesToProgress(t *testing.T) {
	purger := &recordingPurger{}
	c := catalog.New(catalog.NewMemoryStore(), purger)

	created, err := c.Create(context.Background(), catalog.CreateInput{
		Title:       "Doomed",
		Description: "d",
		Duration:    "1 week",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := c.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(purger.courseIDs) != 1 || purger.courseIDs[0] != created.ID {
		t.Errorf("purged courses = %v, want [%s]", purger.courseIDs, created.ID)
	}

	if _, err := c.Get(context.Background(), created.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	c := newCatalog()

	err := c.Delete(context.Background(), "nonexistent")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestQuizQuestionCount(t *testing.T) {
	c := newCatalog()

	created, err := c.Create(context.Background(), catalog.CreateInput{
		Title:       "Quizzed",
		Description: "d",
		Duration:    "1 week",
		Quiz: []map[string]any{
			{"id": "q1"}, {"id": "q2"}, {"id": "final"},
		},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	n, err := c.QuizQuestionCount(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("QuizQuestionCount() error = %v", err)
	}
	if n != 3 {
		t.Errorf("QuizQuestionCount() = %d, want 3", n)
	}

	// Unknown courses count as zero questions, never an error.
	n, err = c.QuizQuestionCount(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("QuizQuestionCount(unknown) error = %v", err)
	}
	if n != 0 {
		t.Errorf("QuizQuestionCount(unknown) = %d, want 0", n)
	}
}
