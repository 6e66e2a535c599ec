// Package progress tracks per-user, per-course learning state: completed
// topics, quiz scores and the derived certificate flag.
package progress

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bittubunny/BLMS/internal/apperr"
)

// FinalQuizID is the reserved quiz key whose score determines certificate
// eligibility.
const FinalQuizID = "final"

// certificateThreshold is the minimum final-score ratio for a certificate.
const certificateThreshold = 0.6

// Record is the progress state for one (user, course) pair. It is created
// lazily on the first topic or quiz event and only removed when the owning
// course or user goes away.
type Record struct {
	UserID            string             `json:"user_id"`
	CourseID          string             `json:"course_id"`
	CompletedTopics   []string           `json:"completed_topics"`
	QuizResults       map[string]float64 `json:"quiz_results"`
	CertificateEarned bool               `json:"certificate_earned"`
	LastUpdated       time.Time          `json:"last_updated"`
}

// zeroRecord returns the default view for a pair that has never been written.
func zeroRecord(userID, courseID string) Record {
	return Record{
		UserID:          userID,
		CourseID:        courseID,
		CompletedTopics: []string{},
		QuizResults:     map[string]float64{},
	}
}

// CertificateEarned is the certification rule: the final score against the
// course's question count must reach the threshold. Zero questions (or a
// missing course, which counts as zero) never earn a certificate and never
// fault.
func CertificateEarned(score float64, totalQuestions int) bool {
	return totalQuestions > 0 && score/float64(totalQuestions) >= certificateThreshold
}

// QuizCounter supplies the certificate denominator. Implementations report an
// unknown course as zero questions rather than an error.
type QuizCounter interface {
	QuizQuestionCount(ctx context.Context, courseID string) (int, error)
}

// Tracker merges topic-completion and quiz-score events into progress records.
type Tracker struct {
	store   Store
	courses QuizCounter
	events  EventLogger
}

// NewTracker creates a progress tracker. events may be nil to disable the
// event log.
func NewTracker(store Store, courses QuizCounter, events EventLogger) *Tracker {
	if events == nil {
		events = NopEventLogger{}
	}
	return &Tracker{store: store, courses: courses, events: events}
}

// GetProgress returns the record for a pair, or the zero-value view when none
// exists. Unknown user or course ids are not an error.
func (t *Tracker) GetProgress(ctx context.Context, userID, courseID string) (Record, error) {
	return t.store.Get(ctx, userID, courseID)
}

// MarkTopicComplete adds a topic to the completed set. Marking the same topic
// twice is a no-op aside from the last_updated bump.
func (t *Tracker) MarkTopicComplete(ctx context.Context, userID, courseID, topicID string) (Record, error) {
	if topicID == "" {
		return Record{}, fmt.Errorf("topic_id is required: %w", apperr.ErrValidation)
	}

	rec, err := t.store.MarkTopic(ctx, userID, courseID, topicID)
	if err != nil {
		return Record{}, err
	}

	t.logEvent(Event{
		UserID:    userID,
		CourseID:  courseID,
		EventType: "topic_completed",
		Data:      map[string]any{"topic_id": topicID},
	})
	return rec, nil
}

// RecordQuizScore upserts a quiz score, last write wins per quiz id. A write
// under FinalQuizID recomputes the certificate flag atomically with the
// merge; other quiz ids leave the flag untouched. Returns the resulting
// certificate_earned value.
func (t *Tracker) RecordQuizScore(ctx context.Context, userID, courseID, quizID string, score float64) (bool, error) {
	if quizID == "" {
		return false, fmt.Errorf("quiz_id is required: %w", apperr.ErrValidation)
	}

	final := quizID == FinalQuizID
	earned := false
	if final {
		total, err := t.courses.QuizQuestionCount(ctx, courseID)
		if err != nil {
			// The rule treats an unreadable denominator as zero; the
			// score write itself must not fail.
			slog.Warn("quiz count lookup failed, treating as zero",
				"course_id", courseID, "error", err)
			total = 0
		}
		earned = CertificateEarned(score, total)
	}

	got, err := t.store.RecordScore(ctx, userID, courseID, quizID, score, final, earned)
	if err != nil {
		return false, err
	}

	t.logEvent(Event{
		UserID:    userID,
		CourseID:  courseID,
		EventType: "quiz_scored",
		Data:      map[string]any{"quiz_id": quizID, "score": score},
	})
	if final && got {
		t.logEvent(Event{
			UserID:    userID,
			CourseID:  courseID,
			EventType: "certificate_earned",
			Data:      map[string]any{"score": score},
		})
	}
	return got, nil
}

// DeleteByCourse removes every record referencing a course. The catalog calls
// this when a course is deleted.
func (t *Tracker) DeleteByCourse(ctx context.Context, courseID string) error {
	return t.store.DeleteByCourse(ctx, courseID)
}

// ListByCourse returns all records for a course, used by report export.
func (t *Tracker) ListByCourse(ctx context.Context, courseID string) ([]Record, error) {
	return t.store.ListByCourse(ctx, courseID)
}

func (t *Tracker) logEvent(e Event) {
	if err := t.events.LogEvent(e); err != nil {
		// Event logging never fails the mutation it describes.
		slog.Debug("progress event dropped", "type", e.EventType, "error", err)
	}
}
