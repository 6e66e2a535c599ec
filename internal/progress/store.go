package progress

import (
	"context"
	"sync"
	"time"
)

// Store persists progress records. Implementations must serialize concurrent
// merges to the same (user, course) pair so no update is lost.
type Store interface {
	// Get returns the record for a pair, or the zero-value view when none
	// exists. Unknown ids are not an error.
	Get(ctx context.Context, userID, courseID string) (Record, error)
	// MarkTopic adds topicID to the completed set, creating the record if
	// needed, and returns the merged record.
	MarkTopic(ctx context.Context, userID, courseID, topicID string) (Record, error)
	// RecordScore upserts quizResults[quizID] = score. When final is true the
	// certificate flag is set to earned in the same merge. Returns the
	// record's resulting certificate flag.
	RecordScore(ctx context.Context, userID, courseID, quizID string, score float64, final, earned bool) (bool, error)
	// DeleteByCourse removes all records referencing courseID.
	DeleteByCourse(ctx context.Context, courseID string) error
	// ListByCourse returns all records for courseID.
	ListByCourse(ctx context.Context, courseID string) ([]Record, error)
}

type pairKey struct {
	userID   string
	courseID string
}

// MemoryStore is an in-memory implementation of Store. A single mutex
// serializes all merges, which trivially satisfies the lost-update guarantee.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[pairKey]*Record
}

// NewMemoryStore creates a new in-memory progress store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[pairKey]*Record)}
}

func (s *MemoryStore) Get(_ context.Context, userID, courseID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[pairKey{userID, courseID}]
	if !ok {
		return zeroRecord(userID, courseID), nil
	}
	return snapshot(rec), nil
}

func (s *MemoryStore) MarkTopic(_ context.Context, userID, courseID, topicID string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.getOrCreate(userID, courseID)
	if !contains(rec.CompletedTopics, topicID) {
		rec.CompletedTopics = append(rec.CompletedTopics, topicID)
	}
	rec.LastUpdated = time.Now().UTC()
	return snapshot(rec), nil
}

func (s *MemoryStore) RecordScore(_ context.Context, userID, courseID, quizID string, score float64, final, earned bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.getOrCreate(userID, courseID)
	rec.QuizResults[quizID] = score
	if final {
		rec.CertificateEarned = earned
	}
	rec.LastUpdated = time.Now().UTC()
	return rec.CertificateEarned, nil
}

func (s *MemoryStore) DeleteByCourse(_ context.Context, courseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.records {
		if key.courseID == courseID {
			delete(s.records, key)
		}
	}
	return nil
}

func (s *MemoryStore) ListByCourse(_ context.Context, courseID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Record{}
	for key, rec := range s.records {
		if key.courseID == courseID {
			out = append(out, snapshot(rec))
		}
	}
	return out, nil
}

func (s *MemoryStore) getOrCreate(userID, courseID string) *Record {
	key := pairKey{userID, courseID}
	rec, ok := s.records[key]
	if !ok {
		r := zeroRecord(userID, courseID)
		rec = &r
		s.records[key] = rec
	}
	return rec
}

// snapshot copies a record so callers cannot mutate shared state.
func snapshot(rec *Record) Record {
	out := *rec
	out.CompletedTopics = append([]string{}, rec.CompletedTopics...)
	out.QuizResults = make(map[string]float64, len(rec.QuizResults))
	for k, v := range rec.QuizResults {
		out.QuizResults[k] = v
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
