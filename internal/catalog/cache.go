package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedStore decorates a Store with a Redis read-through cache for course
// lookups by id. Courses are immutable once created, so entries only need
// invalidation on delete.
type CachedStore struct {
	Store
	client *redis.Client
	ttl    time.Duration
}

// NewCachedStore wraps inner with a Redis cache.
func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{Store: inner, client: client, ttl: ttl}
}

func (s *CachedStore) Get(ctx context.Context, id string) (Course, error) {
	key := cacheKey(id)

	data, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		var course Course
		if err := json.Unmarshal(data, &course); err == nil {
			return course, nil
		}
		// Corrupt entry, fall through to the store.
		s.client.Del(ctx, key)
	} else if err != redis.Nil {
		slog.Debug("course cache read failed", "course_id", id, "error", err)
	}

	course, err := s.Store.Get(ctx, id)
	if err != nil {
		return Course{}, err
	}
	s.set(ctx, course)
	return course, nil
}

func (s *CachedStore) Insert(ctx context.Context, course Course) error {
	if err := s.Store.Insert(ctx, course); err != nil {
		return err
	}
	s.set(ctx, course)
	return nil
}

func (s *CachedStore) Delete(ctx context.Context, id string) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		slog.Debug("course cache invalidation failed", "course_id", id, "error", err)
	}
	return nil
}

func (s *CachedStore) set(ctx context.Context, course Course) {
	data, err := json.Marshal(course)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, cacheKey(course.ID), data, s.ttl).Err(); err != nil {
		slog.Debug("course cache write failed", "course_id", course.ID, "error", err)
	}
}

func cacheKey(id string) string {
	return "course:" + id
}
