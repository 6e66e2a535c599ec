package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bittubunny/BLMS/internal/apperr"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed Store implementation. Each merge is a
// single INSERT ... ON CONFLICT DO UPDATE statement, so concurrent writers to
// the same (user, course) row serialize on the row lock and neither side's
// update can be lost.
//
// There is deliberately no foreign key on user_id or course_id: progress
// writes never check that the referenced rows exist, and the cascade on
// course deletion runs through DeleteByCourse.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed progress store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

// InitSchema creates the user_progress table if it does not exist. The unique
// constraint on (user_id, course_id) enforces the one-record-per-pair
// invariant and is what the merge upserts conflict against.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS user_progress (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			course_id TEXT NOT NULL,
			completed_topics JSONB NOT NULL DEFAULT '[]'::jsonb,
			quiz_results JSONB NOT NULL DEFAULT '{}'::jsonb,
			certificate_earned BOOLEAN NOT NULL DEFAULT FALSE,
			last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, course_id)
		)`)
	if err != nil {
		return apperr.Storage("init user_progress schema", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, userID, courseID string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx,
		`SELECT user_id, course_id, completed_topics, quiz_results, certificate_earned, last_updated
		 FROM user_progress
		 WHERE user_id = $1 AND course_id = $2`,
		userID, courseID)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zeroRecord(userID, courseID), nil
		}
		return Record{}, err
	}
	return rec, nil
}

func (s *PostgresStore) MarkTopic(ctx context.Context, userID, courseID, topicID string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx,
		`INSERT INTO user_progress (id, user_id, course_id, completed_topics, last_updated)
		 VALUES ($1, $2, $3, jsonb_build_array($4::text), NOW())
		 ON CONFLICT (user_id, course_id) DO UPDATE SET
			completed_topics = CASE
				WHEN user_progress.completed_topics ? $4::text
					THEN user_progress.completed_topics
				ELSE user_progress.completed_topics || to_jsonb($4::text)
			END,
			last_updated = NOW()
		 RETURNING user_id, course_id, completed_topics, quiz_results, certificate_earned, last_updated`,
		uuid.NewString(), userID, courseID, topicID)

	rec, err := scanRecord(row)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *PostgresStore) RecordScore(ctx context.Context, userID, courseID, quizID string, score float64, final, earned bool) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var got bool
	err := s.pool.QueryRow(ctx,
		`INSERT INTO user_progress (id, user_id, course_id, quiz_results, certificate_earned, last_updated)
		 VALUES ($1, $2, $3, jsonb_build_object($4::text, $5::float8), CASE WHEN $6 THEN $7 ELSE FALSE END, NOW())
		 ON CONFLICT (user_id, course_id) DO UPDATE SET
			quiz_results = user_progress.quiz_results || jsonb_build_object($4::text, $5::float8),
			certificate_earned = CASE WHEN $6 THEN $7 ELSE user_progress.certificate_earned END,
			last_updated = NOW()
		 RETURNING certificate_earned`,
		uuid.NewString(), userID, courseID, quizID, score, final, earned,
	).Scan(&got)
	if err != nil {
		return false, apperr.Storage("record quiz score", err)
	}
	return got, nil
}

func (s *PostgresStore) DeleteByCourse(ctx context.Context, courseID string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`DELETE FROM user_progress WHERE course_id = $1`, courseID)
	if err != nil {
		return apperr.Storage("delete progress by course", err)
	}
	return nil
}

func (s *PostgresStore) ListByCourse(ctx context.Context, courseID string) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT user_id, course_id, completed_topics, quiz_results, certificate_earned, last_updated
		 FROM user_progress
		 WHERE course_id = $1
		 ORDER BY last_updated DESC`,
		courseID)
	if err != nil {
		return nil, apperr.Storage("list progress by course", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterate progress", err)
	}
	return records, nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	var topicsBytes, resultsBytes []byte

	err := row.Scan(
		&rec.UserID,
		&rec.CourseID,
		&topicsBytes,
		&resultsBytes,
		&rec.CertificateEarned,
		&rec.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, pgx.ErrNoRows
		}
		return Record{}, apperr.Storage("scan progress", err)
	}

	if err := json.Unmarshal(topicsBytes, &rec.CompletedTopics); err != nil {
		return Record{}, apperr.Storage("decode completed_topics", err)
	}
	if err := json.Unmarshal(resultsBytes, &rec.QuizResults); err != nil {
		return Record{}, apperr.Storage("decode quiz_results", err)
	}
	return rec, nil
}
