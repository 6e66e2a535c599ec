package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bittubunny/BLMS/internal/apperr"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed Store implementation. Topics and quiz
// questions live in jsonb columns; jsonb arrays preserve element order.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed course store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

// InitSchema creates the courses table if it does not exist.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS courses (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			duration TEXT NOT NULL,
			image TEXT NOT NULL DEFAULT '',
			topics JSONB NOT NULL DEFAULT '[]'::jsonb,
			quiz JSONB NOT NULL DEFAULT '[]'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return apperr.Storage("init courses schema", err)
	}
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, course Course) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	topics, err := json.Marshal(course.Topics)
	if err != nil {
		return fmt.Errorf("marshal topics: %w", err)
	}
	quiz, err := json.Marshal(course.Quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO courses (id, title, description, duration, image, topics, quiz, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8)`,
		course.ID,
		course.Title,
		course.Description,
		course.Duration,
		course.Image,
		string(topics),
		string(quiz),
		course.CreatedAt,
	)
	if err != nil {
		return apperr.Storage("insert course", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Course, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, title, description, duration, image, topics, quiz, created_at
		 FROM courses
		 ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, apperr.Storage("list courses", err)
	}
	defer rows.Close()

	courses := []Course{}
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterate courses", err)
	}
	return courses, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Course, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx,
		`SELECT id, title, description, duration, image, topics, quiz, created_at
		 FROM courses
		 WHERE id = $1`,
		id)

	course, err := scanCourse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Course{}, fmt.Errorf("course %s: %w", id, apperr.ErrNotFound)
		}
		return Course{}, err
	}
	return course, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return apperr.Storage("delete course", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("course %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func scanCourse(row pgx.Row) (Course, error) {
	var course Course
	var topicsBytes, quizBytes []byte

	err := row.Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.Duration,
		&course.Image,
		&topicsBytes,
		&quizBytes,
		&course.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Course{}, pgx.ErrNoRows
		}
		return Course{}, apperr.Storage("scan course", err)
	}

	if err := json.Unmarshal(topicsBytes, &course.Topics); err != nil {
		return Course{}, apperr.Storage("decode topics", err)
	}
	if err := json.Unmarshal(quizBytes, &course.Quiz); err != nil {
		return Course{}, apperr.Storage("decode quiz", err)
	}
	return course, nil
}
