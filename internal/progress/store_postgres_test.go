package progress_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/bittubunny/BLMS/internal/apperr"
	"github.com/bittubunny/BLMS/internal/catalog"
	"github.com/bittubunny/BLMS/internal/progress"
)

// startPostgres spins up a disposable PostgreSQL container and returns a pool
// connected to it.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("blms"),
		tcpostgres.WithUsername("blms"),
		tcpostgres.WithPassword("blms"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminating container: %v", err)
		}
	})

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("creating pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

func TestPostgresStore_MergeSemantics(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()

	store, err := progress.NewPostgresStore(pool)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.InitSchema(ctx); err != nil {
		t.Fatal(err)
	}

	// Idempotent topic insert.
	for i := 0; i < 2; i++ {
		if _, err := store.MarkTopic(ctx, "u1", "c1", "t1"); err != nil {
			t.Fatalf("MarkTopic() run %d error = %v", i+1, err)
		}
	}
	rec, err := store.Get(ctx, "u1", "c1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !reflect.DeepEqual(rec.CompletedTopics, []string{"t1"}) {
		t.Errorf("CompletedTopics = %v, want [t1]", rec.CompletedTopics)
	}

	// Last write wins.
	if _, err := store.RecordScore(ctx, "u1", "c1", "q1", 5, false, false); err != nil {
		t.Fatal(err)
	}
	if _, err := store.RecordScore(ctx, "u1", "c1", "q1", 9, false, false); err != nil {
		t.Fatal(err)
	}
	rec, _ = store.Get(ctx, "u1", "c1")
	if rec.QuizResults["q1"] != 9 {
		t.Errorf("QuizResults[q1] = %v, want 9", rec.QuizResults["q1"])
	}

	// Final write sets the flag, non-final leaves it.
	earned, err := store.RecordScore(ctx, "u1", "c1", "final", 6, true, true)
	if err != nil {
		t.Fatal(err)
	}
	if !earned {
		t.Error("RecordScore(final) = false, want true")
	}
	earned, err = store.RecordScore(ctx, "u1", "c1", "q2", 1, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if !earned {
		t.Error("non-final RecordScore() cleared certificate_earned")
	}

	// Unknown pair is the zero-value view.
	rec, err = store.Get(ctx, "ghost", "ghost")
	if err != nil {
		t.Fatalf("Get(unknown) error = %v", err)
	}
	if len(rec.CompletedTopics) != 0 || len(rec.QuizResults) != 0 || rec.CertificateEarned {
		t.Errorf("Get(unknown) = %+v, want zero-value view", rec)
	}
}

func TestPostgresStore_ConcurrentMerges(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()

	store, err := progress.NewPostgresStore(pool)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.InitSchema(ctx); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		topic := string(rune('a' + i))
		go func() {
			_, err := store.MarkTopic(ctx, "u1", "c1", topic)
			done <- err
		}()
	}
	for i := 0; i < 10; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent MarkTopic() error = %v", err)
		}
	}

	rec, err := store.Get(ctx, "u1", "c1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.CompletedTopics) != 10 {
		t.Errorf("CompletedTopics count = %d, want 10 (lost update)", len(rec.CompletedTopics))
	}
}

func TestPostgres_CourseDeleteCascade(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()

	courseStore, err := catalog.NewPostgresStore(pool)
	if err != nil {
		t.Fatal(err)
	}
	if err := courseStore.InitSchema(ctx); err != nil {
		t.Fatal(err)
	}
	progressStore, err := progress.NewPostgresStore(pool)
	if err != nil {
		t.Fatal(err)
	}
	if err := progressStore.InitSchema(ctx); err != nil {
		t.Fatal(err)
	}

	tracker := progress.NewTracker(progressStore, catalog.New(courseStore, nil), nil)
	courses := catalog.New(courseStore, tracker)

	course, err := courses.Create(ctx, catalog.CreateInput{
		Title:       "Doomed",
		Description: "d",
		Duration:    "1 week",
		Topics:      []map[string]any{{"id": "t1"}},
		Quiz:        []map[string]any{{"id": "final"}},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := tracker.MarkTopicComplete(ctx, "u1", course.ID, "t1"); err != nil {
		t.Fatal(err)
	}

	if err := courses.Delete(ctx, course.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := courses.Get(ctx, course.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}

	rec, err := tracker.GetProgress(ctx, "u1", course.ID)
	if err != nil {
		t.Fatalf("GetProgress() after cascade error = %v", err)
	}
	if len(rec.CompletedTopics) != 0 {
		t.Errorf("CompletedTopics = %v after cascade, want empty", rec.CompletedTopics)
	}
}
