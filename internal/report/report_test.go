package report_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/bittubunny/BLMS/internal/apperr"
	"github.com/bittubunny/BLMS/internal/catalog"
	"github.com/bittubunny/BLMS/internal/progress"
	"github.com/bittubunny/BLMS/internal/report"
)

func setup(t *testing.T) (*report.Builder, *catalog.Catalog, *progress.Tracker) {
	t.Helper()
	courses := catalog.New(catalog.NewMemoryStore(), nil)
	tracker := progress.NewTracker(progress.NewMemoryStore(), courses, nil)
	return report.NewBuilder(courses, tracker), courses, tracker
}

func TestCourseReport(t *testing.T) {
	builder, courses, tracker := setup(t)
	ctx := context.Background()

	course, err := courses.Create(ctx, catalog.CreateInput{
		Title:       "Go Basics",
		Description: "d",
		Duration:    "4 weeks",
		Quiz:        []map[string]any{{"id": "q1"}, {"id": "final"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := tracker.MarkTopicComplete(ctx, "u1", course.ID, "t1"); err != nil {
		t.Fatal(err)
	}
	if _, err := tracker.RecordQuizScore(ctx, "u1", course.ID, "final", 2); err != nil {
		t.Fatal(err)
	}
	if _, err := tracker.MarkTopicComplete(ctx, "u2", course.ID, "t1"); err != nil {
		t.Fatal(err)
	}

	data, err := builder.CourseReport(ctx, course.ID)
	if err != nil {
		t.Fatalf("CourseReport() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reading workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Progress")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	// Header plus one row per user.
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][0] != "User Id" {
		t.Errorf("header = %q, want User Id", rows[0][0])
	}
	if rows[1][0] != "u1" {
		t.Errorf("first data row user = %q, want u1 (sorted)", rows[1][0])
	}
	// 2/2 = 1.0 earns the certificate.
	if rows[1][4] != "yes" {
		t.Errorf("u1 certificate = %q, want yes", rows[1][4])
	}
	if rows[2][4] != "no" {
		t.Errorf("u2 certificate = %q, want no", rows[2][4])
	}
}

func TestCourseReport_UnknownCourse(t *testing.T) {
	builder, _, _ := setup(t)

	_, err := builder.CourseReport(context.Background(), "nonexistent")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("CourseReport() error = %v, want ErrNotFound", err)
	}
}
