// Package report renders per-course progress workbooks.
package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bittubunny/BLMS/internal/catalog"
	"github.com/bittubunny/BLMS/internal/progress"
)

const sheetName = "Progress"

// CourseSource resolves the course a report describes.
type CourseSource interface {
	Get(ctx context.Context, id string) (catalog.Course, error)
}

// ProgressLister supplies all progress records for a course.
type ProgressLister interface {
	ListByCourse(ctx context.Context, courseID string) ([]progress.Record, error)
}

// Builder renders xlsx progress reports.
type Builder struct {
	courses  CourseSource
	progress ProgressLister
	titler   cases.Caser
}

// NewBuilder creates a report builder.
func NewBuilder(courses CourseSource, lister ProgressLister) *Builder {
	return &Builder{
		courses:  courses,
		progress: lister,
		titler:   cases.Title(language.English),
	}
}

// CourseReport renders a workbook with one row per user who has progress on
// the course. Propagates NotFound for an unknown course id.
func (b *Builder) CourseReport(ctx context.Context, courseID string) ([]byte, error) {
	course, err := b.courses.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	records, err := b.progress.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	headers := []any{
		b.titler.String("user id"),
		b.titler.String("topics completed"),
		b.titler.String("quizzes taken"),
		b.titler.String("final score"),
		b.titler.String("certificate"),
	}
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	if err := f.SetCellValue(sheetName, "G1", course.Title); err != nil {
		return nil, fmt.Errorf("writing course title: %w", err)
	}

	// Stable output regardless of store iteration order.
	sort.Slice(records, func(i, j int) bool { return records[i].UserID < records[j].UserID })

	for i, rec := range records {
		finalScore := any("")
		if score, ok := rec.QuizResults[progress.FinalQuizID]; ok {
			finalScore = score
		}
		certificate := "no"
		if rec.CertificateEarned {
			certificate = "yes"
		}

		row := []any{
			rec.UserID,
			len(rec.CompletedTopics),
			len(rec.QuizResults),
			finalScore,
			certificate,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("rendering workbook: %w", err)
	}
	return buf.Bytes(), nil
}
