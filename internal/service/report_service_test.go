package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/college-notes-api/internal/models"
	appErrors "github.com/noah-isme/college-notes-api/pkg/errors"
)

type stubContentExporter struct {
	items      []models.ContentItem
	lastFilter models.ContentFilter
}

func (s *stubContentExporter) Export(ctx context.Context, filter models.ContentFilter) ([]models.ContentItem, error) {
	s.lastFilter = filter
	return s.items, nil
}

func TestContentReportCSV(t *testing.T) {
	final := models.ExamFinal
	year := 2024
	repo := &stubContentExporter{items: []models.ContentItem{
		{Title: "Final 2024", Subject: "DS", Department: "CS", Semester: 3, ExamType: &final, ExamYear: &year, Status: models.StatusApproved, Downloads: 7, UploadedBy: "u1", CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	}}
	svc := NewReportService(repo, nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC) }

	report, err := svc.ContentReport(context.Background(), adminActor, QuestionPaperVariant, "csv", models.ContentFilter{Department: "CS"})
	require.NoError(t, err)
	assert.Equal(t, "question-papers-20260203-040506.csv", report.FileName)
	assert.Equal(t, "text/csv", report.ContentType)
	assert.Equal(t, models.KindQuestionPaper, repo.lastFilter.Kind)

	lines := strings.Split(strings.TrimSpace(string(report.Body)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Final 2024,DS,CS,3,final 2024,approved,7,u1,2024-06-01", lines[1])
}

func TestContentReportRequiresAdmin(t *testing.T) {
	svc := NewReportService(&stubContentExporter{}, nil, zap.NewNop())
	_, err := svc.ContentReport(context.Background(), teacherActor, NoteVariant, "csv", models.ContentFilter{})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.ContentReport(context.Background(), adminActor, NoteVariant, "xlsx", models.ContentFilter{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestContentReportPDF(t *testing.T) {
	svc := NewReportService(&stubContentExporter{items: []models.ContentItem{{Title: "Graphs", Status: models.StatusPending}}}, nil, zap.NewNop())
	report, err := svc.ContentReport(context.Background(), adminActor, NoteVariant, "PDF", models.ContentFilter{})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", report.ContentType)
	assert.True(t, strings.HasPrefix(string(report.Body), "%PDF"))
}
