package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/college-notes-api/internal/models"
	appErrors "github.com/noah-isme/college-notes-api/pkg/errors"
	"github.com/noah-isme/college-notes-api/pkg/export"
)

type contentExporter interface {
	Export(ctx context.Context, filter models.ContentFilter) ([]models.ContentItem, error)
}

// Report is a rendered document ready to stream.
type Report struct {
	FileName    string
	ContentType string
	Body        []byte
}

var contentReportHeaders = []string{"Title", "Subject", "Department", "Semester", "Exam", "Status", "Downloads", "Uploaded By", "Created"}

// ReportService renders content listings as CSV or PDF for admins.
type ReportService struct {
	repo   contentExporter
	auth   *Authorizer
	logger *zap.Logger
	now    func() time.Time
}

// NewReportService creates a report service.
func NewReportService(repo contentExporter, auth *Authorizer, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if auth == nil {
		auth = NewAuthorizer()
	}
	return &ReportService{repo: repo, auth: auth, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// ContentReport renders every item of the variant matching filter.
func (s *ReportService) ContentReport(ctx context.Context, actor *models.Actor, variant ContentVariant, format string, filter models.ContentFilter) (*Report, error) {
	if !s.auth.CanAdminister(actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}
	exporter, err := export.ForFormat(strings.ToLower(format))
	if err != nil {
		return nil, appErrors.Validation("invalid report format", appErrors.FieldError{Field: "format", Message: "must be one of: csv, pdf"})
	}
	if err := validateStatus(filter.Status); err != nil {
		return nil, err
	}
	filter.Kind = variant.Kind

	items, err := s.repo.Export(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report data")
	}

	dataset := export.Dataset{
		Title:   fmt.Sprintf("%s report (%s)", capitalize(variant.Label), s.now().Format("2006-01-02")),
		Headers: contentReportHeaders,
		Rows:    make([][]string, 0, len(items)),
	}
	for _, item := range items {
		dataset.Rows = append(dataset.Rows, contentRow(item))
	}

	body, err := exporter.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	s.logger.Info("content report rendered", zap.String("kind", string(variant.Kind)), zap.Int("rows", len(items)), zap.String("format", exporter.Extension()))

	return &Report{
		FileName:    fmt.Sprintf("%s-%s.%s", variant.Path, s.now().Format("20060102-150405"), exporter.Extension()),
		ContentType: exporter.ContentType(),
		Body:        body,
	}, nil
}

func contentRow(item models.ContentItem) []string {
	exam := ""
	if item.ExamType != nil {
		exam = string(*item.ExamType)
		if item.ExamYear != nil {
			exam += " " + strconv.Itoa(*item.ExamYear)
		}
	}
	return []string{
		item.Title,
		item.Subject,
		item.Department,
		strconv.Itoa(item.Semester),
		exam,
		string(item.Status),
		strconv.Itoa(item.Downloads),
		item.UploadedBy,
		item.CreatedAt.Format("2006-01-02"),
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
