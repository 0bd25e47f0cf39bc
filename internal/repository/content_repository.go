package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/college-notes-api/internal/models"
)

const contentColumns = `id, kind, title, description, subject, department, semester, exam_type, exam_year, tags, visibility, file_url, file_key, file_name, file_size, file_type, status, uploaded_by, approved_by, approved_at, downloads, created_at, updated_at`

// maxExportRows caps unpaginated report queries.
const maxExportRows = 5000

var contentSorts = map[string]string{
	"createdAt": "created_at",
	"title":     "title",
	"downloads": "downloads",
	"semester":  "semester",
	"examYear":  "exam_year",
}

// ContentRepository stores notes and question papers in content_items.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository creates a new instance of ContentRepository.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Create inserts a content item.
func (r *ContentRepository) Create(ctx context.Context, item *models.ContentItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	if item.Tags == nil {
		item.Tags = pq.StringArray{}
	}

	const query = `INSERT INTO content_items (` + contentColumns + `) VALUES (:id, :kind, :title, :description, :subject, :department, :semester, :exam_type, :exam_year, :tags, :visibility, :file_url, :file_key, :file_name, :file_size, :file_type, :status, :uploaded_by, :approved_by, :approved_at, :downloads, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create content item: %w", err)
	}
	return nil
}

// FindByID returns an item of the given kind. Missing rows yield sql.ErrNoRows.
func (r *ContentRepository) FindByID(ctx context.Context, kind models.ContentKind, id string) (*models.ContentItem, error) {
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	const query = `SELECT ` + contentColumns + ` FROM content_items WHERE id = $1 AND kind = $2`
	var item models.ContentItem
	if err := r.db.GetContext(ctx, &item, query, id, kind); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find content item: %w", err)
	}
	return &item, nil
}

// UpdateApproval persists the moderation fields. Concurrent approvals both
// succeed and the later write wins.
func (r *ContentRepository) UpdateApproval(ctx context.Context, item *models.ContentItem) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE content_items SET status = :status, approved_by = :approved_by, approved_at = :approved_at, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, item)
	if err != nil {
		return fmt.Errorf("update content approval: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an item; engagement rows cascade.
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM content_items WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete content item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns one page of items matching the filter and the total match count.
func (r *ContentRepository) List(ctx context.Context, filter models.ContentFilter) ([]models.ContentItem, int, error) {
	conds := contentConditions(filter)
	page, limit := models.NormalizePage(filter.Page, filter.Limit)

	listQuery := fmt.Sprintf("SELECT %s FROM content_items%s%s LIMIT %d OFFSET %d",
		contentColumns, conds.where(), orderBy(filter.SortBy, filter.SortOrder, contentSorts, "createdAt"), limit, models.Offset(page, limit))

	items := make([]models.ContentItem, 0)
	if err := r.db.SelectContext(ctx, &items, listQuery, conds.args...); err != nil {
		return nil, 0, fmt.Errorf("list content items: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM content_items"+conds.where(), conds.args...); err != nil {
		return nil, 0, fmt.Errorf("count content items: %w", err)
	}
	return items, total, nil
}

// Export returns every matching item up to a fixed cap, for reports.
func (r *ContentRepository) Export(ctx context.Context, filter models.ContentFilter) ([]models.ContentItem, error) {
	conds := contentConditions(filter)
	query := fmt.Sprintf("SELECT %s FROM content_items%s%s LIMIT %d",
		contentColumns, conds.where(), orderBy(filter.SortBy, filter.SortOrder, contentSorts, "createdAt"), maxExportRows)

	items := make([]models.ContentItem, 0)
	if err := r.db.SelectContext(ctx, &items, query, conds.args...); err != nil {
		return nil, fmt.Errorf("export content items: %w", err)
	}
	return items, nil
}

func contentConditions(filter models.ContentFilter) *conditions {
	conds := &conditions{}
	if filter.Kind != "" {
		conds.eq("kind", filter.Kind)
	}
	if filter.Status != "" {
		conds.eq("status", filter.Status)
	}
	if filter.Department != "" {
		conds.eq("department", filter.Department)
	}
	if filter.Semester > 0 {
		conds.eq("semester", filter.Semester)
	}
	if filter.Subject != "" {
		conds.eq("subject", filter.Subject)
	}
	if filter.ExamType != "" {
		conds.eq("exam_type", filter.ExamType)
	}
	if filter.Year > 0 {
		conds.eq("exam_year", filter.Year)
	}
	if filter.UploadedBy != "" {
		conds.eq("uploaded_by", filter.UploadedBy)
	}
	if len(filter.Tags) > 0 {
		conds.raw("tags @> %s", pq.StringArray(filter.Tags))
	}
	conds.search(filter.Search, "title", "description", "subject", "array_to_string(tags, ' ')")
	return conds
}
