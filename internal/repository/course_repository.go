package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-notes-api/internal/models"
)

const courseColumns = `id, code, title, department, semester, credits, description, created_by, created_at, updated_at`

var courseSorts = map[string]string{
	"code":      "code",
	"title":     "title",
	"semester":  "semester",
	"createdAt": "created_at",
}

// CourseRepository manages the course catalogue.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new instance of CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses matching the filter with total count.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	conds := &conditions{}
	if filter.Department != "" {
		conds.eq("department", filter.Department)
	}
	if filter.Semester > 0 {
		conds.eq("semester", filter.Semester)
	}
	conds.search(filter.Search, "code", "title", "description")

	page, limit := models.NormalizePage(filter.Page, filter.Limit)
	sortBy := filter.SortBy
	sortOrder := filter.SortOrder
	if sortBy == "" {
		sortBy, sortOrder = "code", "asc"
	}
	listQuery := fmt.Sprintf("SELECT %s FROM courses%s%s LIMIT %d OFFSET %d",
		courseColumns, conds.where(), orderBy(sortBy, sortOrder, courseSorts, "code"), limit, models.Offset(page, limit))

	courses := make([]models.Course, 0)
	if err := r.db.SelectContext(ctx, &courses, listQuery, conds.args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM courses"+conds.where(), conds.args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// FindByID returns a course.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	var course models.Course
	if err := r.db.GetContext(ctx, &course, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// ExistsByCode checks code uniqueness, ignoring excludeID.
func (r *CourseRepository) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	var exists bool
	const query = `SELECT EXISTS (SELECT 1 FROM courses WHERE UPPER(code) = UPPER($1) AND id::text <> $2)`
	if err := r.db.GetContext(ctx, &exists, query, code, excludeID); err != nil {
		return false, fmt.Errorf("check course code: %w", err)
	}
	return exists, nil
}

// Create inserts a course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now
	const query = `INSERT INTO courses (` + courseColumns + `) VALUES (:id, :code, :title, :department, :semester, :credits, :description, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update modifies a course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET code = :code, title = :title, department = :department, semester = :semester, credits = :credits, description = :description, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// Delete removes a course.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}
