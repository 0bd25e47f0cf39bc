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

const userColumns = `id, email, password_hash, full_name, role, department, semester, active, notify_notes, notify_question_papers, notify_events, created_at, updated_at`

var userSorts = map[string]string{
	"createdAt":  "created_at",
	"email":      "email",
	"fullName":   "full_name",
	"department": "department",
}

// categoryColumns maps a notification category to its opt-in column.
var categoryColumns = map[models.NotificationCategory]string{
	models.NotifyCategoryNotes:          "notify_notes",
	models.NotifyCategoryQuestionPapers: "notify_question_papers",
	models.NotifyCategoryEvents:         "notify_events",
}

// UserRepository provides database access for user management.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address, case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// ExistsByEmail checks email uniqueness.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email); err != nil {
		return false, fmt.Errorf("check email uniqueness: %w", err)
	}
	return exists, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const query = `INSERT INTO users (` + userColumns + `) VALUES (:id, :email, :password_hash, :full_name, :role, :department, :semester, :active, :notify_notes, :notify_question_papers, :notify_events, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateProfile updates the self-service profile fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	const query = `UPDATE users SET full_name = :full_name, department = :department, semester = :semester, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	return nil
}

// UpdatePreferences stores notification opt-ins.
func (r *UserRepository) UpdatePreferences(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	const query = `UPDATE users SET notify_notes = :notify_notes, notify_question_papers = :notify_question_papers, notify_events = :notify_events, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("update user preferences: %w", err)
	}
	return nil
}

// SetRole changes a user's role.
func (r *UserRepository) SetRole(ctx context.Context, id string, role models.UserRole) error {
	const query = `UPDATE users SET role = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, role, time.Now().UTC()); err != nil {
		return fmt.Errorf("set user role: %w", err)
	}
	return nil
}

// SetActive enables or disables an account.
func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE users SET active = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, active, time.Now().UTC()); err != nil {
		return fmt.Errorf("set user active: %w", err)
	}
	return nil
}

// List returns users based on filters with total count.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	conds := &conditions{}
	if filter.Role != nil {
		conds.eq("role", *filter.Role)
	}
	if filter.Department != "" {
		conds.eq("department", filter.Department)
	}
	if filter.Active != nil {
		conds.eq("active", *filter.Active)
	}
	conds.search(filter.Search, "email", "full_name")

	page, limit := models.NormalizePage(filter.Page, filter.Limit)
	listQuery := fmt.Sprintf("SELECT %s FROM users%s%s LIMIT %d OFFSET %d",
		userColumns, conds.where(), orderBy(filter.SortBy, filter.SortOrder, userSorts, "createdAt"), limit, models.Offset(page, limit))

	users := make([]models.User, 0)
	if err := r.db.SelectContext(ctx, &users, listQuery, conds.args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM users"+conds.where(), conds.args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	return users, total, nil
}

// ListInterestedRecipients returns active users of a department who opted in
// to the category, excluding excludeID (usually the author).
func (r *UserRepository) ListInterestedRecipients(ctx context.Context, department string, category models.NotificationCategory, excludeID string) ([]models.Recipient, error) {
	column, ok := categoryColumns[category]
	if !ok {
		return nil, fmt.Errorf("unknown notification category %q", category)
	}
	query := fmt.Sprintf(`SELECT id, email, full_name FROM users WHERE active AND department = $1 AND %s AND id::text <> $2 ORDER BY email`, column)
	recipients := make([]models.Recipient, 0)
	if err := r.db.SelectContext(ctx, &recipients, query, department, excludeID); err != nil {
		return nil, fmt.Errorf("list interested recipients: %w", err)
	}
	return recipients, nil
}
