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

const eventColumns = `id, title, description, department, location, starts_at, ends_at, created_by, created_at, updated_at`

var eventSorts = map[string]string{
	"startsAt":  "starts_at",
	"title":     "title",
	"createdAt": "created_at",
}

// EventRepository stores campus events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new instance of EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns events matching the filter, soonest first by default.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	conds := &conditions{}
	if filter.Department != "" {
		conds.eq("department", filter.Department)
	}
	if filter.From != nil {
		conds.raw("ends_at >= %s", *filter.From)
	}
	conds.search(filter.Search, "title", "description", "location")

	page, limit := models.NormalizePage(filter.Page, filter.Limit)
	sortBy, sortOrder := filter.SortBy, filter.SortOrder
	if sortBy == "" {
		sortBy, sortOrder = "startsAt", "asc"
	}
	listQuery := fmt.Sprintf("SELECT %s FROM events%s%s LIMIT %d OFFSET %d",
		eventColumns, conds.where(), orderBy(sortBy, sortOrder, eventSorts, "startsAt"), limit, models.Offset(page, limit))

	events := make([]models.Event, 0)
	if err := r.db.SelectContext(ctx, &events, listQuery, conds.args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM events"+conds.where(), conds.args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	return events, total, nil
}

// FindByID returns an event.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	var event models.Event
	if err := r.db.GetContext(ctx, &event, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return &event, nil
}

// Create inserts an event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	const query = `INSERT INTO events (` + eventColumns + `) VALUES (:id, :title, :description, :department, :location, :starts_at, :ends_at, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update modifies an event.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE events SET title = :title, description = :description, department = :department, location = :location, starts_at = :starts_at, ends_at = :ends_at, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// Delete removes an event.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
