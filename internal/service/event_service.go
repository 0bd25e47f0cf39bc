package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/college-notes-api/internal/dto"
	"github.com/noah-isme/college-notes-api/internal/models"
	appErrors "github.com/noah-isme/college-notes-api/pkg/errors"
)

type eventRepository interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
}

type eventNotifier interface {
	NotifyEvent(event *models.Event)
}

// EventService manages campus events. Moderators create them and the
// department is notified on creation.
type EventService struct {
	repo      eventRepository
	notifier  eventNotifier
	auth      *Authorizer
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewEventService creates an event service.
func NewEventService(repo eventRepository, notifier eventNotifier, auth *Authorizer, validate *validator.Validate, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if auth == nil {
		auth = NewAuthorizer()
	}
	return &EventService{repo: repo, notifier: notifier, auth: auth, validator: validate, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// List returns paginated events. Upcoming limits results to events not yet over.
func (s *EventService) List(ctx context.Context, filter models.EventFilter, upcoming bool) ([]models.Event, *models.Pagination, error) {
	if upcoming {
		now := s.now()
		filter.From = &now
	}
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, models.NewPagination(total, filter.Page, filter.Limit), nil
}

// Get returns one event.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch event")
	}
	return event, nil
}

// Create stores an event and announces it to the department.
func (s *EventService) Create(ctx context.Context, actor *models.Actor, req dto.EventRequest) (*models.Event, error) {
	if !s.auth.CanModerate(actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "teacher or admin role required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid event payload")
	}
	event := &models.Event{CreatedBy: actor.ID}
	applyEvent(event, req)
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Dependency(err, "failed to create event")
	}
	s.logger.Info("event created", zap.String("event_id", event.ID), zap.String("department", event.Department))
	s.notifier.NotifyEvent(event)
	return event, nil
}

// Update changes an event. Only its creator or an admin may.
func (s *EventService) Update(ctx context.Context, actor *models.Actor, id string, req dto.EventRequest) (*models.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.auth.CanModerate(actor) || !s.auth.CanManageEvent(actor, event) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the creator or an admin can edit this event")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid event payload")
	}
	applyEvent(event, req)
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, appErrors.Dependency(err, "failed to update event")
	}
	return event, nil
}

// Delete removes an event. Only its creator or an admin may.
func (s *EventService) Delete(ctx context.Context, actor *models.Actor, id string) error {
	event, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !s.auth.CanManageEvent(actor, event) {
		return appErrors.Clone(appErrors.ErrForbidden, "only the creator or an admin can delete this event")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Dependency(err, "failed to delete event")
	}
	return nil
}

func applyEvent(event *models.Event, req dto.EventRequest) {
	event.Title = strings.TrimSpace(req.Title)
	event.Description = req.Description
	event.Department = strings.TrimSpace(req.Department)
	event.Location = strings.TrimSpace(req.Location)
	event.StartsAt = req.StartsAt.UTC()
	event.EndsAt = req.EndsAt.UTC()
}
