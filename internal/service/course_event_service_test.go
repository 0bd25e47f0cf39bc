package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/college-notes-api/internal/dto"
	"github.com/noah-isme/college-notes-api/internal/models"
	appErrors "github.com/noah-isme/college-notes-api/pkg/errors"
)

type memCourseRepo struct {
	courses map[string]*models.Course
}

func (m *memCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	out := []models.Course{}
	for _, c := range m.courses {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *memCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		copy := *c
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memCourseRepo) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	for id, c := range m.courses {
		if strings.EqualFold(c.Code, code) && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memCourseRepo) Create(ctx context.Context, course *models.Course) error {
	course.ID = "course-" + course.Code
	m.courses[course.ID] = course
	return nil
}

func (m *memCourseRepo) Update(ctx context.Context, course *models.Course) error {
	m.courses[course.ID] = course
	return nil
}

func (m *memCourseRepo) Delete(ctx context.Context, id string) error {
	delete(m.courses, id)
	return nil
}

func TestCourseServiceCreate(t *testing.T) {
	repo := &memCourseRepo{courses: map[string]*models.Course{}}
	svc := NewCourseService(repo, nil, nil, zap.NewNop())
	ctx := context.Background()
	req := dto.CourseRequest{Code: "cs201", Title: "Data Structures", Department: "CS", Semester: 3, Credits: 4}

	_, err := svc.Create(ctx, teacherActor, req)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	course, err := svc.Create(ctx, adminActor, req)
	require.NoError(t, err)
	assert.Equal(t, "CS201", course.Code)
	assert.Equal(t, adminActor.ID, course.CreatedBy)

	_, err = svc.Create(ctx, adminActor, req)
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	req.Title = "Data Structures II"
	updated, err := svc.Update(ctx, adminActor, course.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Data Structures II", updated.Title)

	req.Semester = 0
	_, err = svc.Update(ctx, adminActor, course.ID, req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	require.NoError(t, svc.Delete(ctx, adminActor, course.ID))
	_, err = svc.Get(ctx, course.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

type memEventRepo struct {
	events     map[string]*models.Event
	lastFilter models.EventFilter
}

func (m *memEventRepo) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	m.lastFilter = filter
	out := []models.Event{}
	for _, e := range m.events {
		out = append(out, *e)
	}
	return out, len(out), nil
}

func (m *memEventRepo) FindByID(ctx context.Context, id string) (*models.Event, error) {
	if e, ok := m.events[id]; ok {
		copy := *e
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memEventRepo) Create(ctx context.Context, event *models.Event) error {
	event.ID = "event-1"
	m.events[event.ID] = event
	return nil
}

func (m *memEventRepo) Update(ctx context.Context, event *models.Event) error {
	m.events[event.ID] = event
	return nil
}

func (m *memEventRepo) Delete(ctx context.Context, id string) error {
	delete(m.events, id)
	return nil
}

type stubEventNotifier struct {
	events []string
}

func (s *stubEventNotifier) NotifyEvent(event *models.Event) {
	s.events = append(s.events, event.ID)
}

func TestEventServiceCreateNotifies(t *testing.T) {
	repo := &memEventRepo{events: map[string]*models.Event{}}
	notifier := &stubEventNotifier{}
	svc := NewEventService(repo, notifier, nil, nil, zap.NewNop())
	ctx := context.Background()
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	req := dto.EventRequest{Title: "Hackathon", Department: "CS", StartsAt: start, EndsAt: start.Add(8 * time.Hour)}

	_, err := svc.Create(ctx, studentActor, req)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	event, err := svc.Create(ctx, teacherActor, req)
	require.NoError(t, err)
	assert.Equal(t, []string{event.ID}, notifier.events)

	bad := req
	bad.EndsAt = start.Add(-time.Hour)
	_, err = svc.Create(ctx, teacherActor, bad)
	require.Error(t, err)
	assert.Equal(t, "endsAt", appErrors.FromError(err).Fields[0].Field)
}

func TestEventServiceOwnership(t *testing.T) {
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	repo := &memEventRepo{events: map[string]*models.Event{
		"e1": {ID: "e1", Title: "Seminar", Department: "CS", StartsAt: start, EndsAt: start, CreatedBy: teacherActor.ID},
	}}
	svc := NewEventService(repo, &stubEventNotifier{}, nil, nil, zap.NewNop())
	ctx := context.Background()
	other := &models.Actor{ID: "teacher-2", Role: models.RoleTeacher}
	req := dto.EventRequest{Title: "Seminar (moved)", Department: "CS", StartsAt: start, EndsAt: start}

	_, err := svc.Update(ctx, other, "e1", req)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	updated, err := svc.Update(ctx, teacherActor, "e1", req)
	require.NoError(t, err)
	assert.Equal(t, "Seminar (moved)", updated.Title)

	assert.ErrorIs(t, svc.Delete(ctx, other, "e1"), appErrors.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, adminActor, "e1"))
	assert.ErrorIs(t, svc.Delete(ctx, adminActor, "e1"), appErrors.ErrNotFound)
}

func TestEventServiceUpcomingFilter(t *testing.T) {
	repo := &memEventRepo{events: map[string]*models.Event{}}
	svc := NewEventService(repo, &stubEventNotifier{}, nil, nil, zap.NewNop())
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, _, err := svc.List(context.Background(), models.EventFilter{}, true)
	require.NoError(t, err)
	require.NotNil(t, repo.lastFilter.From)
	assert.Equal(t, now, *repo.lastFilter.From)

	_, _, err = svc.List(context.Background(), models.EventFilter{}, false)
	require.NoError(t, err)
	assert.Nil(t, repo.lastFilter.From)
}
