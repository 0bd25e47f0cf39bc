package service

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/college-notes-api/internal/dto"
	"github.com/noah-isme/college-notes-api/internal/repository"
	appErrors "github.com/noah-isme/college-notes-api/pkg/errors"
)

// Malformed path ids never reach Postgres, whose uuid cast would fail with a
// server error, and are reported as missing.
func TestMalformedIDsAreNotFound(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()
	db := sqlx.NewDb(raw, "sqlmock")

	contentRepo := repository.NewContentRepository(db)
	notes := NewContentService(NoteVariant, ContentDeps{Repo: contentRepo, Files: newStubFileStore(), Logger: zap.NewNop()})
	engagement := NewEngagementService(NoteVariant, contentRepo, repository.NewEngagementRepository(db), newStubFileStore(), nil, nil, nil, zap.NewNop())
	courses := NewCourseService(repository.NewCourseRepository(db), nil, nil, zap.NewNop())
	events := NewEventService(repository.NewEventRepository(db), nil, nil, nil, zap.NewNop())
	users := NewUserService(repository.NewUserRepository(db), nil, nil, zap.NewNop())

	ctx := context.Background()
	approved, active := true, false
	checks := map[string]func() error{
		"note get": func() error { _, err := notes.Get(ctx, nil, "abc"); return err },
		"note moderate": func() error {
			_, err := notes.Moderate(ctx, teacherActor, "abc", dto.ModerationRequest{Approved: &approved})
			return err
		},
		"note delete": func() error { return notes.Delete(ctx, adminActor, "abc") },
		"like":        func() error { _, err := engagement.ToggleLike(ctx, studentActor, "abc"); return err },
		"download":    func() error { _, err := engagement.Download(ctx, nil, "abc"); return err },
		"comment":     func() error { return engagement.DeleteComment(ctx, studentActor, "abc", "xyz") },
		"course get":  func() error { _, err := courses.Get(ctx, "abc"); return err },
		"event get":   func() error { _, err := events.Get(ctx, "abc"); return err },
		"user set active": func() error {
			_, err := users.SetActive(ctx, adminActor, "abc", dto.SetActiveRequest{Active: &active})
			return err
		},
	}
	for name, check := range checks {
		err := check()
		assert.ErrorIs(t, err, appErrors.ErrNotFound, name)
		assert.Equal(t, 404, appErrors.FromError(err).Status, name)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
