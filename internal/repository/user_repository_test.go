package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-notes-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

var userColumnNames = []string{"id", "email", "password_hash", "full_name", "role", "department", "semester", "active", "notify_notes", "notify_question_papers", "notify_events", "created_at", "updated_at"}

func TestFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userColumnNames).
		AddRow("1", "user@example.com", "hash", "User", string(models.RoleStudent), "CS", 3, true, true, false, true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userColumns + " FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("User@Example.com").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "User@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", user.Email)
	require.NotNil(t, user.Semester)
	assert.Equal(t, 3, *user.Semester)
	assert.False(t, user.NotifyQuestionPapers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	const id = "7d2f4b6a-9c1e-4a3b-8d5f-1e2a3b4c5d6e"
	mock.ExpectQuery("FROM users WHERE id = \\$1").WithArgs(id).WillReturnRows(sqlmock.NewRows(userColumnNames))

	_, err := repo.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())

	_, err = repo.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{Email: "new@example.com", Role: models.RoleStudent, Active: true}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsers(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	role := models.RoleTeacher
	listRows := sqlmock.NewRows(userColumnNames).
		AddRow("1", "a@example.com", "hash", "A", string(role), "CS", nil, true, true, true, true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+userColumns+" FROM users WHERE role = $1 AND department = $2 ORDER BY created_at DESC, id DESC LIMIT 10 OFFSET 0")).
		WithArgs(role, "CS").
		WillReturnRows(listRows)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE role = $1 AND department = $2")).WillReturnRows(countRows)

	users, total, err := repo.List(context.Background(), models.UserFilter{Role: &role, Department: "CS"})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Nil(t, users[0].Semester)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListInterestedRecipients(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "email", "full_name"}).
		AddRow("u2", "b@example.com", "B").
		AddRow("u3", "c@example.com", "C")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE active AND department = $1 AND notify_question_papers AND id::text <> $2 ORDER BY email")).
		WithArgs("CS", "u1").
		WillReturnRows(rows)

	recipients, err := repo.ListInterestedRecipients(context.Background(), "CS", models.NotifyCategoryQuestionPapers, "u1")
	require.NoError(t, err)
	assert.Len(t, recipients, 2)
	assert.Equal(t, "c@example.com", recipients[1].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListInterestedRecipientsUnknownCategory(t *testing.T) {
	db, _, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	_, err := repo.ListInterestedRecipients(context.Background(), "CS", "podcasts", "")
	assert.Error(t, err)
}
