package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/college-notes-api/internal/dto"
	"github.com/noah-isme/college-notes-api/internal/models"
	appErrors "github.com/noah-isme/college-notes-api/pkg/errors"
	"github.com/noah-isme/college-notes-api/pkg/storage"
)

type memContentRepo struct {
	mu        sync.Mutex
	items     map[string]*models.ContentItem
	seq       int
	createErr error
}

func newMemContentRepo() *memContentRepo {
	return &memContentRepo{items: map[string]*models.ContentItem{}}
}

func (m *memContentRepo) Create(ctx context.Context, item *models.ContentItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.seq++
	item.ID = fmt.Sprintf("item-%03d", m.seq)
	copy := *item
	m.items[item.ID] = &copy
	return nil
}

func (m *memContentRepo) FindByID(ctx context.Context, kind models.ContentKind, id string) (*models.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok || item.Kind != kind {
		return nil, sql.ErrNoRows
	}
	copy := *item
	return &copy, nil
}

func (m *memContentRepo) UpdateApproval(ctx context.Context, item *models.ContentItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.items[item.ID]
	if !ok {
		return sql.ErrNoRows
	}
	stored.Status = item.Status
	stored.ApprovedBy = item.ApprovedBy
	stored.ApprovedAt = item.ApprovedAt
	return nil
}

func (m *memContentRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func (m *memContentRepo) List(ctx context.Context, filter models.ContentFilter) ([]models.ContentItem, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := make([]models.ContentItem, 0)
	for _, item := range m.items {
		if filter.Kind != "" && item.Kind != filter.Kind {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.UploadedBy != "" && item.UploadedBy != filter.UploadedBy {
			continue
		}
		if filter.Department != "" && item.Department != filter.Department {
			continue
		}
		matched = append(matched, *item)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	page, limit := models.NormalizePage(filter.Page, filter.Limit)
	start := models.Offset(page, limit)
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], len(matched), nil
}

func (m *memContentRepo) addDownload(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id].Downloads++
	return m.items[id].Downloads
}

type stubFileStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	seq     int
	putErr  error
	deletes []string
}

func newStubFileStore() *stubFileStore {
	return &stubFileStore{files: map[string][]byte{}}
}

func (s *stubFileStore) Put(ctx context.Context, category storage.Category, upload storage.Upload) (*storage.Descriptor, error) {
	if s.putErr != nil {
		return nil, s.putErr
	}
	data, err := io.ReadAll(upload.Reader)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	key := fmt.Sprintf("%s/file-%d.pdf", category, s.seq)
	s.files[key] = data
	return &storage.Descriptor{URL: "https://files.test/" + key, Key: key, Size: int64(len(data)), MimeType: "application/pdf"}, nil
}

func (s *stubFileStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *stubFileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, key)
	delete(s.files, key)
	return nil
}

func (s *stubFileStore) URL(key string) (string, error) {
	return "https://files.test/" + key, nil
}

type stubNotifier struct {
	mu        sync.Mutex
	published []string
	rejected  map[string]string
}

func (n *stubNotifier) NotifyPublished(item *models.ContentItem) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.published = append(n.published, item.ID)
}

func (n *stubNotifier) NotifyRejected(item *models.ContentItem, reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.rejected == nil {
		n.rejected = map[string]string{}
	}
	n.rejected[item.ID] = reason
}

type contentFixture struct {
	repo       *memContentRepo
	files      *stubFileStore
	notifier   *stubNotifier
	engagement *memEngagement
	notes      *ContentService
	papers     *ContentService
}

func newContentFixture() *contentFixture {
	f := &contentFixture{
		repo:     newMemContentRepo(),
		files:    newStubFileStore(),
		notifier: &stubNotifier{},
	}
	f.engagement = newMemEngagement(f.repo)
	deps := ContentDeps{
		Repo:       f.repo,
		Engagement: f.engagement,
		Files:      f.files,
		Notifier:   f.notifier,
		Logger:     zap.NewNop(),
	}
	f.notes = NewContentService(NoteVariant, deps)
	f.papers = NewContentService(QuestionPaperVariant, deps)
	return f
}

func pdfUpload() *storage.Upload {
	return &storage.Upload{Filename: "chapter5.pdf", ContentType: "application/pdf", Size: 9, Reader: strings.NewReader("%PDF-1.7\n")}
}

func noteRequest() dto.SubmitContentRequest {
	return dto.SubmitContentRequest{Title: "DS Ch5", Subject: "DS", Department: "CS", Semester: 3}
}

func approve(t *testing.T, svc *ContentService, actor *models.Actor, id string) *dto.ModerationResult {
	t.Helper()
	approved := true
	res, err := svc.Moderate(context.Background(), actor, id, dto.ModerationRequest{Approved: &approved})
	require.NoError(t, err)
	return res
}

func TestSubmitByStudentIsPending(t *testing.T) {
	f := newContentFixture()
	item, err := f.notes.Submit(context.Background(), studentActor, noteRequest(), pdfUpload())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, item.Status)
	assert.Nil(t, item.ApprovedBy)
	assert.Equal(t, models.KindNote, item.Kind)
	assert.Equal(t, "chapter5.pdf", item.FileName)
	assert.Equal(t, "application/pdf", item.FileType)
	assert.True(t, strings.HasPrefix(item.FileKey, "notes/"))
	assert.Equal(t, models.VisibilityPublic, item.Visibility)
	assert.Empty(t, f.notifier.published)
}

func TestSubmitByModeratorPublishesImmediately(t *testing.T) {
	f := newContentFixture()
	item, err := f.notes.Submit(context.Background(), teacherActor, noteRequest(), pdfUpload())
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, item.Status)
	require.NotNil(t, item.ApprovedBy)
	assert.Equal(t, teacherActor.ID, *item.ApprovedBy)
	assert.NotNil(t, item.ApprovedAt)
	assert.Equal(t, []string{item.ID}, f.notifier.published)
}

func TestSubmitInvalidMetadataRemovesFile(t *testing.T) {
	f := newContentFixture()
	req := noteRequest()
	req.Semester = 9

	_, err := f.notes.Submit(context.Background(), studentActor, req, pdfUpload())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "semester", appErr.Fields[0].Field)

	assert.Len(t, f.files.deletes, 1)
	assert.Empty(t, f.files.files)
	assert.Empty(t, f.repo.items)
}

func TestSubmitRepositoryFailureRemovesFile(t *testing.T) {
	f := newContentFixture()
	f.repo.createErr = errors.New("db down")

	_, err := f.notes.Submit(context.Background(), studentActor, noteRequest(), pdfUpload())
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrDependency)
	assert.Len(t, f.files.deletes, 1)
	assert.Empty(t, f.files.files)
}

func TestSubmitStorageFailureIsSurfaced(t *testing.T) {
	f := newContentFixture()
	f.files.putErr = storage.ErrFileTooLarge

	_, err := f.notes.Submit(context.Background(), studentActor, noteRequest(), pdfUpload())
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrPayloadTooLarge)
	assert.Empty(t, f.files.deletes)

	f.files.putErr = storage.ErrUnsupportedType
	_, err = f.notes.Submit(context.Background(), studentActor, noteRequest(), pdfUpload())
	assert.ErrorIs(t, err, appErrors.ErrUnsupportedMedia)
}

func TestSubmitRequiresFile(t *testing.T) {
	f := newContentFixture()
	_, err := f.notes.Submit(context.Background(), studentActor, noteRequest(), nil)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "file", appErr.Fields[0].Field)
}

func TestSubmitQuestionPaperRequiresExamFields(t *testing.T) {
	f := newContentFixture()
	_, err := f.papers.Submit(context.Background(), studentActor, noteRequest(), pdfUpload())
	require.Error(t, err)
	fields := appErrors.FromError(err).Fields
	names := []string{}
	for _, field := range fields {
		names = append(names, field.Field)
	}
	assert.ElementsMatch(t, []string{"examType", "year"}, names)
	assert.Len(t, f.files.deletes, 1)

	req := noteRequest()
	req.ExamType = "final"
	req.Year = 2023
	req.Tags = []string{" Trees ", "trees", "Graphs"}
	item, err := f.papers.Submit(context.Background(), studentActor, req, pdfUpload())
	require.NoError(t, err)
	require.NotNil(t, item.ExamType)
	assert.Equal(t, models.ExamFinal, *item.ExamType)
	assert.Equal(t, 2023, *item.ExamYear)
	assert.Equal(t, []string{"trees", "graphs"}, []string(item.Tags))
	assert.True(t, strings.HasPrefix(item.FileKey, "questions/"))
}

func TestSubmitRejectsUnknownExamType(t *testing.T) {
	f := newContentFixture()
	req := noteRequest()
	req.ExamType = "oral"
	req.Year = 2023
	_, err := f.papers.Submit(context.Background(), studentActor, req, pdfUpload())
	require.Error(t, err)
	assert.Equal(t, "examType", appErrors.FromError(err).Fields[0].Field)
}

func TestPendingVisibility(t *testing.T) {
	f := newContentFixture()
	ctx := context.Background()
	item, err := f.notes.Submit(ctx, studentActor, noteRequest(), pdfUpload())
	require.NoError(t, err)

	items, pagination, err := f.notes.List(ctx, nil, models.ContentFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 0, pagination.Total)

	_, err = f.notes.Get(ctx, nil, item.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	other := &models.Actor{ID: "other", Role: models.RoleStudent}
	_, err = f.notes.Get(ctx, other, item.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	items, _, err = f.notes.List(ctx, other, models.ContentFilter{Status: models.StatusPending})
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = f.notes.Get(ctx, studentActor, item.ID)
	require.NoError(t, err)
	_, err = f.notes.Get(ctx, teacherActor, item.ID)
	require.NoError(t, err)

	mine, _, err := f.notes.ListMine(ctx, studentActor, models.ContentFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)

	pending, _, err := f.notes.List(ctx, teacherActor, models.ContentFilter{Status: models.StatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	approve(t, f.notes, teacherActor, item.ID)

	items, _, err = f.notes.List(ctx, nil, models.ContentFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	detail, err := f.notes.Get(ctx, nil, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, detail.Status)
	assert.Equal(t, 0, detail.ViewCount)
}

func TestListIsScopedToVariant(t *testing.T) {
	f := newContentFixture()
	ctx := context.Background()
	_, err := f.notes.Submit(ctx, teacherActor, noteRequest(), pdfUpload())
	require.NoError(t, err)

	papers, _, err := f.papers.List(ctx, nil, models.ContentFilter{})
	require.NoError(t, err)
	assert.Empty(t, papers)

	notes, _, err := f.notes.List(ctx, nil, models.ContentFilter{})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	_, err = f.papers.Get(ctx, nil, notes[0].ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	f := newContentFixture()
	_, _, err := f.notes.List(context.Background(), teacherActor, models.ContentFilter{Status: "rejected"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestListPagination(t *testing.T) {
	f := newContentFixture()
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		_, err := f.notes.Submit(ctx, teacherActor, noteRequest(), pdfUpload())
		require.NoError(t, err)
	}

	items, pagination, err := f.notes.List(ctx, nil, models.ContentFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, items, 10)
	assert.Equal(t, 25, pagination.Total)
	assert.Equal(t, 3, pagination.Pages)
	assert.True(t, pagination.HasNext)
	assert.False(t, pagination.HasPrev)

	items, pagination, err = f.notes.List(ctx, nil, models.ContentFilter{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.False(t, pagination.HasNext)
	assert.True(t, pagination.HasPrev)
}

func TestModerateRequiresModerator(t *testing.T) {
	f := newContentFixture()
	item, err := f.notes.Submit(context.Background(), studentActor, noteRequest(), pdfUpload())
	require.NoError(t, err)

	approved := true
	_, err = f.notes.Moderate(context.Background(), studentActor, item.ID, dto.ModerationRequest{Approved: &approved})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = f.notes.Moderate(context.Background(), teacherActor, item.ID, dto.ModerationRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.notes.Moderate(context.Background(), teacherActor, "missing", dto.ModerationRequest{Approved: &approved})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestRejectionIsDestructive(t *testing.T) {
	f := newContentFixture()
	ctx := context.Background()
	item, err := f.notes.Submit(ctx, studentActor, noteRequest(), pdfUpload())
	require.NoError(t, err)

	rejected := false
	res, err := f.notes.Moderate(ctx, teacherActor, item.ID, dto.ModerationRequest{Approved: &rejected})
	require.NoError(t, err)
	assert.False(t, res.Approved)
	assert.Nil(t, res.Item)

	assert.Empty(t, f.repo.items)
	assert.Equal(t, []string{item.FileKey}, f.files.deletes)
	assert.Empty(t, f.notifier.rejected)
	assert.Empty(t, f.notifier.published)

	_, err = f.notes.Get(ctx, teacherActor, item.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestRejectionWithReasonNotifiesUploader(t *testing.T) {
	f := newContentFixture()
	ctx := context.Background()
	item, err := f.notes.Submit(ctx, studentActor, noteRequest(), pdfUpload())
	require.NoError(t, err)

	rejected := false
	_, err = f.notes.Moderate(ctx, adminActor, item.ID, dto.ModerationRequest{Approved: &rejected, RejectionReason: "blurry scan"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{item.ID: "blurry scan"}, f.notifier.rejected)
}

func TestConcurrentApprovalsBothSucceed(t *testing.T) {
	f := newContentFixture()
	ctx := context.Background()
	item, err := f.notes.Submit(ctx, studentActor, noteRequest(), pdfUpload())
	require.NoError(t, err)

	moderators := []*models.Actor{teacherActor, adminActor}
	var wg sync.WaitGroup
	errs := make([]error, len(moderators))
	for i, moderator := range moderators {
		wg.Add(1)
		go func() {
			defer wg.Done()
			approved := true
			_, errs[i] = f.notes.Moderate(ctx, moderator, item.ID, dto.ModerationRequest{Approved: &approved})
		}()
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	stored := f.repo.items[item.ID]
	assert.Equal(t, models.StatusApproved, stored.Status)
	require.NotNil(t, stored.ApprovedBy)
	assert.Contains(t, []string{teacherActor.ID, adminActor.ID}, *stored.ApprovedBy)
	assert.Len(t, f.notifier.published, 2)
}

func TestDeletePermissions(t *testing.T) {
	f := newContentFixture()
	ctx := context.Background()
	item, err := f.notes.Submit(ctx, teacherActor, noteRequest(), pdfUpload())
	require.NoError(t, err)

	err = f.notes.Delete(ctx, studentActor, item.ID)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	err = f.notes.Delete(ctx, adminActor, item.ID)
	require.NoError(t, err)
	assert.Empty(t, f.repo.items)
	assert.Equal(t, []string{item.FileKey}, f.files.deletes)

	pending, err := f.notes.Submit(ctx, studentActor, noteRequest(), pdfUpload())
	require.NoError(t, err)
	other := &models.Actor{ID: "other", Role: models.RoleStudent}
	assert.ErrorIs(t, f.notes.Delete(ctx, other, pending.ID), appErrors.ErrNotFound)
	require.NoError(t, f.notes.Delete(ctx, studentActor, pending.ID))
}
