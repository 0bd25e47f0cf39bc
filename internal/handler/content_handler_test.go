package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-notes-api/internal/dto"
	"github.com/noah-isme/college-notes-api/internal/middleware"
	"github.com/noah-isme/college-notes-api/internal/models"
	"github.com/noah-isme/college-notes-api/internal/service"
	appErrors "github.com/noah-isme/college-notes-api/pkg/errors"
	"github.com/noah-isme/college-notes-api/pkg/storage"
)

type contentServiceMock struct {
	lastActor  *models.Actor
	lastFilter models.ContentFilter
	lastSubmit dto.SubmitContentRequest
	upload     []byte
	uploadName string
	submitted  *models.ContentItem
	err        error
}

func (m *contentServiceMock) Variant() service.ContentVariant { return service.NoteVariant }

func (m *contentServiceMock) Submit(ctx context.Context, actor *models.Actor, req dto.SubmitContentRequest, upload *storage.Upload) (*models.ContentItem, error) {
	m.lastActor = actor
	m.lastSubmit = req
	if upload != nil {
		m.upload, _ = io.ReadAll(upload.Reader)
		m.uploadName = upload.Filename
	}
	return m.submitted, m.err
}

func (m *contentServiceMock) Moderate(ctx context.Context, actor *models.Actor, id string, req dto.ModerationRequest) (*dto.ModerationResult, error) {
	m.lastActor = actor
	if m.err != nil {
		return nil, m.err
	}
	return &dto.ModerationResult{Approved: *req.Approved}, nil
}

func (m *contentServiceMock) Get(ctx context.Context, actor *models.Actor, id string) (*models.ContentDetail, error) {
	m.lastActor = actor
	return nil, appErrors.Clone(appErrors.ErrNotFound, "note not found")
}

func (m *contentServiceMock) List(ctx context.Context, actor *models.Actor, filter models.ContentFilter) ([]models.ContentItem, *models.Pagination, error) {
	m.lastActor = actor
	m.lastFilter = filter
	return []models.ContentItem{{ID: "n1", Title: "Graphs"}}, models.NewPagination(1, filter.Page, filter.Limit), nil
}

func (m *contentServiceMock) ListMine(ctx context.Context, actor *models.Actor, filter models.ContentFilter) ([]models.ContentItem, *models.Pagination, error) {
	return m.List(ctx, actor, filter)
}

func (m *contentServiceMock) Delete(ctx context.Context, actor *models.Actor, id string) error {
	m.lastActor = actor
	return m.err
}

type engagementServiceMock struct {
	download *service.FileDownload
	err      error
}

func (m *engagementServiceMock) ToggleLike(ctx context.Context, actor *models.Actor, itemID string) (*dto.LikeResult, error) {
	return &dto.LikeResult{Liked: true, LikeCount: 1}, m.err
}

func (m *engagementServiceMock) AddComment(ctx context.Context, actor *models.Actor, itemID string, req dto.CommentRequest) (*models.Comment, error) {
	return &models.Comment{ID: "c1", ItemID: itemID, AuthorID: actor.ID, Text: req.Text}, m.err
}

func (m *engagementServiceMock) DeleteComment(ctx context.Context, actor *models.Actor, itemID, commentID string) error {
	return m.err
}

func (m *engagementServiceMock) Download(ctx context.Context, actor *models.Actor, itemID string) (*service.FileDownload, error) {
	return m.download, m.err
}

type reporterMock struct {
	format string
}

func (m *reporterMock) ContentReport(ctx context.Context, actor *models.Actor, variant service.ContentVariant, format string, filter models.ContentFilter) (*service.Report, error) {
	m.format = format
	return &service.Report{FileName: "notes.csv", ContentType: "text/csv", Body: []byte("Title\n")}, nil
}

func newGinContext(method, path string, body io.Reader) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func asStudent(c *gin.Context) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "s1", Role: models.RoleStudent, Department: "CS"})
}

func TestContentHandlerListBindsFilter(t *testing.T) {
	svc := &contentServiceMock{}
	h := NewContentHandler(svc, &engagementServiceMock{}, &reporterMock{}, 0, nil)

	c, w := newGinContext(http.MethodGet, "/api/notes?page=2&limit=5&department=CS&tags=exam,%20graphs&sortBy=downloads", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, svc.lastActor)
	assert.Equal(t, 2, svc.lastFilter.Page)
	assert.Equal(t, 5, svc.lastFilter.Limit)
	assert.Equal(t, []string{"exam", "graphs"}, svc.lastFilter.Tags)

	var body struct {
		Success    bool               `json:"success"`
		Pagination *models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.NotNil(t, body.Pagination)
	assert.Equal(t, 2, body.Pagination.Current)
}

func TestContentHandlerListRejectsBadQuery(t *testing.T) {
	h := NewContentHandler(&contentServiceMock{}, &engagementServiceMock{}, &reporterMock{}, 0, nil)
	c, w := newGinContext(http.MethodGet, "/api/notes?semester=third", nil)
	h.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"semester"`)
}

func multipartBody(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func TestContentHandlerSubmitMultipart(t *testing.T) {
	svc := &contentServiceMock{submitted: &models.ContentItem{ID: "n1", Status: models.StatusPending}}
	h := NewContentHandler(svc, &engagementServiceMock{}, &reporterMock{}, 1<<20, nil)

	body, contentType := multipartBody(t, map[string]string{
		"title":      "Graphs",
		"subject":    "Algorithms",
		"department": "CS",
		"semester":   "4",
		"tags":       "graphs,exam",
	}, "graphs.pdf", []byte("%PDF-1.4 test"))
	c, w := newGinContext(http.MethodPost, "/api/notes", body)
	c.Request.Header.Set("Content-Type", contentType)
	asStudent(c)

	h.Submit(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "s1", svc.lastActor.ID)
	assert.Equal(t, 4, svc.lastSubmit.Semester)
	assert.Equal(t, []string{"graphs", "exam"}, svc.lastSubmit.Tags)
	assert.Equal(t, "graphs.pdf", svc.uploadName)
	assert.Equal(t, "%PDF-1.4 test", string(svc.upload))
	assert.Contains(t, w.Body.String(), "submitted for review")
}

func TestContentHandlerSubmitWithoutFilePassesNil(t *testing.T) {
	svc := &contentServiceMock{err: appErrors.Validation("file is required", appErrors.FieldError{Field: "file", Message: "is required"})}
	h := NewContentHandler(svc, &engagementServiceMock{}, &reporterMock{}, 0, nil)

	body, contentType := multipartBody(t, map[string]string{"title": "Graphs"}, "", nil)
	c, w := newGinContext(http.MethodPost, "/api/notes", body)
	c.Request.Header.Set("Content-Type", contentType)
	asStudent(c)

	h.Submit(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.upload)
	assert.Contains(t, w.Body.String(), `"field":"file"`)
}

func TestContentHandlerSubmitReportsMalformedNumber(t *testing.T) {
	svc := &contentServiceMock{}
	h := NewContentHandler(svc, &engagementServiceMock{}, &reporterMock{}, 1<<20, nil)

	body, contentType := multipartBody(t, map[string]string{
		"title":      "Graphs",
		"subject":    "Algorithms",
		"department": "CS",
		"semester":   "abc",
	}, "graphs.pdf", []byte("%PDF-1.4 test"))
	c, w := newGinContext(http.MethodPost, "/api/notes", body)
	c.Request.Header.Set("Content-Type", contentType)
	asStudent(c)

	h.Submit(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.lastActor)

	var resp struct {
		Code   string                 `json:"code"`
		Errors []appErrors.FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, appErrors.ErrValidation.Code, resp.Code)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "semester", resp.Errors[0].Field)
}

func TestContentHandlerSubmitTooLarge(t *testing.T) {
	svc := &contentServiceMock{}
	h := NewContentHandler(svc, &engagementServiceMock{}, &reporterMock{}, 16, nil)

	body, contentType := multipartBody(t, map[string]string{"title": "Graphs"}, "big.pdf", bytes.Repeat([]byte("a"), 2<<20))
	c, w := newGinContext(http.MethodPost, "/api/notes", body)
	c.Request.Header.Set("Content-Type", contentType)
	asStudent(c)

	h.Submit(c)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Nil(t, svc.lastActor)
}

func TestContentHandlerApprove(t *testing.T) {
	svc := &contentServiceMock{}
	h := NewContentHandler(svc, &engagementServiceMock{}, &reporterMock{}, 0, nil)

	c, w := newGinContext(http.MethodPatch, "/api/notes/n1/approve", strings.NewReader(`{"approved":false,"rejectionReason":"blurry"}`))
	c.Params = gin.Params{{Key: "id", Value: "n1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "t1", Role: models.RoleTeacher})

	h.Approve(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"approved":false`)
	assert.Equal(t, "t1", svc.lastActor.ID)
}

func TestContentHandlerGetNotFound(t *testing.T) {
	h := NewContentHandler(&contentServiceMock{}, &engagementServiceMock{}, &reporterMock{}, 0, nil)
	c, w := newGinContext(http.MethodGet, "/api/notes/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestContentHandlerDownloadStreams(t *testing.T) {
	engagement := &engagementServiceMock{download: &service.FileDownload{
		Body:        io.NopCloser(strings.NewReader("file-bytes")),
		FileName:    "graphs.pdf",
		ContentType: "application/pdf",
		Size:        10,
		Downloads:   3,
	}}
	h := NewContentHandler(&contentServiceMock{}, engagement, &reporterMock{}, 0, nil)
	c, w := newGinContext(http.MethodGet, "/api/notes/n1/download", nil)
	c.Params = gin.Params{{Key: "id", Value: "n1"}}

	h.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "file-bytes", w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="graphs.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "3", w.Header().Get("X-Download-Count"))
}

func TestContentHandlerCommentAndLike(t *testing.T) {
	h := NewContentHandler(&contentServiceMock{}, &engagementServiceMock{}, &reporterMock{}, 0, nil)

	c, w := newGinContext(http.MethodPost, "/api/notes/n1/comment", strings.NewReader(`{"text":"thanks"}`))
	c.Params = gin.Params{{Key: "id", Value: "n1"}}
	asStudent(c)
	h.Comment(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"authorId":"s1"`)

	c, w = newGinContext(http.MethodPost, "/api/notes/n1/like", nil)
	c.Params = gin.Params{{Key: "id", Value: "n1"}}
	asStudent(c)
	h.Like(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"liked":true`)
}

func TestContentHandlerReportDefaultsToCSV(t *testing.T) {
	reporter := &reporterMock{}
	h := NewContentHandler(&contentServiceMock{}, &engagementServiceMock{}, reporter, 0, nil)
	c, w := newGinContext(http.MethodGet, "/api/notes/report", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin})

	h.Report(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", reporter.format)
	assert.Equal(t, `attachment; filename="notes.csv"`, w.Header().Get("Content-Disposition"))
}
