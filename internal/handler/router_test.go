package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-notes-api/internal/models"
	"github.com/noah-isme/college-notes-api/internal/service"
	appErrors "github.com/noah-isme/college-notes-api/pkg/errors"
	"github.com/noah-isme/college-notes-api/pkg/storage"
)

type tokenStub map[string]*models.JWTClaims

func (s tokenStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.ErrUnauthorized
}

var routerTokens = tokenStub{
	"student": {UserID: "s1", Role: models.RoleStudent, Department: "CS"},
	"teacher": {UserID: "t1", Role: models.RoleTeacher, Department: "CS"},
	"admin":   {UserID: "a1", Role: models.RoleAdmin, Department: "CS"},
}

func newTestRouter(t *testing.T, files *FileHandler) (*contentServiceMock, http.Handler) {
	t.Helper()
	notes := &contentServiceMock{}
	metrics := service.NewMetricsService()
	router := NewRouter(RouterConfig{
		Tokens:  routerTokens,
		Metrics: metrics,
		Notes:   NewContentHandler(notes, &engagementServiceMock{}, &reporterMock{}, 0, nil),
		Files:   files,
		Health:  NewHealthHandler(metrics, map[string]Pinger{"db": PingFunc(func(context.Context) error { return nil })}),
	})
	return notes, router
}

func serve(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	h.ServeHTTP(w, req)
	return w
}

func TestRouterContentAuthMatrix(t *testing.T) {
	notes, router := newTestRouter(t, nil)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/notes", "", "").Code)
	assert.Nil(t, notes.lastActor)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/notes", "student", "").Code)
	require.NotNil(t, notes.lastActor)
	assert.Equal(t, "s1", notes.lastActor.ID)

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/api/notes/mine", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodPost, "/api/notes/n1/like", "", "").Code)

	approve := `{"approved":true}`
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodPatch, "/api/notes/n1/approve", "student", approve).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodPatch, "/api/notes/n1/approve", "teacher", approve).Code)

	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/api/notes/report", "teacher", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/notes/report?format=csv", "admin", "").Code)
}

func TestRouterHealthAndReady(t *testing.T) {
	_, router := newTestRouter(t, nil)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health", "", "").Code)
	w := serve(router, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"db":"ok"`)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/metrics", "", "").Code)
}

func TestReadyReportsFailingDependency(t *testing.T) {
	h := NewHealthHandler(nil, map[string]Pinger{
		"db":    PingFunc(func(context.Context) error { return nil }),
		"redis": PingFunc(func(context.Context) error { return assert.AnError }),
		"none":  nil,
	})
	c, w := newGinContext(http.MethodGet, "/ready", nil)
	h.Ready(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	assert.NotContains(t, w.Body.String(), "none")
}

func TestFileHandlerServesSignedKey(t *testing.T) {
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	local, err := storage.NewLocalStorage(t.TempDir(), "/api/files", signer)
	require.NoError(t, err)
	_, err = local.Put(context.Background(), "notes/graphs.pdf", strings.NewReader("%PDF-1.4"), "application/pdf")
	require.NoError(t, err)

	_, router := newTestRouter(t, NewFileHandler(signer, local))

	url, err := local.URL("notes/graphs.pdf")
	require.NoError(t, err)
	w := serve(router, http.MethodGet, url, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.4", w.Body.String())

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/api/files/forged.123.sig", "", "").Code)

	missing, _, err := signer.Generate("notes/missing.pdf")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/api/files/"+missing, "", "").Code)
}
