package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/college-notes-api/internal/dto"
	"github.com/noah-isme/college-notes-api/internal/middleware"
	"github.com/noah-isme/college-notes-api/internal/models"
	"github.com/noah-isme/college-notes-api/internal/service"
	appErrors "github.com/noah-isme/college-notes-api/pkg/errors"
	"github.com/noah-isme/college-notes-api/pkg/response"
	"github.com/noah-isme/college-notes-api/pkg/storage"
)

type contentService interface {
	Variant() service.ContentVariant
	Submit(ctx context.Context, actor *models.Actor, req dto.SubmitContentRequest, upload *storage.Upload) (*models.ContentItem, error)
	Moderate(ctx context.Context, actor *models.Actor, id string, req dto.ModerationRequest) (*dto.ModerationResult, error)
	Get(ctx context.Context, actor *models.Actor, id string) (*models.ContentDetail, error)
	List(ctx context.Context, actor *models.Actor, filter models.ContentFilter) ([]models.ContentItem, *models.Pagination, error)
	ListMine(ctx context.Context, actor *models.Actor, filter models.ContentFilter) ([]models.ContentItem, *models.Pagination, error)
	Delete(ctx context.Context, actor *models.Actor, id string) error
}

type engagementService interface {
	ToggleLike(ctx context.Context, actor *models.Actor, itemID string) (*dto.LikeResult, error)
	AddComment(ctx context.Context, actor *models.Actor, itemID string, req dto.CommentRequest) (*models.Comment, error)
	DeleteComment(ctx context.Context, actor *models.Actor, itemID, commentID string) error
	Download(ctx context.Context, actor *models.Actor, itemID string) (*service.FileDownload, error)
}

type contentReporter interface {
	ContentReport(ctx context.Context, actor *models.Actor, variant service.ContentVariant, format string, filter models.ContentFilter) (*service.Report, error)
}

// ContentHandler serves one moderated resource: notes or question papers.
type ContentHandler struct {
	content    contentService
	engagement engagementService
	reports    contentReporter
	maxUpload  int64
	logger     *zap.Logger
}

// NewContentHandler constructs a content handler. maxUpload bounds the
// multipart body; zero leaves gin's default.
func NewContentHandler(content contentService, engagement engagementService, reports contentReporter, maxUpload int64, logger *zap.Logger) *ContentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentHandler{content: content, engagement: engagement, reports: reports, maxUpload: maxUpload, logger: logger}
}

// Register mounts the resource routes on the group. requireAuth must reject
// anonymous callers; optionalAuth only attaches claims.
func (h *ContentHandler) Register(group *gin.RouterGroup, requireAuth, optionalAuth gin.HandlerFunc) {
	group.GET("", optionalAuth, h.List)
	group.GET("/mine", requireAuth, h.ListMine)
	group.GET("/report", requireAuth, middleware.RequireAdmin(), h.Report)
	group.POST("", requireAuth, h.Submit)
	group.GET("/:id", optionalAuth, h.Get)
	group.PATCH("/:id/approve", requireAuth, middleware.RequireModerator(), h.Approve)
	group.GET("/:id/download", optionalAuth, h.Download)
	group.DELETE("/:id", requireAuth, h.Delete)
	group.POST("/:id/like", requireAuth, h.Like)
	group.POST("/:id/comment", requireAuth, h.Comment)
	group.DELETE("/:id/comment/:commentId", requireAuth, h.DeleteComment)
}

// List godoc
// @Summary List published notes or question papers
// @Tags Content
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size (max 50)"
// @Param department query string false "Department"
// @Param semester query int false "Semester"
// @Param subject query string false "Subject"
// @Param examType query string false "Exam type"
// @Param year query int false "Exam year"
// @Param status query string false "pending or approved (moderators only)"
// @Param tags query string false "Comma separated tags, all must match"
// @Param search query string false "Search term"
// @Param sortBy query string false "createdAt, title, downloads, semester, examYear"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /notes [get]
// @Router /question-papers [get]
func (h *ContentHandler) List(c *gin.Context) {
	filter, ok := bindContentFilter(c)
	if !ok {
		return
	}
	items, pagination, err := h.content.List(c.Request.Context(), middleware.CurrentActor(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// ListMine godoc
// @Summary List the caller's own uploads, pending included
// @Tags Content
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /notes/mine [get]
// @Router /question-papers/mine [get]
func (h *ContentHandler) ListMine(c *gin.Context) {
	filter, ok := bindContentFilter(c)
	if !ok {
		return
	}
	items, pagination, err := h.content.ListMine(c.Request.Context(), middleware.CurrentActor(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get one item with engagement counters and comments
// @Tags Content
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notes/{id} [get]
// @Router /question-papers/{id} [get]
func (h *ContentHandler) Get(c *gin.Context) {
	detail, err := h.content.Get(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Submit godoc
// @Summary Upload a note or question paper
// @Tags Content
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Document"
// @Param title formData string true "Title"
// @Param subject formData string true "Subject"
// @Param department formData string true "Department"
// @Param semester formData int true "Semester"
// @Param examType formData string false "Exam type (question papers)"
// @Param year formData int false "Exam year (question papers)"
// @Param tags formData string false "Tags, repeated or comma separated"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Router /notes [post]
// @Router /question-papers [post]
func (h *ContentHandler) Submit(c *gin.Context) {
	if h.maxUpload > 0 {
		// Leave room for the metadata fields around the file part.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+1<<20)
	}

	var req dto.SubmitContentRequest
	if err := c.ShouldBind(&req); err != nil {
		if isBodyTooLarge(err) {
			response.Error(c, appErrors.ErrPayloadTooLarge)
			return
		}
		response.Error(c, bindError(c, err, "invalid upload form", "semester", "year"))
		return
	}
	req.Tags = splitTags(req.Tags)

	var upload *storage.Upload
	header, err := c.FormFile("file")
	switch {
	case err == nil:
		file, openErr := header.Open()
		if openErr != nil {
			response.Error(c, appErrors.Wrap(openErr, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable file part"))
			return
		}
		defer file.Close()
		upload = newUpload(header, file)
	case isBodyTooLarge(err):
		response.Error(c, appErrors.ErrPayloadTooLarge)
		return
	}

	item, err := h.content.Submit(c.Request.Context(), middleware.CurrentActor(c), req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	message := h.content.Variant().Label + " submitted for review"
	if item.IsApproved() {
		message = h.content.Variant().Label + " published"
	}
	response.Created(c, item, message)
}

// Approve godoc
// @Summary Approve or reject a pending item
// @Tags Content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Param payload body dto.ModerationRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notes/{id}/approve [patch]
// @Router /question-papers/{id}/approve [patch]
func (h *ContentHandler) Approve(c *gin.Context) {
	var req dto.ModerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid moderation payload"))
		return
	}
	result, err := h.content.Moderate(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download the file and count the download
// @Tags Content
// @Produce octet-stream
// @Param id path string true "Item ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /notes/{id}/download [get]
// @Router /question-papers/{id}/download [get]
func (h *ContentHandler) Download(c *gin.Context) {
	file, err := h.engagement.Download(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer func() {
		if err := file.Body.Close(); err != nil {
			h.logger.Warn("close download stream", zap.String("item_id", c.Param("id")), zap.Error(err))
		}
	}()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Header("X-Download-Count", fmt.Sprint(file.Downloads))
	size := file.Size
	if size <= 0 {
		size = -1
	}
	c.DataFromReader(http.StatusOK, size, file.ContentType, file.Body, nil)
}

// Delete godoc
// @Summary Delete an item (uploader or admin)
// @Tags Content
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Router /notes/{id} [delete]
// @Router /question-papers/{id} [delete]
func (h *ContentHandler) Delete(c *gin.Context) {
	if err := h.content.Delete(c.Request.Context(), middleware.CurrentActor(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Like godoc
// @Summary Toggle the caller's like
// @Tags Content
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Success 200 {object} response.Envelope
// @Router /notes/{id}/like [post]
// @Router /question-papers/{id}/like [post]
func (h *ContentHandler) Like(c *gin.Context) {
	result, err := h.engagement.ToggleLike(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Comment godoc
// @Summary Comment on an item
// @Tags Content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Param payload body dto.CommentRequest true "Comment"
// @Success 201 {object} response.Envelope
// @Router /notes/{id}/comment [post]
// @Router /question-papers/{id}/comment [post]
func (h *ContentHandler) Comment(c *gin.Context) {
	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid comment payload"))
		return
	}
	comment, err := h.engagement.AddComment(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, comment, "comment added")
}

// DeleteComment godoc
// @Summary Delete a comment (author or admin)
// @Tags Content
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Param commentId path string true "Comment ID"
// @Success 204
// @Router /notes/{id}/comment/{commentId} [delete]
// @Router /question-papers/{id}/comment/{commentId} [delete]
func (h *ContentHandler) DeleteComment(c *gin.Context) {
	if err := h.engagement.DeleteComment(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), c.Param("commentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Report godoc
// @Summary Export the filtered listing as CSV or PDF
// @Tags Content
// @Produce octet-stream
// @Security BearerAuth
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /notes/report [get]
// @Router /question-papers/report [get]
func (h *ContentHandler) Report(c *gin.Context) {
	filter, ok := bindContentFilter(c)
	if !ok {
		return
	}
	report, err := h.reports.ContentReport(c.Request.Context(), middleware.CurrentActor(c), h.content.Variant(), c.DefaultQuery("format", "csv"), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName))
	c.Data(http.StatusOK, report.ContentType, report.Body)
}

func bindContentFilter(c *gin.Context) (models.ContentFilter, bool) {
	var q dto.ContentListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(c, err, "invalid query parameters", "page", "limit", "semester", "year"))
		return models.ContentFilter{}, false
	}
	return models.ContentFilter{
		Department: q.Department,
		Semester:   q.Semester,
		Subject:    q.Subject,
		ExamType:   models.ExamType(q.ExamType),
		Year:       q.Year,
		Status:     models.ContentStatus(q.Status),
		Tags:       splitTags([]string{q.Tags}),
		Search:     q.Search,
		Page:       q.Page,
		Limit:      q.Limit,
		SortBy:     q.SortBy,
		SortOrder:  q.SortOrder,
	}, true
}

// splitTags accepts both repeated fields and comma separated values.
func splitTags(values []string) []string {
	var tags []string
	for _, v := range values {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

func newUpload(header *multipart.FileHeader, file io.Reader) *storage.Upload {
	return &storage.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	}
}

// bindError reports which numeric field failed to parse. Gin's form mapping
// returns the bare strconv error, so the offending key is found by its value.
func bindError(c *gin.Context, err error, message string, numericKeys ...string) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		for _, key := range numericKeys {
			value, ok := c.GetPostForm(key)
			if !ok {
				value, ok = c.GetQuery(key)
			}
			if ok && value == numErr.Num {
				return appErrors.Validation(message, appErrors.FieldError{Field: key, Message: "must be a whole number"})
			}
		}
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message)
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
