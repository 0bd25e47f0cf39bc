package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/college-notes-api/internal/dto"
	"github.com/noah-isme/college-notes-api/internal/models"
	appErrors "github.com/noah-isme/college-notes-api/pkg/errors"
	"github.com/noah-isme/college-notes-api/pkg/storage"
)

type contentRepository interface {
	Create(ctx context.Context, item *models.ContentItem) error
	FindByID(ctx context.Context, kind models.ContentKind, id string) (*models.ContentItem, error)
	UpdateApproval(ctx context.Context, item *models.ContentItem) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.ContentFilter) ([]models.ContentItem, int, error)
}

type fileStore interface {
	Put(ctx context.Context, category storage.Category, upload storage.Upload) (*storage.Descriptor, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	URL(key string) (string, error)
}

type contentNotifier interface {
	NotifyPublished(item *models.ContentItem)
	NotifyRejected(item *models.ContentItem, reason string)
}

type contentEngagement interface {
	RecordView(ctx context.Context, itemID, userID string) (bool, error)
	Stats(ctx context.Context, itemID, viewerID string) (*models.EngagementStats, error)
	ListComments(ctx context.Context, itemID string) ([]models.Comment, error)
}

// ContentDeps are the collaborators shared by the content workflows.
type ContentDeps struct {
	Repo       contentRepository
	Engagement contentEngagement
	Files      fileStore
	Notifier   contentNotifier
	Authorizer *Authorizer
	Cache      *CacheService
	Metrics    *MetricsService
	Validator  *validator.Validate
	Logger     *zap.Logger
}

// ContentService runs submission, moderation and listing for one content variant.
type ContentService struct {
	variant    ContentVariant
	repo       contentRepository
	engagement contentEngagement
	files      fileStore
	notifier   contentNotifier
	auth       *Authorizer
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewContentService builds the workflow for a variant.
func NewContentService(variant ContentVariant, deps ContentDeps) *ContentService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Validator == nil {
		deps.Validator = NewValidator()
	}
	if deps.Authorizer == nil {
		deps.Authorizer = NewAuthorizer()
	}
	return &ContentService{
		variant:    variant,
		repo:       deps.Repo,
		engagement: deps.Engagement,
		files:      deps.Files,
		notifier:   deps.Notifier,
		auth:       deps.Authorizer,
		cache:      deps.Cache,
		metrics:    deps.Metrics,
		validator:  deps.Validator,
		logger:     deps.Logger.With(zap.String("kind", string(variant.Kind))),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Variant returns the traits this service was built for.
func (s *ContentService) Variant() ContentVariant {
	return s.variant
}

// Submit stores the upload, validates the metadata and persists the item.
// Moderators publish immediately; everyone else lands in pending. The stored
// file is removed again when anything after the upload fails.
func (s *ContentService) Submit(ctx context.Context, actor *models.Actor, req dto.SubmitContentRequest, upload *storage.Upload) (*models.ContentItem, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if upload == nil || upload.Reader == nil {
		return nil, appErrors.Validation("file is required", appErrors.FieldError{Field: "file", Message: "is required"})
	}

	descriptor, err := s.files.Put(ctx, s.variant.Category, *upload)
	if err != nil {
		s.metrics.RecordUpload(string(s.variant.Kind), OutcomeFailure)
		return nil, mapStorageError(err)
	}

	if verr := s.validateSubmission(req); verr != nil {
		s.discardFile(ctx, descriptor.Key)
		s.metrics.RecordUpload(string(s.variant.Kind), OutcomeFailure)
		return nil, verr
	}

	item := s.variant.build(req)
	item.FileURL = descriptor.URL
	item.FileKey = descriptor.Key
	item.FileName = sanitizeFileName(upload.Filename, descriptor.Key)
	item.FileSize = descriptor.Size
	item.FileType = descriptor.MimeType
	item.UploadedBy = actor.ID
	item.Status = models.StatusPending
	if s.auth.CanModerate(actor) {
		item.Approve(actor.ID, s.now())
	}

	if err := s.repo.Create(ctx, item); err != nil {
		s.discardFile(ctx, descriptor.Key)
		s.metrics.RecordUpload(string(s.variant.Kind), OutcomeFailure)
		return nil, appErrors.Dependency(err, "failed to save "+s.variant.Label)
	}
	s.metrics.RecordUpload(string(s.variant.Kind), OutcomeSuccess)
	s.logger.Info("content submitted",
		zap.String("item_id", item.ID),
		zap.String("uploaded_by", actor.ID),
		zap.String("status", string(item.Status)),
	)

	if item.IsApproved() {
		s.cache.Invalidate(ctx, s.cacheNamespace())
		s.notifier.NotifyPublished(item)
	}
	return item, nil
}

// Moderate approves or rejects an item. Approval publishes and notifies
// interested users; rejection removes the file and the record and, when a
// reason is given, tells the uploader.
func (s *ContentService) Moderate(ctx context.Context, actor *models.Actor, id string, req dto.ModerationRequest) (*dto.ModerationResult, error) {
	if !s.auth.CanModerate(actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "moderator role required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid moderation decision")
	}

	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if *req.Approved {
		item.Approve(actor.ID, s.now())
		if err := s.repo.UpdateApproval(ctx, item); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, s.notFound()
			}
			return nil, appErrors.Dependency(err, "failed to approve "+s.variant.Label)
		}
		s.metrics.RecordModeration(string(s.variant.Kind), "approved")
		s.logger.Info("content approved", zap.String("item_id", item.ID), zap.String("moderator", actor.ID))
		s.cache.Invalidate(ctx, s.cacheNamespace())
		s.notifier.NotifyPublished(item)
		s.presentFile(item)
		return &dto.ModerationResult{Approved: true, Item: item}, nil
	}

	s.discardFile(ctx, item.FileKey)
	if err := s.repo.Delete(ctx, item.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.notFound()
		}
		return nil, appErrors.Dependency(err, "failed to remove "+s.variant.Label)
	}
	s.metrics.RecordModeration(string(s.variant.Kind), "rejected")
	s.logger.Info("content rejected", zap.String("item_id", item.ID), zap.String("moderator", actor.ID))
	if item.IsApproved() {
		s.cache.Invalidate(ctx, s.cacheNamespace())
	}
	if reason := strings.TrimSpace(req.RejectionReason); reason != "" {
		s.notifier.NotifyRejected(item, reason)
	}
	return &dto.ModerationResult{Approved: false}, nil
}

// Get returns one item with its engagement summary. Pending items are only
// visible to their uploader and moderators. An authenticated read of a
// published item counts as a view.
func (s *ContentService) Get(ctx context.Context, actor *models.Actor, id string) (*models.ContentDetail, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.IsApproved() && !s.auth.CanSeePending(actor, item) {
		return nil, s.notFound()
	}

	viewerID := ""
	if actor != nil {
		viewerID = actor.ID
		if item.IsApproved() {
			if _, err := s.engagement.RecordView(ctx, item.ID, actor.ID); err != nil {
				s.logger.Warn("failed to record view", zap.String("item_id", item.ID), zap.Error(err))
			}
		}
	}

	stats, err := s.engagement.Stats(ctx, item.ID, viewerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load engagement")
	}
	comments, err := s.engagement.ListComments(ctx, item.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comments")
	}

	s.presentFile(item)
	return &models.ContentDetail{ContentItem: *item, EngagementStats: *stats, Comments: comments}, nil
}

// List returns a filtered page. Callers who cannot moderate only ever see
// approved items. Anonymous pages are served from cache when enabled.
func (s *ContentService) List(ctx context.Context, actor *models.Actor, filter models.ContentFilter) ([]models.ContentItem, *models.Pagination, error) {
	if err := validateStatus(filter.Status); err != nil {
		return nil, nil, err
	}
	filter.Kind = s.variant.Kind
	filter.UploadedBy = strings.TrimSpace(filter.UploadedBy)
	filter.Tags = normalizeTags(filter.Tags)
	filter.Page, filter.Limit = models.NormalizePage(filter.Page, filter.Limit)
	if !s.auth.CanModerate(actor) {
		filter.Status = models.StatusApproved
	}

	var (
		key    string
		cached bool
	)
	if actor == nil {
		key, cached = s.cache.Key(ctx, s.cacheNamespace(), filter)
		var page models.Page[models.ContentItem]
		if cached && s.cache.Get(ctx, key, &page) {
			return page.Items, page.Pagination, nil
		}
	}

	items, pagination, err := s.list(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	if cached {
		s.cache.Set(ctx, key, models.Page[models.ContentItem]{Items: items, Pagination: pagination})
	}
	return items, pagination, nil
}

// ListMine returns the caller's own uploads in any state.
func (s *ContentService) ListMine(ctx context.Context, actor *models.Actor, filter models.ContentFilter) ([]models.ContentItem, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if err := validateStatus(filter.Status); err != nil {
		return nil, nil, err
	}
	filter.Kind = s.variant.Kind
	filter.UploadedBy = actor.ID
	filter.Tags = normalizeTags(filter.Tags)
	return s.list(ctx, filter)
}

// Delete removes an item and its file. Only the uploader or an admin may.
func (s *ContentService) Delete(ctx context.Context, actor *models.Actor, id string) error {
	if actor == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	item, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !s.auth.CanManage(actor, item) {
		if !item.IsApproved() && !s.auth.CanSeePending(actor, item) {
			return s.notFound()
		}
		return appErrors.Clone(appErrors.ErrForbidden, "only the uploader or an admin can delete this "+s.variant.Label)
	}

	if err := s.repo.Delete(ctx, item.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.notFound()
		}
		return appErrors.Dependency(err, "failed to delete "+s.variant.Label)
	}
	s.discardFile(ctx, item.FileKey)
	if item.IsApproved() {
		s.cache.Invalidate(ctx, s.cacheNamespace())
	}
	s.logger.Info("content deleted", zap.String("item_id", item.ID), zap.String("by", actor.ID))
	return nil
}

func (s *ContentService) list(ctx context.Context, filter models.ContentFilter) ([]models.ContentItem, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list "+s.variant.Path)
	}
	for i := range items {
		s.presentFile(&items[i])
	}
	return items, models.NewPagination(total, filter.Page, filter.Limit), nil
}

func (s *ContentService) find(ctx context.Context, id string) (*models.ContentItem, error) {
	item, err := s.repo.FindByID(ctx, s.variant.Kind, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.notFound()
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch "+s.variant.Label)
	}
	return item, nil
}

func (s *ContentService) validateSubmission(req dto.SubmitContentRequest) error {
	var fields []appErrors.FieldError
	if err := s.validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return validationError(err, "invalid "+s.variant.Label+" payload")
		}
		fields = fieldErrors(verrs)
	}
	fields = append(fields, s.variant.validate(req)...)
	if len(fields) > 0 {
		return appErrors.Validation("invalid "+s.variant.Label+" payload", fields...)
	}
	return nil
}

// discardFile is best-effort: a failure is logged and otherwise ignored.
func (s *ContentService) discardFile(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.files.Delete(ctx, key); err != nil {
		s.logger.Error("failed to delete stored file", zap.String("file_key", key), zap.Error(err))
	}
}

// presentFile refreshes the public URL; signed local URLs expire.
func (s *ContentService) presentFile(item *models.ContentItem) {
	if item.FileKey == "" {
		return
	}
	if url, err := s.files.URL(item.FileKey); err == nil && url != "" {
		item.FileURL = url
	}
}

func (s *ContentService) notFound() error {
	return appErrors.Clone(appErrors.ErrNotFound, s.variant.Label+" not found")
}

func (s *ContentService) cacheNamespace() string {
	return "content:" + string(s.variant.Kind)
}

func validateStatus(status models.ContentStatus) error {
	switch status {
	case "", models.StatusPending, models.StatusApproved:
		return nil
	default:
		return appErrors.Validation("invalid filter", appErrors.FieldError{Field: "status", Message: "must be one of: pending, approved"})
	}
}

func mapStorageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrFileTooLarge):
		return appErrors.Wrap(err, appErrors.ErrPayloadTooLarge.Code, appErrors.ErrPayloadTooLarge.Status, "file exceeds the maximum allowed size")
	case errors.Is(err, storage.ErrUnsupportedType):
		return appErrors.Wrap(err, appErrors.ErrUnsupportedMedia.Code, appErrors.ErrUnsupportedMedia.Status, "file type not allowed")
	case errors.Is(err, storage.ErrEmptyFile):
		return appErrors.Validation("file is required", appErrors.FieldError{Field: "file", Message: "must not be empty"})
	default:
		return appErrors.Dependency(err, "failed to store file")
	}
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func sanitizeFileName(name, fallback string) string {
	name = strings.TrimSpace(name)
	if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
		name = name[idx+1:]
	}
	if name == "" {
		return fallback
	}
	if len(name) > 255 {
		name = name[len(name)-255:]
	}
	return name
}

func mapOpenError(err error, label string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "file for this "+label+" is missing")
	}
	return appErrors.Dependency(err, "failed to open file")
}
