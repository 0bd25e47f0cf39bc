package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/college-notes-api/internal/dto"
	"github.com/noah-isme/college-notes-api/internal/models"
	appErrors "github.com/noah-isme/college-notes-api/pkg/errors"
)

type itemFinder interface {
	FindByID(ctx context.Context, kind models.ContentKind, id string) (*models.ContentItem, error)
}

type engagementRepository interface {
	ToggleLike(ctx context.Context, itemID, userID string) (bool, int, error)
	AddComment(ctx context.Context, comment *models.Comment) error
	FindComment(ctx context.Context, itemID, commentID string) (*models.Comment, error)
	DeleteComment(ctx context.Context, commentID string) error
	RecordView(ctx context.Context, itemID, userID string) (bool, error)
	RecordDownload(ctx context.Context, itemID string, userID *string) (int, error)
}

type fileOpener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// FileDownload is an open stream of a stored file. Callers must close Body.
type FileDownload struct {
	Body        io.ReadCloser
	FileName    string
	ContentType string
	Size        int64
	Downloads   int
}

// EngagementService implements likes, comments, views and downloads on
// published items of one variant.
type EngagementService struct {
	variant   ContentVariant
	items     itemFinder
	repo      engagementRepository
	files     fileOpener
	auth      *Authorizer
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEngagementService constructs an EngagementService.
func NewEngagementService(variant ContentVariant, items itemFinder, repo engagementRepository, files fileOpener, auth *Authorizer, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EngagementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if auth == nil {
		auth = NewAuthorizer()
	}
	return &EngagementService{
		variant:   variant,
		items:     items,
		repo:      repo,
		files:     files,
		auth:      auth,
		metrics:   metrics,
		validator: validate,
		logger:    logger.With(zap.String("kind", string(variant.Kind))),
	}
}

// ToggleLike flips the caller's like and returns the new state and count.
func (s *EngagementService) ToggleLike(ctx context.Context, actor *models.Actor, itemID string) (*dto.LikeResult, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	item, err := s.published(ctx, itemID)
	if err != nil {
		return nil, err
	}
	liked, count, err := s.repo.ToggleLike(ctx, item.ID, actor.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update like")
	}
	return &dto.LikeResult{Liked: liked, LikeCount: count}, nil
}

// AddComment appends a comment by the caller.
func (s *EngagementService) AddComment(ctx context.Context, actor *models.Actor, itemID string, req dto.CommentRequest) (*models.Comment, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	req.Text = strings.TrimSpace(req.Text)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid comment")
	}
	item, err := s.published(ctx, itemID)
	if err != nil {
		return nil, err
	}
	comment := &models.Comment{ItemID: item.ID, AuthorID: actor.ID, AuthorName: actor.FullName, Text: req.Text}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add comment")
	}
	return comment, nil
}

// DeleteComment removes a comment. Only its author or an admin may.
func (s *EngagementService) DeleteComment(ctx context.Context, actor *models.Actor, itemID, commentID string) error {
	if actor == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	item, err := s.published(ctx, itemID)
	if err != nil {
		return err
	}
	comment, err := s.repo.FindComment(ctx, item.ID, commentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "comment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch comment")
	}
	if !s.auth.CanDeleteComment(actor, comment) {
		return appErrors.Clone(appErrors.ErrForbidden, "only the author or an admin can delete this comment")
	}
	if err := s.repo.DeleteComment(ctx, comment.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete comment")
	}
	return nil
}

// RecordView counts one view per user. Anonymous views are not tracked.
func (s *EngagementService) RecordView(ctx context.Context, actor *models.Actor, itemID string) (bool, error) {
	if actor == nil {
		return false, nil
	}
	item, err := s.published(ctx, itemID)
	if err != nil {
		return false, err
	}
	recorded, err := s.repo.RecordView(ctx, item.ID, actor.ID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record view")
	}
	return recorded, nil
}

// Download opens the stored file and records the download. Every call is
// counted, including repeats by the same user.
func (s *EngagementService) Download(ctx context.Context, actor *models.Actor, itemID string) (*FileDownload, error) {
	item, err := s.published(ctx, itemID)
	if err != nil {
		return nil, err
	}

	body, err := s.files.Open(ctx, item.FileKey)
	if err != nil {
		return nil, mapOpenError(err, s.variant.Label)
	}

	var userID *string
	if actor != nil {
		userID = &actor.ID
	}
	downloads, err := s.repo.RecordDownload(ctx, item.ID, userID)
	if err != nil {
		_ = body.Close()
		return nil, appErrors.Dependency(err, "failed to record download")
	}
	s.metrics.RecordDownload(string(s.variant.Kind))

	return &FileDownload{
		Body:        body,
		FileName:    item.FileName,
		ContentType: item.FileType,
		Size:        item.FileSize,
		Downloads:   downloads,
	}, nil
}

// published loads an item and hides anything not yet approved.
func (s *EngagementService) published(ctx context.Context, itemID string) (*models.ContentItem, error) {
	item, err := s.items.FindByID(ctx, s.variant.Kind, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, s.variant.Label+" not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch "+s.variant.Label)
	}
	if !item.IsApproved() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, s.variant.Label+" not found")
	}
	return item, nil
}
