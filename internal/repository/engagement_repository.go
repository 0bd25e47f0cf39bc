package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-notes-api/internal/models"
)

// EngagementRepository persists likes, comments, views and downloads.
type EngagementRepository struct {
	db *sqlx.DB
}

// NewEngagementRepository creates a new instance of EngagementRepository.
func NewEngagementRepository(db *sqlx.DB) *EngagementRepository {
	return &EngagementRepository{db: db}
}

// ToggleLike removes the user's like when present and adds it otherwise.
// The returned flag is the user's membership after the call.
func (r *EngagementRepository) ToggleLike(ctx context.Context, itemID, userID string) (bool, int, error) {
	const deleteQuery = `DELETE FROM content_likes WHERE item_id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, deleteQuery, itemID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("unlike content: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, 0, fmt.Errorf("unlike content: %w", err)
	}

	liked := false
	if removed == 0 {
		const insertQuery = `INSERT INTO content_likes (item_id, user_id, created_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`
		if _, err := r.db.ExecContext(ctx, insertQuery, itemID, userID, time.Now().UTC()); err != nil {
			return false, 0, fmt.Errorf("like content: %w", err)
		}
		liked = true
	}

	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM content_likes WHERE item_id = $1`, itemID); err != nil {
		return false, 0, fmt.Errorf("count likes: %w", err)
	}
	return liked, count, nil
}

// AddComment appends a comment.
func (r *EngagementRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO content_comments (id, item_id, author_id, text, created_at) VALUES (:id, :item_id, :author_id, :text, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
		return fmt.Errorf("add comment: %w", err)
	}
	return nil
}

// FindComment returns a comment scoped to its item.
func (r *EngagementRepository) FindComment(ctx context.Context, itemID, commentID string) (*models.Comment, error) {
	if !validID(itemID) || !validID(commentID) {
		return nil, sql.ErrNoRows
	}
	const query = `SELECT c.id, c.item_id, c.author_id, COALESCE(u.full_name, '') AS author_name, c.text, c.created_at
FROM content_comments c LEFT JOIN users u ON u.id = c.author_id
WHERE c.id = $1 AND c.item_id = $2`
	var comment models.Comment
	if err := r.db.GetContext(ctx, &comment, query, commentID, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return &comment, nil
}

// DeleteComment removes a comment.
func (r *EngagementRepository) DeleteComment(ctx context.Context, commentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM content_comments WHERE id = $1`, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// ListComments returns an item's comments oldest first.
func (r *EngagementRepository) ListComments(ctx context.Context, itemID string) ([]models.Comment, error) {
	const query = `SELECT c.id, c.item_id, c.author_id, COALESCE(u.full_name, '') AS author_name, c.text, c.created_at
FROM content_comments c LEFT JOIN users u ON u.id = c.author_id
WHERE c.item_id = $1 ORDER BY c.created_at ASC`
	comments := make([]models.Comment, 0)
	if err := r.db.SelectContext(ctx, &comments, query, itemID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// RecordView stores a unique (item, user) view and reports whether it was new.
func (r *EngagementRepository) RecordView(ctx context.Context, itemID, userID string) (bool, error) {
	const query = `INSERT INTO content_views (item_id, user_id, viewed_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, itemID, userID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("record view: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record view: %w", err)
	}
	return n > 0, nil
}

// RecordDownload appends a download record and bumps the item counter in one
// transaction, returning the new counter value.
func (r *EngagementRepository) RecordDownload(ctx context.Context, itemID string, userID *string) (downloads int, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin download transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertQuery = `INSERT INTO content_downloads (id, item_id, user_id, downloaded_at) VALUES ($1, $2, $3, $4)`
	if _, err = tx.ExecContext(ctx, insertQuery, uuid.NewString(), itemID, userID, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("insert download record: %w", err)
	}

	const updateQuery = `UPDATE content_items SET downloads = downloads + 1 WHERE id = $1 RETURNING downloads`
	if err = tx.GetContext(ctx, &downloads, updateQuery, itemID); err != nil {
		return 0, fmt.Errorf("increment downloads: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit download: %w", err)
	}
	return downloads, nil
}

// Stats aggregates engagement counters for an item. viewerID may be empty.
func (r *EngagementRepository) Stats(ctx context.Context, itemID, viewerID string) (*models.EngagementStats, error) {
	const query = `SELECT
	(SELECT COUNT(*) FROM content_likes WHERE item_id = $1) AS like_count,
	(SELECT COUNT(*) FROM content_comments WHERE item_id = $1) AS comment_count,
	(SELECT COUNT(*) FROM content_views WHERE item_id = $1) AS view_count,
	EXISTS (SELECT 1 FROM content_likes WHERE item_id = $1 AND user_id::text = $2) AS liked`
	var stats models.EngagementStats
	if err := r.db.GetContext(ctx, &stats, query, itemID, viewerID); err != nil {
		return nil, fmt.Errorf("engagement stats: %w", err)
	}
	return &stats, nil
}
