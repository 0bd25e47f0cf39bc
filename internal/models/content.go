package models

import (
	"time"

	"github.com/lib/pq"
)

// ContentKind discriminates the two moderated resources sharing content_items.
type ContentKind string

const (
	KindNote          ContentKind = "note"
	KindQuestionPaper ContentKind = "question_paper"
)

// ContentStatus is the durable moderation state. Rejection deletes the row.
type ContentStatus string

const (
	StatusPending  ContentStatus = "pending"
	StatusApproved ContentStatus = "approved"
)

// Visibility is stored metadata chosen by the uploader.
type Visibility string

const (
	VisibilityPublic     Visibility = "public"
	VisibilityDepartment Visibility = "department"
	VisibilityPrivate    Visibility = "private"
)

// ExamType classifies question papers.
type ExamType string

const (
	ExamMidterm    ExamType = "midterm"
	ExamFinal      ExamType = "final"
	ExamQuiz       ExamType = "quiz"
	ExamAssignment ExamType = "assignment"
	ExamPractical  ExamType = "practical"
)

// ContentItem is a Note or QuestionPaper moving through moderation.
type ContentItem struct {
	ID          string         `db:"id" json:"id"`
	Kind        ContentKind    `db:"kind" json:"kind"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	Subject     string         `db:"subject" json:"subject"`
	Department  string         `db:"department" json:"department"`
	Semester    int            `db:"semester" json:"semester"`
	ExamType    *ExamType      `db:"exam_type" json:"examType,omitempty"`
	ExamYear    *int           `db:"exam_year" json:"year,omitempty"`
	Tags        pq.StringArray `db:"tags" json:"tags"`
	Visibility  Visibility     `db:"visibility" json:"visibility"`
	FileURL     string         `db:"file_url" json:"fileUrl"`
	FileKey     string         `db:"file_key" json:"-"`
	FileName    string         `db:"file_name" json:"fileName"`
	FileSize    int64          `db:"file_size" json:"fileSize"`
	FileType    string         `db:"file_type" json:"fileType"`
	Status      ContentStatus  `db:"status" json:"status"`
	UploadedBy  string         `db:"uploaded_by" json:"uploadedBy"`
	ApprovedBy  *string        `db:"approved_by" json:"approvedBy,omitempty"`
	ApprovedAt  *time.Time     `db:"approved_at" json:"approvedAt,omitempty"`
	Downloads   int            `db:"downloads" json:"downloads"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// IsApproved reports whether the item is published.
func (c *ContentItem) IsApproved() bool {
	return c != nil && c.Status == StatusApproved
}

// Approve transitions the item to approved, recording the moderator.
func (c *ContentItem) Approve(moderatorID string, at time.Time) {
	c.Status = StatusApproved
	c.ApprovedBy = &moderatorID
	c.ApprovedAt = &at
}

// ContentFilter narrows listing queries. Empty fields are ignored.
type ContentFilter struct {
	Kind       ContentKind
	Department string
	Semester   int
	Subject    string
	ExamType   ExamType
	Year       int
	Status     ContentStatus
	UploadedBy string
	Tags       []string
	Search     string
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string
}

// Comment is an append-only remark on a published item.
type Comment struct {
	ID         string    `db:"id" json:"id"`
	ItemID     string    `db:"item_id" json:"itemId"`
	AuthorID   string    `db:"author_id" json:"authorId"`
	AuthorName string    `db:"author_name" json:"authorName"`
	Text       string    `db:"text" json:"text"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// DownloadRecord is one raw download event.
type DownloadRecord struct {
	ID           string    `db:"id" json:"id"`
	ItemID       string    `db:"item_id" json:"itemId"`
	UserID       *string   `db:"user_id" json:"userId,omitempty"`
	DownloadedAt time.Time `db:"downloaded_at" json:"downloadedAt"`
}

// EngagementStats summarises interactions for a single item.
type EngagementStats struct {
	LikeCount    int  `db:"like_count" json:"likeCount"`
	CommentCount int  `db:"comment_count" json:"commentCount"`
	ViewCount    int  `db:"view_count" json:"viewCount"`
	Liked        bool `db:"liked" json:"liked"`
}

// ContentDetail is the enriched single-item view.
type ContentDetail struct {
	ContentItem
	EngagementStats
	Comments []Comment `json:"comments"`
}
