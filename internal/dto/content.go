package dto

import "github.com/noah-isme/college-notes-api/internal/models"

// SubmitContentRequest is the metadata half of a multipart upload.
type SubmitContentRequest struct {
	Title       string   `form:"title" json:"title" validate:"required,max=200"`
	Description string   `form:"description" json:"description" validate:"max=2000"`
	Subject     string   `form:"subject" json:"subject" validate:"required,max=120"`
	Department  string   `form:"department" json:"department" validate:"required,max=80"`
	Semester    int      `form:"semester" json:"semester" validate:"required,min=1,max=8"`
	ExamType    string   `form:"examType" json:"examType" validate:"omitempty,oneof=midterm final quiz assignment practical"`
	Year        int      `form:"year" json:"year" validate:"omitempty,min=1990,max=2100"`
	Tags        []string `form:"tags" json:"tags" validate:"max=20,dive,required,max=40"`
	Visibility  string   `form:"visibility" json:"visibility" validate:"omitempty,oneof=public department private"`
}

// ModerationRequest is the approve/reject decision. Approved is a pointer so
// an omitted field is distinguishable from false.
type ModerationRequest struct {
	Approved        *bool  `json:"approved" validate:"required"`
	RejectionReason string `json:"rejectionReason" validate:"max=500"`
}

// ModerationResult is returned by the moderation endpoint.
type ModerationResult struct {
	Approved bool                `json:"approved"`
	Item     *models.ContentItem `json:"item,omitempty"`
}

// ContentListQuery captures list query parameters.
type ContentListQuery struct {
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
	Department string `form:"department"`
	Semester   int    `form:"semester"`
	Subject    string `form:"subject"`
	ExamType   string `form:"examType"`
	Year       int    `form:"year"`
	Status     string `form:"status"`
	Tags       string `form:"tags"`
	Search     string `form:"search"`
	SortBy     string `form:"sortBy"`
	SortOrder  string `form:"sortOrder"`
}

// CommentRequest is the comment body.
type CommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}

// LikeResult reports the caller's membership after a toggle.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}
