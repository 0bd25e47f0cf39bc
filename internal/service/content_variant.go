package service

import (
	"github.com/noah-isme/college-notes-api/internal/dto"
	"github.com/noah-isme/college-notes-api/internal/models"
	appErrors "github.com/noah-isme/college-notes-api/pkg/errors"
	"github.com/noah-isme/college-notes-api/pkg/storage"
)

// ContentVariant carries what differs between notes and question papers.
type ContentVariant struct {
	Kind     models.ContentKind
	Label    string
	Path     string
	Category storage.Category
	Notify   models.NotificationCategory
	// RequiresExam makes examType and year mandatory.
	RequiresExam bool
}

var (
	NoteVariant = ContentVariant{
		Kind:     models.KindNote,
		Label:    "note",
		Path:     "notes",
		Category: storage.CategoryNotes,
		Notify:   models.NotifyCategoryNotes,
	}
	QuestionPaperVariant = ContentVariant{
		Kind:         models.KindQuestionPaper,
		Label:        "question paper",
		Path:         "question-papers",
		Category:     storage.CategoryQuestions,
		Notify:       models.NotifyCategoryQuestionPapers,
		RequiresExam: true,
	}
)

// VariantFor returns the traits of a kind.
func VariantFor(kind models.ContentKind) (ContentVariant, bool) {
	switch kind {
	case models.KindNote:
		return NoteVariant, true
	case models.KindQuestionPaper:
		return QuestionPaperVariant, true
	default:
		return ContentVariant{}, false
	}
}

// validate applies checks the struct tags cannot express.
func (v ContentVariant) validate(req dto.SubmitContentRequest) []appErrors.FieldError {
	if !v.RequiresExam {
		return nil
	}
	var fields []appErrors.FieldError
	if req.ExamType == "" {
		fields = append(fields, appErrors.FieldError{Field: "examType", Message: "is required"})
	}
	if req.Year == 0 {
		fields = append(fields, appErrors.FieldError{Field: "year", Message: "is required"})
	}
	return fields
}

// build maps a validated request onto a new item.
func (v ContentVariant) build(req dto.SubmitContentRequest) *models.ContentItem {
	item := &models.ContentItem{
		Kind:        v.Kind,
		Title:       req.Title,
		Description: req.Description,
		Subject:     req.Subject,
		Department:  req.Department,
		Semester:    req.Semester,
		Tags:        normalizeTags(req.Tags),
		Visibility:  models.Visibility(req.Visibility),
	}
	if item.Visibility == "" {
		item.Visibility = models.VisibilityPublic
	}
	if v.RequiresExam {
		examType := models.ExamType(req.ExamType)
		year := req.Year
		item.ExamType = &examType
		item.ExamYear = &year
	}
	return item
}
