package dto

// CourseRequest is used for both create and update.
type CourseRequest struct {
	Code        string `json:"code" validate:"required,max=20"`
	Title       string `json:"title" validate:"required,max=200"`
	Department  string `json:"department" validate:"required,max=80"`
	Semester    int    `json:"semester" validate:"required,min=1,max=8"`
	Credits     int    `json:"credits" validate:"min=0,max=20"`
	Description string `json:"description" validate:"max=2000"`
}

// CourseListQuery captures course list parameters.
type CourseListQuery struct {
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
	Department string `form:"department"`
	Semester   int    `form:"semester"`
	Search     string `form:"search"`
	SortBy     string `form:"sortBy"`
	SortOrder  string `form:"sortOrder"`
}
