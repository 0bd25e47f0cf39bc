package models

import "time"

// Course is a catalogue entry notes and papers are filed against.
type Course struct {
	ID          string    `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Title       string    `db:"title" json:"title"`
	Department  string    `db:"department" json:"department"`
	Semester    int       `db:"semester" json:"semester"`
	Credits     int       `db:"credits" json:"credits"`
	Description string    `db:"description" json:"description"`
	CreatedBy   string    `db:"created_by" json:"createdBy"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// CourseFilter narrows course listing.
type CourseFilter struct {
	Department string
	Semester   int
	Search     string
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string
}
