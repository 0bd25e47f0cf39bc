package models

import "time"

// Event is a dated campus happening announced to a department.
type Event struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Department  string    `db:"department" json:"department"`
	Location    string    `db:"location" json:"location"`
	StartsAt    time.Time `db:"starts_at" json:"startsAt"`
	EndsAt      time.Time `db:"ends_at" json:"endsAt"`
	CreatedBy   string    `db:"created_by" json:"createdBy"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// EventFilter narrows event listing. From restricts to events ending after it.
type EventFilter struct {
	Department string
	From       *time.Time
	Search     string
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string
}
