package dto

import "time"

// EventRequest is used for both create and update.
type EventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=4000"`
	Department  string    `json:"department" validate:"required,max=80"`
	Location    string    `json:"location" validate:"max=200"`
	StartsAt    time.Time `json:"startsAt" validate:"required"`
	EndsAt      time.Time `json:"endsAt" validate:"required,gtefield=StartsAt"`
}

// EventListQuery captures event list parameters. Upcoming restricts the list
// to events that have not ended yet.
type EventListQuery struct {
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
	Department string `form:"department"`
	Upcoming   bool   `form:"upcoming"`
	Search     string `form:"search"`
	SortBy     string `form:"sortBy"`
	SortOrder  string `form:"sortOrder"`
}
