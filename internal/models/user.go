package models

import "time"

// UserRole represents the available roles for the capability checks.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	default:
		return false
	}
}

// User represents an application user stored in the users table.
type User struct {
	ID                   string    `db:"id" json:"id"`
	Email                string    `db:"email" json:"email"`
	PasswordHash         string    `db:"password_hash" json:"-"`
	FullName             string    `db:"full_name" json:"fullName"`
	Role                 UserRole  `db:"role" json:"role"`
	Department           string    `db:"department" json:"department"`
	Semester             *int      `db:"semester" json:"semester,omitempty"`
	Active               bool      `db:"active" json:"active"`
	NotifyNotes          bool      `db:"notify_notes" json:"notifyNotes"`
	NotifyQuestionPapers bool      `db:"notify_question_papers" json:"notifyQuestionPapers"`
	NotifyEvents         bool      `db:"notify_events" json:"notifyEvents"`
	CreatedAt            time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time `db:"updated_at" json:"updatedAt"`
}

// NotificationCategory names a preference bucket a user can opt into.
type NotificationCategory string

const (
	NotifyCategoryNotes          NotificationCategory = "notes"
	NotifyCategoryQuestionPapers NotificationCategory = "question_papers"
	NotifyCategoryEvents         NotificationCategory = "events"
)

// Recipient is the minimal projection needed to address a notification.
type Recipient struct {
	ID       string `db:"id" json:"id"`
	Email    string `db:"email" json:"email"`
	FullName string `db:"full_name" json:"fullName"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role       *UserRole
	Department string
	Active     *bool
	Search     string
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string
}
