package dto

// UpdateProfileRequest changes self-service profile fields.
type UpdateProfileRequest struct {
	FullName   string `json:"fullName" validate:"required,max=120"`
	Department string `json:"department" validate:"required,max=80"`
	Semester   *int   `json:"semester" validate:"omitempty,min=1,max=8"`
}

// PreferencesRequest replaces the notification opt-ins.
type PreferencesRequest struct {
	Notes          bool `json:"notes"`
	QuestionPapers bool `json:"questionPapers"`
	Events         bool `json:"events"`
}

// SetRoleRequest is the admin role change payload.
type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=student teacher admin"`
}

// SetActiveRequest toggles account activation.
type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// UserListQuery captures admin user list parameters.
type UserListQuery struct {
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
	Role       string `form:"role"`
	Department string `form:"department"`
	Active     *bool  `form:"active"`
	Search     string `form:"search"`
	SortBy     string `form:"sortBy"`
	SortOrder  string `form:"sortOrder"`
}

// CreateUserRequest is used by the admin CLI to bootstrap staff accounts.
type CreateUserRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	FullName   string `json:"fullName" validate:"required,max=120"`
	Role       string `json:"role" validate:"required,oneof=student teacher admin"`
	Department string `json:"department" validate:"required,max=80"`
}
