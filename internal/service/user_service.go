package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/college-notes-api/internal/dto"
	"github.com/noah-isme/college-notes-api/internal/models"
	appErrors "github.com/noah-isme/college-notes-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePreferences(ctx context.Context, user *models.User) error
	SetRole(ctx context.Context, id string, role models.UserRole) error
	SetActive(ctx context.Context, id string, active bool) error
}

// UserService handles profile and account management workflows.
type UserService struct {
	repo      userRepository
	auth      *Authorizer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, auth *Authorizer, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if auth == nil {
		auth = NewAuthorizer()
	}
	return &UserService{repo: repo, auth: auth, validator: validate, logger: logger}
}

// Me returns the caller's own record.
func (s *UserService) Me(ctx context.Context, actor *models.Actor) (*models.User, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	return s.find(ctx, actor.ID)
}

// UpdateProfile changes the caller's name, department and semester.
func (s *UserService) UpdateProfile(ctx context.Context, actor *models.Actor, req dto.UpdateProfileRequest) (*models.User, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid profile payload")
	}
	user, err := s.find(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	user.FullName = strings.TrimSpace(req.FullName)
	user.Department = strings.TrimSpace(req.Department)
	user.Semester = req.Semester
	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	return user, nil
}

// UpdatePreferences replaces the caller's notification opt-ins.
func (s *UserService) UpdatePreferences(ctx context.Context, actor *models.Actor, req dto.PreferencesRequest) (*models.User, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	user, err := s.find(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	user.NotifyNotes = req.Notes
	user.NotifyQuestionPapers = req.QuestionPapers
	user.NotifyEvents = req.Events
	if err := s.repo.UpdatePreferences(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update preferences")
	}
	return user, nil
}

// List returns paginated users. Admin only.
func (s *UserService) List(ctx context.Context, actor *models.Actor, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	if !s.auth.CanAdminister(actor) {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, models.NewPagination(total, filter.Page, filter.Limit), nil
}

// SetRole changes another user's role. Admin only; admins cannot demote themselves.
func (s *UserService) SetRole(ctx context.Context, actor *models.Actor, id string, req dto.SetRoleRequest) (*models.User, error) {
	if !s.auth.CanAdminister(actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid role payload")
	}
	role := models.UserRole(req.Role)
	if id == actor.ID && role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot change own role")
	}
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetRole(ctx, id, role); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update role")
	}
	user.Role = role
	s.logger.Info("user role changed", zap.String("user_id", id), zap.String("role", string(role)), zap.String("by", actor.ID))
	return user, nil
}

// SetActive enables or disables another user's account. Admin only.
func (s *UserService) SetActive(ctx context.Context, actor *models.Actor, id string, req dto.SetActiveRequest) (*models.User, error) {
	if !s.auth.CanAdminister(actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid activation payload")
	}
	if id == actor.ID && !*req.Active {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot deactivate own account")
	}
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id, *req.Active); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update account status")
	}
	user.Active = *req.Active
	return user, nil
}

// Create provisions an account with an explicit role. Used by the admin CLI.
func (s *UserService) Create(ctx context.Context, req dto.CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid user payload")
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	user := &models.User{
		Email:                strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:         string(hash),
		FullName:             strings.TrimSpace(req.FullName),
		Role:                 models.UserRole(req.Role),
		Department:           strings.TrimSpace(req.Department),
		Active:               true,
		NotifyNotes:          true,
		NotifyQuestionPapers: true,
		NotifyEvents:         true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	return user, nil
}

func (s *UserService) find(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	return user, nil
}
