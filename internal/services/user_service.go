package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	iauth "github.com/sitedesk/sitedesk/internal/auth"
	"github.com/sitedesk/sitedesk/internal/models"
	"github.com/sitedesk/sitedesk/pkg/crypto"
	apperrors "github.com/sitedesk/sitedesk/pkg/errors"
	"github.com/sitedesk/sitedesk/pkg/metrics"
)

// UserDTO is the API-friendly user payload.
type UserDTO struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	IsActive    bool       `json:"is_active"`
	Roles       []string   `json:"roles"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// RegisterUserInput defines attributes required to create an account.
type RegisterUserInput struct {
	Email    string
	Name     string
	Password string
}

// AuthResult is returned on successful authentication.
type AuthResult struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// UserService manages accounts, credentials and role assignment.
type UserService struct {
	db    *gorm.DB
	jwt   *iauth.JWTService
	guard *iauth.LoginGuard
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB, jwt *iauth.JWTService, guard *iauth.LoginGuard) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	if jwt == nil {
		return nil, errors.New("user service: jwt service is required")
	}
	return &UserService{db: db, jwt: jwt, guard: guard}, nil
}

// Register creates a new member account with a hashed password.
func (s *UserService) Register(ctx context.Context, input RegisterUserInput) (*UserDTO, error) {
	ctx = ensureContext(ctx)

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewBadRequest("password must be at least 8 characters")
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hash,
		IsActive:     true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&models.UserRole{UserID: user.ID, Role: models.RoleMember}).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewConflict("an account with this email already exists")
		}
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	dto := mapUser(user, []string{models.RoleMember})
	return &dto, nil
}

// Authenticate validates credentials and issues an access token. Repeated
// failures for an email lock further attempts out for a configured duration.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	ctx = ensureContext(ctx)
	email = strings.ToLower(strings.TrimSpace(email))

	if s.guard != nil {
		if locked, _ := s.guard.Locked(email); locked {
			metrics.AuthAttempts.WithLabelValues("locked").Inc()
			return nil, apperrors.ErrLoginLocked
		}
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Roles").
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.failAuth(email)
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	if !user.IsActive || !crypto.VerifyPassword(user.PasswordHash, password) {
		return nil, s.failAuth(email)
	}

	if s.guard != nil {
		s.guard.RecordSuccess(email)
	}
	metrics.AuthAttempts.WithLabelValues("success").Inc()

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("user service: stamp login: %w", err)
	}
	user.LastLoginAt = &now

	roles := roleNames(user.Roles)
	token, err := s.jwt.GenerateAccessToken(iauth.AccessTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Roles:  roles,
	})
	if err != nil {
		return nil, fmt.Errorf("user service: issue token: %w", err)
	}

	return &AuthResult{Token: token, User: mapUser(user, roles)}, nil
}

func (s *UserService) failAuth(email string) error {
	metrics.AuthAttempts.WithLabelValues("failure").Inc()
	if s.guard != nil {
		s.guard.RecordFailure(email)
	}
	return apperrors.ErrInvalidCredentials
}

// Get loads a single user with roles.
func (s *UserService) Get(ctx context.Context, userID string) (*UserDTO, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Roles").
		First(&user, "id = ?", strings.TrimSpace(userID)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	dto := mapUser(user, roleNames(user.Roles))
	return &dto, nil
}

// List returns all accounts ordered by creation time.
func (s *UserService) List(ctx context.Context) ([]UserDTO, error) {
	ctx = ensureContext(ctx)

	var users []models.User
	if err := s.db.WithContext(ctx).
		Preload("Roles").
		Order("created_at ASC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("user service: list users: %w", err)
	}

	items := make([]UserDTO, 0, len(users))
	for _, user := range users {
		items = append(items, mapUser(user, roleNames(user.Roles)))
	}
	return items, nil
}

// AdminExists reports whether any account carries the admin role.
func (s *UserService) AdminExists(ctx context.Context) (bool, error) {
	ctx = ensureContext(ctx)

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.UserRole{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("user service: count admins: %w", err)
	}
	return count > 0, nil
}

// BootstrapAdmin grants the admin role to the caller if and only if no admin
// exists yet. Any later call conflicts.
func (s *UserService) BootstrapAdmin(ctx context.Context, userID string) error {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperrors.ErrUnauthorized
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.UserRole{}).
			Where("role = ?", models.RoleAdmin).
			Count(&count).Error; err != nil {
			return fmt.Errorf("user service: count admins: %w", err)
		}
		if count > 0 {
			return apperrors.NewConflict("an administrator already exists")
		}

		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("user service: load user: %w", err)
		}

		return tx.Create(&models.UserRole{UserID: userID, Role: models.RoleAdmin}).Error
	})
}

// GrantRole assigns a role to a user, tolerating repeats.
func (s *UserService) GrantRole(ctx context.Context, userID, role string) error {
	ctx = ensureContext(ctx)
	if role != models.RoleAdmin && role != models.RoleMember {
		return apperrors.NewBadRequest("unknown role")
	}

	err := s.db.WithContext(ctx).Create(&models.UserRole{UserID: userID, Role: role}).Error
	if err != nil && !isUniqueConstraintError(err) {
		return fmt.Errorf("user service: grant role: %w", err)
	}
	return nil
}

// RevokeRole removes a role assignment from a user.
func (s *UserService) RevokeRole(ctx context.Context, userID, role string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND role = ?", userID, role).
		Delete(&models.UserRole{})
	if result.Error != nil {
		return fmt.Errorf("user service: revoke role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func mapUser(user models.User, roles []string) UserDTO {
	if roles == nil {
		roles = []string{}
	}
	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		IsActive:    user.IsActive,
		Roles:       roles,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

func roleNames(roles []models.UserRole) []string {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Role)
	}
	return names
}
