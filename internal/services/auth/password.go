package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/notesmith/smart-notes/internal/apperr"
	"github.com/notesmith/smart-notes/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the minimum accepted password length
const MinPasswordLength = 8

// UserStore is the subset of user persistence the password service needs
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByProviderID(ctx context.Context, provider, providerID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// PasswordService handles email/password registration and login
type PasswordService struct {
	users UserStore
}

// NewPasswordService creates a new password service
func NewPasswordService(users UserStore) *PasswordService {
	return &PasswordService{users: users}
}

// Register creates a new local account. The email must not already be in use.
func (s *PasswordService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperr.InvalidInput("email is required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperr.InvalidInput("password must be at least %d characters", MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	hashStr := string(hash)
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: &hashStr,
		Active:       true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		user.Name = &trimmed
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies email/password credentials. The same error is returned for
// an unknown email and a wrong password.
func (s *PasswordService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("invalid email or password")
		}
		return nil, err
	}

	if !user.Active {
		return nil, apperr.Forbidden("account is disabled")
	}
	if user.PasswordHash == nil {
		// OAuth-only account, no local password set
		return nil, apperr.Unauthorized("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthorized("invalid email or password")
	}

	return user, nil
}
