package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/notesmith/smart-notes/internal/models"
)

// NoteRepositoryInterface defines the interface for note repository operations
// This interface enables better testability by allowing mock implementations
type NoteRepositoryInterface interface {
	Create(ctx context.Context, note *models.Note) error
	GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Note, error)
	ListByUser(ctx context.Context, userID uuid.UUID, includeArchived bool) ([]*models.Note, error)
	Update(ctx context.Context, note *models.Note) error
}

// TaskRepositoryInterface defines the interface for task repository operations
type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *models.Task) error
	GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Task, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status *models.TaskStatus) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	DeleteByIDAndUser(ctx context.Context, id, userID uuid.UUID) error
}

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByProviderID(ctx context.Context, provider, providerID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// Ensure concrete types implement the interfaces
var (
	_ NoteRepositoryInterface = (*NoteRepository)(nil)
	_ TaskRepositoryInterface = (*TaskRepository)(nil)
	_ UserRepositoryInterface = (*UserRepository)(nil)
)
