package tasks

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/notesmith/smart-notes/internal/apperr"
	"github.com/notesmith/smart-notes/internal/models"
	"github.com/notesmith/smart-notes/internal/services/ai"
	"go.uber.org/zap"
)

// TaskStore is the task persistence the service needs
type TaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Task, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status *models.TaskStatus) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	DeleteByIDAndUser(ctx context.Context, id, userID uuid.UUID) error
}

// NoteStore is the note lookup the service needs for note-linked tasks
type NoteStore interface {
	GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Note, error)
}

// CreateTaskInput carries the writable task fields
type CreateTaskInput struct {
	NoteID      *uuid.UUID
	Description string
	DueDate     *time.Time
	Status      models.TaskStatus
}

// Service implements task workflows on top of the stores and AI backend
type Service struct {
	tasks  TaskStore
	notes  NoteStore
	text   ai.TextService
	logger *zap.Logger
}

// NewService creates a task service
func NewService(tasks TaskStore, notes NoteStore, text ai.TextService, logger *zap.Logger) *Service {
	return &Service{
		tasks:  tasks,
		notes:  notes,
		text:   text,
		logger: logger,
	}
}

// List returns the user's tasks, newest first, optionally filtered by status
func (s *Service) List(ctx context.Context, userID uuid.UUID, status *models.TaskStatus) ([]*models.Task, error) {
	return s.tasks.ListByUser(ctx, userID, status)
}

// Get returns a single owned task
func (s *Service) Get(ctx context.Context, id, userID uuid.UUID) (*models.Task, error) {
	return s.tasks.GetByIDAndUser(ctx, id, userID)
}

// Create stores a new task. A linked note must exist and belong to the same
// user.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateTaskInput) (*models.Task, error) {
	if input.NoteID != nil {
		if _, err := s.notes.GetByIDAndUser(ctx, *input.NoteID, userID); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		ID:          uuid.New(),
		UserID:      userID,
		NoteID:      input.NoteID,
		Description: input.Description,
		DueDate:     input.DueDate,
		Status:      input.Status,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Update overwrites an owned task's fields. Supplying a note ID re-links the
// task after ownership is verified; omitting it clears any existing link.
func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, input CreateTaskInput) (*models.Task, error) {
	task, err := s.tasks.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if input.NoteID != nil {
		if _, err := s.notes.GetByIDAndUser(ctx, *input.NoteID, userID); err != nil {
			return nil, err
		}
	}

	task.NoteID = input.NoteID
	task.Description = input.Description
	task.DueDate = input.DueDate
	task.Status = input.Status

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete permanently removes an owned task
func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return s.tasks.DeleteByIDAndUser(ctx, id, userID)
}

// UpdateStatus sets an owned task's status. Any valid status transition is
// allowed, including reopening a completed task.
func (s *Service) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, apperr.InvalidInput("invalid task status: %s", status)
	}

	task, err := s.tasks.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	task.Status = status
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// GenerateFromNote asks the AI backend for actionable tasks in the note's
// content and stores each suggestion as a new TODO task linked to the note.
// AI failures are returned to the caller, nothing is stored in that case.
func (s *Service) GenerateFromNote(ctx context.Context, noteID, userID uuid.UUID) ([]*models.Task, error) {
	note, err := s.notes.GetByIDAndUser(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(note.Content) == "" {
		return nil, apperr.InvalidInput("Note content is empty")
	}

	suggestions, err := s.text.SuggestTasks(ctx, note.Content)
	if err != nil {
		s.logger.Error("failed_to_generate_task_suggestions",
			zap.String("note_id", note.ID.String()),
			zap.Error(err),
		)
		return nil, apperr.Unavailable("task generation is unavailable, please try again later", err)
	}

	created := make([]*models.Task, 0, len(suggestions))
	for _, description := range suggestions {
		task := &models.Task{
			ID:          uuid.New(),
			UserID:      userID,
			NoteID:      &note.ID,
			Description: description,
			Status:      models.TaskStatusTodo,
			AIGenerated: true,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		if err := s.tasks.Create(ctx, task); err != nil {
			return nil, err
		}
		created = append(created, task)
	}

	return created, nil
}
