package notes

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/notesmith/smart-notes/internal/models"
	"github.com/notesmith/smart-notes/internal/services/ai"
	"go.uber.org/zap"
)

const (
	// EmptyNoteSummary is returned when a summary is requested for a note
	// without content. No AI call is made.
	EmptyNoteSummary = "Note is empty"
	// SummaryFallback is returned when the AI backend fails. The stored note
	// is left untouched.
	SummaryFallback = "Unable to generate summary at this time. Please try again later."
)

// NoteStore is the note persistence the service needs
type NoteStore interface {
	Create(ctx context.Context, note *models.Note) error
	GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Note, error)
	ListByUser(ctx context.Context, userID uuid.UUID, includeArchived bool) ([]*models.Note, error)
	Update(ctx context.Context, note *models.Note) error
}

// SummaryRefresher schedules background re-summarization of a note
type SummaryRefresher interface {
	EnqueueSummaryRefresh(ctx context.Context, noteID uuid.UUID) error
}

// CreateNoteInput carries the writable note fields
type CreateNoteInput struct {
	Title    string
	Content  string
	Archived bool
}

// Service implements note workflows on top of the store and AI backend
type Service struct {
	store     NoteStore
	text      ai.TextService
	refresher SummaryRefresher
	logger    *zap.Logger
}

// NewService creates a note service. refresher may be nil when no background
// queue is wired (summaries then simply go stale until re-requested).
func NewService(store NoteStore, text ai.TextService, refresher SummaryRefresher, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		text:      text,
		refresher: refresher,
		logger:    logger,
	}
}

// List returns the user's notes, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID, includeArchived bool) ([]*models.Note, error) {
	return s.store.ListByUser(ctx, userID, includeArchived)
}

// Get returns a single owned note
func (s *Service) Get(ctx context.Context, id, userID uuid.UUID) (*models.Note, error) {
	return s.store.GetByIDAndUser(ctx, id, userID)
}

// Create stores a new note for the user
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateNoteInput) (*models.Note, error) {
	note := &models.Note{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     input.Title,
		Content:   input.Content,
		Archived:  input.Archived,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.store.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Update overwrites an owned note's title, content, and archived flag. When
// the content changes on a note that has a summary, the summary is refreshed
// in the background.
func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, input CreateNoteInput) (*models.Note, error) {
	note, err := s.store.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	contentChanged := note.Content != input.Content
	note.Title = input.Title
	note.Content = input.Content
	note.Archived = input.Archived

	if err := s.store.Update(ctx, note); err != nil {
		return nil, err
	}

	if contentChanged && note.Summary != nil && s.refresher != nil {
		if err := s.refresher.EnqueueSummaryRefresh(ctx, note.ID); err != nil {
			// Stale summary is acceptable, the job can be retried on the
			// next edit.
			s.logger.Warn("failed_to_enqueue_summary_refresh",
				zap.String("note_id", note.ID.String()),
				zap.Error(err),
			)
		}
	}

	return note, nil
}

// Delete soft-deletes an owned note. Tasks linked to the note keep their
// reference.
func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	note, err := s.store.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return err
	}
	note.Deleted = true
	return s.store.Update(ctx, note)
}

// Archive sets or clears the archived flag on an owned note
func (s *Service) Archive(ctx context.Context, id, userID uuid.UUID, archive bool) (*models.Note, error) {
	note, err := s.store.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	note.Archived = archive
	if err := s.store.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Summarize generates and persists an AI summary for an owned note. A note
// without content yields a fixed sentinel without calling the AI backend. An
// AI failure yields a fixed fallback message and leaves the note untouched.
func (s *Service) Summarize(ctx context.Context, id, userID uuid.UUID) (string, error) {
	note, err := s.store.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(note.Content) == "" {
		return EmptyNoteSummary, nil
	}

	summary, err := s.text.Summarize(ctx, note.Content)
	if err != nil {
		s.logger.Error("failed_to_generate_summary",
			zap.String("note_id", note.ID.String()),
			zap.Error(err),
		)
		return SummaryFallback, nil
	}

	note.Summary = &summary
	if err := s.store.Update(ctx, note); err != nil {
		return "", err
	}

	return summary, nil
}
