package notes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/notesmith/smart-notes/internal/apperr"
	"github.com/notesmith/smart-notes/internal/models"
	"go.uber.org/zap"
)

type fakeNoteStore struct {
	notes   map[uuid.UUID]*models.Note
	updates int
}

func newFakeNoteStore() *fakeNoteStore {
	return &fakeNoteStore{notes: make(map[uuid.UUID]*models.Note)}
}

func (f *fakeNoteStore) Create(_ context.Context, note *models.Note) error {
	f.notes[note.ID] = note
	return nil
}

func (f *fakeNoteStore) GetByIDAndUser(_ context.Context, id, userID uuid.UUID) (*models.Note, error) {
	note, ok := f.notes[id]
	if !ok || note.UserID != userID || note.Deleted {
		return nil, apperr.NotFound("note not found with id: %s", id)
	}
	copied := *note
	return &copied, nil
}

func (f *fakeNoteStore) ListByUser(_ context.Context, userID uuid.UUID, includeArchived bool) ([]*models.Note, error) {
	var out []*models.Note
	for _, note := range f.notes {
		if note.UserID != userID || note.Deleted {
			continue
		}
		if !includeArchived && note.Archived {
			continue
		}
		out = append(out, note)
	}
	return out, nil
}

func (f *fakeNoteStore) Update(_ context.Context, note *models.Note) error {
	if _, ok := f.notes[note.ID]; !ok {
		return apperr.NotFound("note not found with id: %s", note.ID)
	}
	copied := *note
	copied.UpdatedAt = time.Now()
	f.notes[note.ID] = &copied
	f.updates++
	return nil
}

type fakeTextService struct {
	summary     string
	suggestions []string
	err         error
	calls       int
}

func (f *fakeTextService) Summarize(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.summary, f.err
}

func (f *fakeTextService) SuggestTasks(_ context.Context, _ string) ([]string, error) {
	f.calls++
	return f.suggestions, f.err
}

type fakeRefresher struct {
	enqueued []uuid.UUID
	err      error
}

func (f *fakeRefresher) EnqueueSummaryRefresh(_ context.Context, noteID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, noteID)
	return nil
}

func seedNote(store *fakeNoteStore, userID uuid.UUID, content string, summary *string) *models.Note {
	note := &models.Note{
		ID:      uuid.New(),
		UserID:  userID,
		Title:   "Meeting notes",
		Content: content,
		Summary: summary,
	}
	store.notes[note.ID] = note
	return note
}

func TestService_CreateAndGet(t *testing.T) {
	t.Parallel()

	store := newFakeNoteStore()
	svc := NewService(store, &fakeTextService{}, nil, zap.NewNop())
	userID := uuid.New()

	created, err := svc.Create(context.Background(), userID, CreateNoteInput{
		Title:   "Groceries",
		Content: "milk, eggs",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := svc.Get(context.Background(), created.ID, userID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "Groceries" || got.Content != "milk, eggs" {
		t.Errorf("Get() = %+v, want created note fields", got)
	}
	if got.Archived || got.Deleted || got.Summary != nil {
		t.Errorf("new note has unexpected flags: %+v", got)
	}
}

func TestService_GetOtherUsersNote(t *testing.T) {
	t.Parallel()

	store := newFakeNoteStore()
	svc := NewService(store, &fakeTextService{}, nil, zap.NewNop())
	note := seedNote(store, uuid.New(), "content", nil)

	_, err := svc.Get(context.Background(), note.ID, uuid.New())
	if !apperr.IsNotFound(err) {
		t.Errorf("Get() on other user's note error = %v, want not found", err)
	}
}

func TestService_DeleteIsSoft(t *testing.T) {
	t.Parallel()

	store := newFakeNoteStore()
	svc := NewService(store, &fakeTextService{}, nil, zap.NewNop())
	userID := uuid.New()
	note := seedNote(store, userID, "content", nil)

	if err := svc.Delete(context.Background(), note.ID, userID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	// Row still exists, but is no longer visible.
	if !store.notes[note.ID].Deleted {
		t.Error("note not marked deleted in store")
	}
	if _, err := svc.Get(context.Background(), note.ID, userID); !apperr.IsNotFound(err) {
		t.Errorf("Get() after delete error = %v, want not found", err)
	}
}

func TestService_Archive(t *testing.T) {
	t.Parallel()

	store := newFakeNoteStore()
	svc := NewService(store, &fakeTextService{}, nil, zap.NewNop())
	userID := uuid.New()
	note := seedNote(store, userID, "content", nil)

	archived, err := svc.Archive(context.Background(), note.ID, userID, true)
	if err != nil {
		t.Fatalf("Archive(true) error = %v", err)
	}
	if !archived.Archived {
		t.Error("Archive(true) did not set flag")
	}

	listed, err := svc.List(context.Background(), userID, false)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("List(includeArchived=false) returned %d notes, want 0", len(listed))
	}

	restored, err := svc.Archive(context.Background(), note.ID, userID, false)
	if err != nil {
		t.Fatalf("Archive(false) error = %v", err)
	}
	if restored.Archived {
		t.Error("Archive(false) did not clear flag")
	}
}

func TestService_SummarizeEmptyNote(t *testing.T) {
	t.Parallel()

	store := newFakeNoteStore()
	text := &fakeTextService{summary: "should not be called"}
	svc := NewService(store, text, nil, zap.NewNop())
	userID := uuid.New()
	note := seedNote(store, userID, "   \n\t", nil)

	summary, err := svc.Summarize(context.Background(), note.ID, userID)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary != EmptyNoteSummary {
		t.Errorf("summary = %q, want %q", summary, EmptyNoteSummary)
	}
	if text.calls != 0 {
		t.Errorf("AI backend called %d times for empty note, want 0", text.calls)
	}
	if store.notes[note.ID].Summary != nil {
		t.Error("sentinel summary was persisted")
	}
}

func TestService_SummarizeSuccess(t *testing.T) {
	t.Parallel()

	store := newFakeNoteStore()
	text := &fakeTextService{summary: "Key points from the meeting."}
	svc := NewService(store, text, nil, zap.NewNop())
	userID := uuid.New()
	note := seedNote(store, userID, "long meeting transcript", nil)

	summary, err := svc.Summarize(context.Background(), note.ID, userID)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary != "Key points from the meeting." {
		t.Errorf("summary = %q", summary)
	}

	stored := store.notes[note.ID]
	if stored.Summary == nil || *stored.Summary != summary {
		t.Error("summary was not persisted")
	}
}

func TestService_SummarizeAIFailure(t *testing.T) {
	t.Parallel()

	store := newFakeNoteStore()
	text := &fakeTextService{err: errors.New("upstream timeout")}
	svc := NewService(store, text, nil, zap.NewNop())
	userID := uuid.New()
	old := "previous summary"
	note := seedNote(store, userID, "content", &old)

	summary, err := svc.Summarize(context.Background(), note.ID, userID)
	if err != nil {
		t.Fatalf("Summarize() error = %v, want masked failure", err)
	}
	if summary != SummaryFallback {
		t.Errorf("summary = %q, want fallback", summary)
	}

	stored := store.notes[note.ID]
	if stored.Summary == nil || *stored.Summary != "previous summary" {
		t.Error("stored summary was modified on AI failure")
	}
}

func TestService_SummarizeMissingNote(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeNoteStore(), &fakeTextService{}, nil, zap.NewNop())
	_, err := svc.Summarize(context.Background(), uuid.New(), uuid.New())
	if !apperr.IsNotFound(err) {
		t.Errorf("Summarize() on missing note error = %v, want not found", err)
	}
}

func TestService_UpdateEnqueuesSummaryRefresh(t *testing.T) {
	t.Parallel()

	store := newFakeNoteStore()
	refresher := &fakeRefresher{}
	svc := NewService(store, &fakeTextService{}, refresher, zap.NewNop())
	userID := uuid.New()
	summary := "stale summary"
	note := seedNote(store, userID, "old content", &summary)

	_, err := svc.Update(context.Background(), note.ID, userID, CreateNoteInput{
		Title:   note.Title,
		Content: "new content",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(refresher.enqueued) != 1 || refresher.enqueued[0] != note.ID {
		t.Errorf("enqueued = %v, want one refresh for the note", refresher.enqueued)
	}
}

func TestService_UpdateNoRefreshCases(t *testing.T) {
	t.Parallel()

	summary := "summary"
	tests := []struct {
		name       string
		summary    *string
		newContent string
	}{
		{"content unchanged", &summary, "same content"},
		{"no summary yet", nil, "new content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := newFakeNoteStore()
			refresher := &fakeRefresher{}
			svc := NewService(store, &fakeTextService{}, refresher, zap.NewNop())
			userID := uuid.New()
			note := seedNote(store, userID, "same content", tt.summary)

			_, err := svc.Update(context.Background(), note.ID, userID, CreateNoteInput{
				Title:   note.Title,
				Content: tt.newContent,
			})
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			if len(refresher.enqueued) != 0 {
				t.Errorf("enqueued = %v, want none", refresher.enqueued)
			}
		})
	}
}

func TestService_UpdateSurvivesRefresherFailure(t *testing.T) {
	t.Parallel()

	store := newFakeNoteStore()
	refresher := &fakeRefresher{err: errors.New("broker down")}
	svc := NewService(store, &fakeTextService{}, refresher, zap.NewNop())
	userID := uuid.New()
	summary := "summary"
	note := seedNote(store, userID, "old", &summary)

	updated, err := svc.Update(context.Background(), note.ID, userID, CreateNoteInput{
		Title:   note.Title,
		Content: "new",
	})
	if err != nil {
		t.Fatalf("Update() error = %v, want enqueue failure swallowed", err)
	}
	if updated.Content != "new" {
		t.Errorf("Content = %q, want updated", updated.Content)
	}
}
