package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/notesmith/smart-notes/internal/apperr"
	"github.com/notesmith/smart-notes/internal/models"
	"go.uber.org/zap"
)

type fakeTaskStore struct {
	tasks map[uuid.UUID]*models.Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*models.Task)}
}

func (f *fakeTaskStore) Create(_ context.Context, task *models.Task) error {
	f.tasks[task.ID] = task
	return nil
}

func (f *fakeTaskStore) GetByIDAndUser(_ context.Context, id, userID uuid.UUID) (*models.Task, error) {
	task, ok := f.tasks[id]
	if !ok || task.UserID != userID {
		return nil, apperr.NotFound("task not found with id: %s", id)
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskStore) ListByUser(_ context.Context, userID uuid.UUID, status *models.TaskStatus) ([]*models.Task, error) {
	var out []*models.Task
	for _, task := range f.tasks {
		if task.UserID != userID {
			continue
		}
		if status != nil && task.Status != *status {
			continue
		}
		out = append(out, task)
	}
	return out, nil
}

func (f *fakeTaskStore) Update(_ context.Context, task *models.Task) error {
	if _, ok := f.tasks[task.ID]; !ok {
		return apperr.NotFound("task not found with id: %s", task.ID)
	}
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskStore) DeleteByIDAndUser(_ context.Context, id, userID uuid.UUID) error {
	task, ok := f.tasks[id]
	if !ok || task.UserID != userID {
		return apperr.NotFound("task not found with id: %s", id)
	}
	delete(f.tasks, id)
	return nil
}

type fakeNoteStore struct {
	notes map[uuid.UUID]*models.Note
}

func newFakeNoteStore() *fakeNoteStore {
	return &fakeNoteStore{notes: make(map[uuid.UUID]*models.Note)}
}

func (f *fakeNoteStore) GetByIDAndUser(_ context.Context, id, userID uuid.UUID) (*models.Note, error) {
	note, ok := f.notes[id]
	if !ok || note.UserID != userID || note.Deleted {
		return nil, apperr.NotFound("note not found with id: %s", id)
	}
	return note, nil
}

func (f *fakeNoteStore) seed(userID uuid.UUID, content string) *models.Note {
	note := &models.Note{
		ID:      uuid.New(),
		UserID:  userID,
		Title:   "A note",
		Content: content,
	}
	f.notes[note.ID] = note
	return note
}

type fakeTextService struct {
	suggestions []string
	err         error
}

func (f *fakeTextService) Summarize(_ context.Context, _ string) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeTextService) SuggestTasks(_ context.Context, _ string) ([]string, error) {
	return f.suggestions, f.err
}

func newTestService(taskStore *fakeTaskStore, noteStore *fakeNoteStore, text *fakeTextService) *Service {
	return NewService(taskStore, noteStore, text, zap.NewNop())
}

func TestService_CreateWithNoteLink(t *testing.T) {
	t.Parallel()

	taskStore := newFakeTaskStore()
	noteStore := newFakeNoteStore()
	svc := newTestService(taskStore, noteStore, &fakeTextService{})
	userID := uuid.New()
	note := noteStore.seed(userID, "content")

	task, err := svc.Create(context.Background(), userID, CreateTaskInput{
		NoteID:      &note.ID,
		Description: "Follow up",
		Status:      models.TaskStatusTodo,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if task.NoteID == nil || *task.NoteID != note.ID {
		t.Error("task not linked to note")
	}
	if task.AIGenerated {
		t.Error("manually created task marked AI generated")
	}
}

func TestService_CreateWithMissingNote(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeTaskStore(), newFakeNoteStore(), &fakeTextService{})
	missing := uuid.New()

	_, err := svc.Create(context.Background(), uuid.New(), CreateTaskInput{
		NoteID:      &missing,
		Description: "Follow up",
		Status:      models.TaskStatusTodo,
	})
	if !apperr.IsNotFound(err) {
		t.Errorf("Create() with missing note error = %v, want not found", err)
	}
}

func TestService_CreateWithOtherUsersNote(t *testing.T) {
	t.Parallel()

	taskStore := newFakeTaskStore()
	noteStore := newFakeNoteStore()
	svc := newTestService(taskStore, noteStore, &fakeTextService{})
	note := noteStore.seed(uuid.New(), "content")

	_, err := svc.Create(context.Background(), uuid.New(), CreateTaskInput{
		NoteID:      &note.ID,
		Description: "Follow up",
		Status:      models.TaskStatusTodo,
	})
	if !apperr.IsNotFound(err) {
		t.Errorf("Create() with foreign note error = %v, want not found", err)
	}
}

func TestService_UpdateClearsNoteLink(t *testing.T) {
	t.Parallel()

	taskStore := newFakeTaskStore()
	noteStore := newFakeNoteStore()
	svc := newTestService(taskStore, noteStore, &fakeTextService{})
	userID := uuid.New()
	note := noteStore.seed(userID, "content")

	task, err := svc.Create(context.Background(), userID, CreateTaskInput{
		NoteID:      &note.ID,
		Description: "Follow up",
		Status:      models.TaskStatusTodo,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := svc.Update(context.Background(), task.ID, userID, CreateTaskInput{
		Description: "Follow up later",
		Status:      models.TaskStatusInProgress,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.NoteID != nil {
		t.Error("note link not cleared when no note ID supplied")
	}
	if updated.Status != models.TaskStatusInProgress {
		t.Errorf("Status = %q, want IN_PROGRESS", updated.Status)
	}
}

func TestService_ListFilterByStatus(t *testing.T) {
	t.Parallel()

	taskStore := newFakeTaskStore()
	svc := newTestService(taskStore, newFakeNoteStore(), &fakeTextService{})
	userID := uuid.New()

	for _, status := range []models.TaskStatus{models.TaskStatusTodo, models.TaskStatusTodo, models.TaskStatusCompleted} {
		if _, err := svc.Create(context.Background(), userID, CreateTaskInput{
			Description: "task",
			Status:      status,
		}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	todo := models.TaskStatusTodo
	filtered, err := svc.List(context.Background(), userID, &todo)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(filtered) != 2 {
		t.Errorf("List(TODO) returned %d tasks, want 2", len(filtered))
	}

	all, err := svc.List(context.Background(), userID, nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("List(nil) returned %d tasks, want 3", len(all))
	}
}

func TestService_UpdateStatus(t *testing.T) {
	t.Parallel()

	taskStore := newFakeTaskStore()
	svc := newTestService(taskStore, newFakeNoteStore(), &fakeTextService{})
	userID := uuid.New()

	task, err := svc.Create(context.Background(), userID, CreateTaskInput{
		Description: "task",
		Status:      models.TaskStatusCompleted,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Reopening a completed task is allowed.
	updated, err := svc.UpdateStatus(context.Background(), task.ID, userID, models.TaskStatusTodo)
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if updated.Status != models.TaskStatusTodo {
		t.Errorf("Status = %q, want TODO", updated.Status)
	}

	if _, err := svc.UpdateStatus(context.Background(), task.ID, userID, models.TaskStatus("DONE")); !apperr.IsInvalidInput(err) {
		t.Errorf("UpdateStatus(invalid) error = %v, want invalid input", err)
	}
}

func TestService_Delete(t *testing.T) {
	t.Parallel()

	taskStore := newFakeTaskStore()
	svc := newTestService(taskStore, newFakeNoteStore(), &fakeTextService{})
	userID := uuid.New()

	task, err := svc.Create(context.Background(), userID, CreateTaskInput{
		Description: "task",
		Status:      models.TaskStatusTodo,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(context.Background(), task.ID, userID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(context.Background(), task.ID, userID); !apperr.IsNotFound(err) {
		t.Errorf("second Delete() error = %v, want not found", err)
	}
}

func TestService_GenerateFromNote(t *testing.T) {
	t.Parallel()

	taskStore := newFakeTaskStore()
	noteStore := newFakeNoteStore()
	text := &fakeTextService{suggestions: []string{"Buy milk", "Call plumber"}}
	svc := newTestService(taskStore, noteStore, text)
	userID := uuid.New()
	note := noteStore.seed(userID, "errands to run")

	created, err := svc.GenerateFromNote(context.Background(), note.ID, userID)
	if err != nil {
		t.Fatalf("GenerateFromNote() error = %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created %d tasks, want 2", len(created))
	}
	for _, task := range created {
		if task.Status != models.TaskStatusTodo {
			t.Errorf("Status = %q, want TODO", task.Status)
		}
		if !task.AIGenerated {
			t.Error("generated task not marked AI generated")
		}
		if task.NoteID == nil || *task.NoteID != note.ID {
			t.Error("generated task not linked to source note")
		}
	}
	if len(taskStore.tasks) != 2 {
		t.Errorf("store holds %d tasks, want 2", len(taskStore.tasks))
	}
}

func TestService_GenerateFromNoteEdgeCases(t *testing.T) {
	t.Parallel()

	t.Run("missing note", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(newFakeTaskStore(), newFakeNoteStore(), &fakeTextService{})
		_, err := svc.GenerateFromNote(context.Background(), uuid.New(), uuid.New())
		if !apperr.IsNotFound(err) {
			t.Errorf("error = %v, want not found", err)
		}
	})

	t.Run("blank content", func(t *testing.T) {
		t.Parallel()
		noteStore := newFakeNoteStore()
		svc := newTestService(newFakeTaskStore(), noteStore, &fakeTextService{})
		userID := uuid.New()
		note := noteStore.seed(userID, "   ")

		_, err := svc.GenerateFromNote(context.Background(), note.ID, userID)
		if !apperr.IsInvalidInput(err) {
			t.Fatalf("error = %v, want invalid input", err)
		}
		if err.Error() != "Note content is empty" {
			t.Errorf("error message = %q, want %q", err.Error(), "Note content is empty")
		}
	})

	t.Run("no suggestions", func(t *testing.T) {
		t.Parallel()
		taskStore := newFakeTaskStore()
		noteStore := newFakeNoteStore()
		svc := newTestService(taskStore, noteStore, &fakeTextService{suggestions: nil})
		userID := uuid.New()
		note := noteStore.seed(userID, "nothing actionable")

		created, err := svc.GenerateFromNote(context.Background(), note.ID, userID)
		if err != nil {
			t.Fatalf("error = %v, want success with no tasks", err)
		}
		if len(created) != 0 {
			t.Errorf("created %d tasks, want 0", len(created))
		}
	})

	t.Run("ai failure surfaced", func(t *testing.T) {
		t.Parallel()
		taskStore := newFakeTaskStore()
		noteStore := newFakeNoteStore()
		svc := newTestService(taskStore, noteStore, &fakeTextService{err: errors.New("upstream timeout")})
		userID := uuid.New()
		note := noteStore.seed(userID, "errands")

		_, err := svc.GenerateFromNote(context.Background(), note.ID, userID)
		if apperr.KindOf(err) != apperr.KindUnavailable {
			t.Errorf("error kind = %v, want KindUnavailable", apperr.KindOf(err))
		}
		if len(taskStore.tasks) != 0 {
			t.Errorf("store holds %d tasks after failure, want 0", len(taskStore.tasks))
		}
	})
}
