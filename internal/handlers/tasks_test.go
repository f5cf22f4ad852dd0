package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/notesmith/smart-notes/internal/apperr"
	"github.com/notesmith/smart-notes/internal/models"
	"github.com/notesmith/smart-notes/internal/services/tasks"
)

type fakeTaskStore struct {
	tasks map[uuid.UUID]*models.Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*models.Task)}
}

func (f *fakeTaskStore) Create(_ context.Context, task *models.Task) error {
	clone := *task
	f.tasks[task.ID] = &clone
	return nil
}

func (f *fakeTaskStore) GetByIDAndUser(_ context.Context, id, userID uuid.UUID) (*models.Task, error) {
	task, ok := f.tasks[id]
	if !ok || task.UserID != userID {
		return nil, apperr.NotFound("task not found")
	}
	clone := *task
	return &clone, nil
}

func (f *fakeTaskStore) ListByUser(_ context.Context, userID uuid.UUID, status *models.TaskStatus) ([]*models.Task, error) {
	var result []*models.Task
	for _, task := range f.tasks {
		if task.UserID != userID {
			continue
		}
		if status != nil && task.Status != *status {
			continue
		}
		clone := *task
		result = append(result, &clone)
	}
	return result, nil
}

func (f *fakeTaskStore) Update(_ context.Context, task *models.Task) error {
	if _, ok := f.tasks[task.ID]; !ok {
		return apperr.NotFound("task not found")
	}
	clone := *task
	f.tasks[task.ID] = &clone
	return nil
}

func (f *fakeTaskStore) DeleteByIDAndUser(_ context.Context, id, userID uuid.UUID) error {
	task, ok := f.tasks[id]
	if !ok || task.UserID != userID {
		return apperr.NotFound("task not found")
	}
	delete(f.tasks, id)
	return nil
}

func newTasksRouter(taskStore *fakeTaskStore, noteStore *fakeNoteStore, text *fakeTextService) *mux.Router {
	service := tasks.NewService(taskStore, noteStore, text, zap.NewNop())
	handler := NewTaskHandler(service)

	router := mux.NewRouter()
	handler.RegisterRoutes(router.PathPrefix("/api/tasks").Subrouter())
	return router
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	store := newFakeTaskStore()
	router := newTasksRouter(store, newFakeNoteStore(), &fakeTextService{})
	userID := uuid.New()

	req := authedRequest(t, "POST", "/api/tasks", TaskRequest{
		Description: "Buy milk",
		Status:      models.TaskStatusTodo,
	}, userID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", resp.StatusCode)
	}

	var task models.Task
	decodeData(t, resp, &task)

	if task.Description != "Buy milk" || task.Status != models.TaskStatusTodo {
		t.Errorf("Unexpected task %+v", task)
	}
	if task.AIGenerated {
		t.Error("Expected manually created task to not be AI generated")
	}
}

func TestCreateTask_Validation(t *testing.T) {
	t.Parallel()

	longDescription := make([]byte, 1001)
	for i := range longDescription {
		longDescription[i] = 'a'
	}

	tests := []struct {
		name string
		body TaskRequest
	}{
		{name: "missing description", body: TaskRequest{Status: models.TaskStatusTodo}},
		{name: "missing status", body: TaskRequest{Description: "x"}},
		{name: "invalid status", body: TaskRequest{Description: "x", Status: "DONE"}},
		{name: "description too long", body: TaskRequest{Description: string(longDescription), Status: models.TaskStatusTodo}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := newTasksRouter(newFakeTaskStore(), newFakeNoteStore(), &fakeTextService{})

			req := authedRequest(t, "POST", "/api/tasks", tt.body, uuid.New())
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestCreateTask_WithMissingNote(t *testing.T) {
	t.Parallel()

	router := newTasksRouter(newFakeTaskStore(), newFakeNoteStore(), &fakeTextService{})

	noteID := uuid.New()
	req := authedRequest(t, "POST", "/api/tasks", TaskRequest{
		NoteID:      &noteID,
		Description: "Linked",
		Status:      models.TaskStatusTodo,
	}, uuid.New())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestListTasks_StatusFilter(t *testing.T) {
	t.Parallel()

	store := newFakeTaskStore()
	userID := uuid.New()
	todoID := uuid.New()
	doneID := uuid.New()
	store.tasks[todoID] = &models.Task{ID: todoID, UserID: userID, Description: "a", Status: models.TaskStatusTodo}
	store.tasks[doneID] = &models.Task{ID: doneID, UserID: userID, Description: "b", Status: models.TaskStatusCompleted}

	router := newTasksRouter(store, newFakeNoteStore(), &fakeTextService{})

	req := authedRequest(t, "GET", "/api/tasks?status=COMPLETED", nil, userID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	var result []*models.Task
	decodeData(t, resp, &result)
	if len(result) != 1 || result[0].Status != models.TaskStatusCompleted {
		t.Errorf("Expected only the completed task, got %+v", result)
	}
}

func TestListTasks_InvalidStatusFilter(t *testing.T) {
	t.Parallel()

	router := newTasksRouter(newFakeTaskStore(), newFakeNoteStore(), &fakeTextService{})

	req := authedRequest(t, "GET", "/api/tasks?status=BOGUS", nil, uuid.New())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestUpdateTaskStatus(t *testing.T) {
	t.Parallel()

	store := newFakeTaskStore()
	userID := uuid.New()
	taskID := uuid.New()
	store.tasks[taskID] = &models.Task{ID: taskID, UserID: userID, Description: "a", Status: models.TaskStatusCompleted}

	router := newTasksRouter(store, newFakeNoteStore(), &fakeTextService{})

	// Reopening a completed task is allowed
	req := authedRequest(t, "PATCH", fmt.Sprintf("/api/tasks/%s/status?status=TODO", taskID), nil, userID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var task models.Task
	decodeData(t, resp, &task)
	if task.Status != models.TaskStatusTodo {
		t.Errorf("Expected status TODO, got %s", task.Status)
	}
}

func TestUpdateTaskStatus_Invalid(t *testing.T) {
	t.Parallel()

	store := newFakeTaskStore()
	userID := uuid.New()
	taskID := uuid.New()
	store.tasks[taskID] = &models.Task{ID: taskID, UserID: userID, Description: "a", Status: models.TaskStatusTodo}

	router := newTasksRouter(store, newFakeNoteStore(), &fakeTextService{})

	tests := []struct {
		name   string
		target string
	}{
		{name: "missing status", target: fmt.Sprintf("/api/tasks/%s/status", taskID)},
		{name: "unknown status", target: fmt.Sprintf("/api/tasks/%s/status?status=DONE", taskID)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := authedRequest(t, "PATCH", tt.target, nil, userID)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	store := newFakeTaskStore()
	userID := uuid.New()
	taskID := uuid.New()
	store.tasks[taskID] = &models.Task{ID: taskID, UserID: userID, Description: "a", Status: models.TaskStatusTodo}

	router := newTasksRouter(store, newFakeNoteStore(), &fakeTextService{})

	req := authedRequest(t, "DELETE", fmt.Sprintf("/api/tasks/%s", taskID), nil, userID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", w.Code)
	}

	req = authedRequest(t, "DELETE", fmt.Sprintf("/api/tasks/%s", taskID), nil, userID)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 on second delete, got %d", w.Code)
	}
}

func TestGenerateFromNote(t *testing.T) {
	t.Parallel()

	noteStore := newFakeNoteStore()
	userID := uuid.New()
	noteID := uuid.New()
	noteStore.notes[noteID] = &models.Note{ID: noteID, UserID: userID, Title: "plan", Content: "trip planning"}

	taskStore := newFakeTaskStore()
	text := &fakeTextService{suggestions: []string{"Book flights", "Reserve hotel"}}
	router := newTasksRouter(taskStore, noteStore, text)

	req := authedRequest(t, "POST", fmt.Sprintf("/api/tasks/generate-from-note/%s", noteID), nil, userID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", resp.StatusCode)
	}

	var created []*models.Task
	decodeData(t, resp, &created)
	if len(created) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(created))
	}
	for _, task := range created {
		if !task.AIGenerated {
			t.Error("Expected generated task to be marked AI generated")
		}
		if task.NoteID == nil || *task.NoteID != noteID {
			t.Errorf("Expected task linked to note %s, got %v", noteID, task.NoteID)
		}
		if task.Status != models.TaskStatusTodo {
			t.Errorf("Expected status TODO, got %s", task.Status)
		}
	}
}

func TestGenerateFromNote_AIFailure(t *testing.T) {
	t.Parallel()

	noteStore := newFakeNoteStore()
	userID := uuid.New()
	noteID := uuid.New()
	noteStore.notes[noteID] = &models.Note{ID: noteID, UserID: userID, Title: "plan", Content: "trip planning"}

	taskStore := newFakeTaskStore()
	router := newTasksRouter(taskStore, noteStore, &fakeTextService{err: errors.New("backend down")})

	req := authedRequest(t, "POST", fmt.Sprintf("/api/tasks/generate-from-note/%s", noteID), nil, userID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
	if len(taskStore.tasks) != 0 {
		t.Errorf("Expected no tasks stored after failure, got %d", len(taskStore.tasks))
	}
}

func TestGenerateFromNote_EmptyNote(t *testing.T) {
	t.Parallel()

	noteStore := newFakeNoteStore()
	userID := uuid.New()
	noteID := uuid.New()
	noteStore.notes[noteID] = &models.Note{ID: noteID, UserID: userID, Title: "blank", Content: "   "}

	router := newTasksRouter(newFakeTaskStore(), noteStore, &fakeTextService{})

	req := authedRequest(t, "POST", fmt.Sprintf("/api/tasks/generate-from-note/%s", noteID), nil, userID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}
