package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/notesmith/smart-notes/internal/models"
	"github.com/notesmith/smart-notes/internal/request"
	"github.com/notesmith/smart-notes/internal/services/tasks"
	"github.com/notesmith/smart-notes/internal/validation"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	tasks *tasks.Service
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(service *tasks.Service) *TaskHandler {
	return &TaskHandler{tasks: service}
}

// RegisterRoutes registers task routes on the given router.
// The router should already have the /tasks prefix.
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTasks).Methods("GET")
	r.HandleFunc("", h.CreateTask).Methods("POST")
	r.HandleFunc("/generate-from-note/{noteId}", h.GenerateFromNote).Methods("POST")
	r.HandleFunc("/{id}", h.GetTask).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateTask).Methods("PUT")
	r.HandleFunc("/{id}", h.DeleteTask).Methods("DELETE")
	r.HandleFunc("/{id}/status", h.UpdateTaskStatus).Methods("PATCH")
}

// TaskRequest represents a create or update task request
type TaskRequest struct {
	NoteID      *uuid.UUID        `json:"note_id,omitempty"`
	Description string            `json:"description" validate:"required,max=1000"`
	DueDate     *time.Time        `json:"due_date,omitempty"`
	Status      models.TaskStatus `json:"status" validate:"required,task_status"`
}

// ListTasks lists tasks for the authenticated user, optionally filtered by status
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var status *models.TaskStatus
	if s := r.URL.Query().Get("status"); s != "" {
		if err := validation.ValidateTaskStatus(s); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		sEnum := models.TaskStatus(s)
		status = &sEnum
	}

	result, err := h.tasks.List(r.Context(), user.ID, status)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	req, ok := h.decodeTaskRequest(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Create(r.Context(), user.ID, tasks.CreateTaskInput{
		NoteID:      req.NoteID,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      req.Status,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

// GetTask retrieves a task by ID
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, ok := parsePathID(w, r, "id", "Invalid task ID")
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), id, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// UpdateTask replaces the mutable fields of a task
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, ok := parsePathID(w, r, "id", "Invalid task ID")
	if !ok {
		return
	}

	req, ok := h.decodeTaskRequest(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Update(r.Context(), id, user.ID, tasks.CreateTaskInput{
		NoteID:      req.NoteID,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      req.Status,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// DeleteTask permanently deletes a task
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, ok := parsePathID(w, r, "id", "Invalid task ID")
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), id, user.ID); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateTaskStatus changes only the status of a task. The status comes from
// the status query parameter.
func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, ok := parsePathID(w, r, "id", "Invalid task ID")
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	if status == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Missing status parameter")
		return
	}

	task, err := h.tasks.UpdateStatus(r.Context(), id, user.ID, models.TaskStatus(status))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// GenerateFromNote creates tasks from AI suggestions for a note's content
func (h *TaskHandler) GenerateFromNote(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	noteID, ok := parsePathID(w, r, "noteId", "Invalid note ID")
	if !ok {
		return
	}

	created, err := h.tasks.GenerateFromNote(r.Context(), noteID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

func (h *TaskHandler) decodeTaskRequest(w http.ResponseWriter, r *http.Request) (*TaskRequest, bool) {
	var req TaskRequest
	if !decodeJSON(w, r, &req) {
		return nil, false
	}

	req.Description = validation.SanitizeText(req.Description)

	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return nil, false
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return nil, false
	}

	return &req, true
}
