package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/notesmith/smart-notes/internal/request"
	"github.com/notesmith/smart-notes/internal/services/notes"
	"github.com/notesmith/smart-notes/internal/validation"
)

const (
	// MaxNoteTitleLength is the maximum length for note titles
	MaxNoteTitleLength = 200
)

// NoteHandler handles note-related requests
type NoteHandler struct {
	notes *notes.Service
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(service *notes.Service) *NoteHandler {
	return &NoteHandler{notes: service}
}

// RegisterRoutes registers note routes on the given router.
// The router should already have the /notes prefix.
func (h *NoteHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListNotes).Methods("GET")
	r.HandleFunc("", h.CreateNote).Methods("POST")
	r.HandleFunc("/{id}", h.GetNote).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateNote).Methods("PUT")
	r.HandleFunc("/{id}", h.DeleteNote).Methods("DELETE")
	r.HandleFunc("/{id}/archive", h.ArchiveNote).Methods("POST")
	r.HandleFunc("/{id}/summarize", h.SummarizeNote).Methods("POST")
}

// NoteRequest represents a create or update note request
type NoteRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Content  string `json:"content" validate:"required"`
	Archived bool   `json:"archived"`
}

// SummaryResponse carries a generated note summary
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// ListNotes lists notes for the authenticated user. Archived notes are
// excluded unless includeArchived=true (include_archived is accepted as an
// alias).
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	includeArchived := false
	v := r.URL.Query().Get("includeArchived")
	if v == "" {
		v = r.URL.Query().Get("include_archived")
	}
	if v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid includeArchived value")
			return
		}
		includeArchived = parsed
	}

	result, err := h.notes.List(r.Context(), user.ID, includeArchived)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// CreateNote creates a new note
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	req, ok := h.decodeNoteRequest(w, r)
	if !ok {
		return
	}

	note, err := h.notes.Create(r.Context(), user.ID, notes.CreateNoteInput{
		Title:    req.Title,
		Content:  req.Content,
		Archived: req.Archived,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, note)
}

// GetNote retrieves a note by ID
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, ok := parsePathID(w, r, "id", "Invalid note ID")
	if !ok {
		return
	}

	note, err := h.notes.Get(r.Context(), id, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, note)
}

// UpdateNote replaces the title, content and archived flag of a note
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, ok := parsePathID(w, r, "id", "Invalid note ID")
	if !ok {
		return
	}

	req, ok := h.decodeNoteRequest(w, r)
	if !ok {
		return
	}

	note, err := h.notes.Update(r.Context(), id, user.ID, notes.CreateNoteInput{
		Title:    req.Title,
		Content:  req.Content,
		Archived: req.Archived,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, note)
}

// DeleteNote soft-deletes a note
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, ok := parsePathID(w, r, "id", "Invalid note ID")
	if !ok {
		return
	}

	if err := h.notes.Delete(r.Context(), id, user.ID); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ArchiveNote sets or clears the archived flag. The archive query parameter
// defaults to true.
func (h *NoteHandler) ArchiveNote(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, ok := parsePathID(w, r, "id", "Invalid note ID")
	if !ok {
		return
	}

	archive := true
	if v := r.URL.Query().Get("archive"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid archive value")
			return
		}
		archive = parsed
	}

	note, err := h.notes.Archive(r.Context(), id, user.ID, archive)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, note)
}

// SummarizeNote generates and stores a summary for a note
func (h *NoteHandler) SummarizeNote(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, ok := parsePathID(w, r, "id", "Invalid note ID")
	if !ok {
		return
	}

	summary, err := h.notes.Summarize(r.Context(), id, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, SummaryResponse{Summary: summary})
}

func (h *NoteHandler) decodeNoteRequest(w http.ResponseWriter, r *http.Request) (*NoteRequest, bool) {
	var req NoteRequest
	if !decodeJSON(w, r, &req) {
		return nil, false
	}

	req.Title = validation.SanitizeText(req.Title)
	req.Content = validation.SanitizeText(req.Content)

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

func parsePathID(w http.ResponseWriter, r *http.Request, name, errMessage string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", errMessage)
		return uuid.Nil, false
	}
	return id, true
}
