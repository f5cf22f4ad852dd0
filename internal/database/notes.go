package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/notesmith/smart-notes/internal/apperr"
	"github.com/notesmith/smart-notes/internal/models"
)

// NoteRepository handles note database operations. Every owner-scoped read
// excludes soft-deleted notes.
type NoteRepository struct {
	db *DB
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *DB) *NoteRepository {
	return &NoteRepository{db: db}
}

const noteColumns = `id, user_id, title, content, summary, archived, deleted, created_at, updated_at`

func scanNote(row interface{ Scan(...any) error }) (*models.Note, error) {
	note := &models.Note{}
	err := row.Scan(
		&note.ID,
		&note.UserID,
		&note.Title,
		&note.Content,
		&note.Summary,
		&note.Archived,
		&note.Deleted,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return note, nil
}

// Create creates a new note
func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	query := `
		INSERT INTO notes (id, user_id, title, content, summary, archived, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		note.ID,
		note.UserID,
		note.Title,
		note.Content,
		note.Summary,
		note.Archived,
		note.Deleted,
		now,
		now,
	).Scan(&note.CreatedAt, &note.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create note: %w", err)
	}

	return nil
}

// GetByID retrieves a non-deleted note regardless of owner. Used by
// background workers, which act on note IDs carried in jobs.
func (r *NoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1 AND NOT deleted`

	note, err := scanNote(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("note not found with id: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return note, nil
}

// GetByIDAndUser retrieves a non-deleted note owned by the given user.
// A note owned by someone else is indistinguishable from a missing one.
func (r *NoteRepository) GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1 AND user_id = $2 AND NOT deleted`

	note, err := scanNote(r.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("note not found with id: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return note, nil
}

// ListByUser retrieves all non-deleted notes for a user, newest first.
// When includeArchived is false, archived notes are excluded.
func (r *NoteRepository) ListByUser(ctx context.Context, userID uuid.UUID, includeArchived bool) ([]*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE user_id = $1 AND NOT deleted`
	if !includeArchived {
		query += ` AND NOT archived`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return notes, nil
}

// Update overwrites the mutable fields of an owned note, including the
// deleted flag (soft delete goes through here).
func (r *NoteRepository) Update(ctx context.Context, note *models.Note) error {
	query := `
		UPDATE notes
		SET title = $3, content = $4, summary = $5, archived = $6, deleted = $7, updated_at = $8
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		note.ID,
		note.UserID,
		note.Title,
		note.Content,
		note.Summary,
		note.Archived,
		note.Deleted,
		now,
	).Scan(&note.UpdatedAt)

	if err == sql.ErrNoRows {
		return apperr.NotFound("note not found with id: %s", note.ID)
	}
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}

	return nil
}
