package models

import (
	"time"

	"github.com/google/uuid"
)

// Note represents a note owned by a user. Deleted is a soft-delete marker:
// deleted notes stay in storage but are excluded from every read path.
// Archived and Deleted are independent flags.
type Note struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Summary   *string   `json:"summary,omitempty"`
	Archived  bool      `json:"archived"`
	Deleted   bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
