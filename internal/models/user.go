package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system. PasswordHash is nil for users that
// only ever signed in through an OAuth2 provider.
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  *string   `json:"-"`
	Name          *string   `json:"name,omitempty"`
	Picture       *string   `json:"picture,omitempty"`
	Provider      *string   `json:"provider,omitempty"`
	ProviderID    *string   `json:"provider_id,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
