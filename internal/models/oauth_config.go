package models

import (
	"time"

	"github.com/google/uuid"
)

// OAuthConfig represents OAuth2 provider configuration stored in the database.
type OAuthConfig struct {
	ID           uuid.UUID `json:"id"`
	Provider     string    `json:"provider"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"-"`
	AuthURL      string    `json:"auth_url"`
	TokenURL     string    `json:"token_url"`
	UserInfoURL  string    `json:"userinfo_url"`
	RedirectURI  string    `json:"redirect_uri"`
	Scopes       string    `json:"scopes"` // Space-separated
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
