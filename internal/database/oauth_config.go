package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/notesmith/smart-notes/internal/apperr"
	"github.com/notesmith/smart-notes/internal/models"
)

// OAuthConfigRepository handles OAuth2 provider configuration database operations
type OAuthConfigRepository struct {
	db *DB
}

// NewOAuthConfigRepository creates a new OAuth config repository
func NewOAuthConfigRepository(db *DB) *OAuthConfigRepository {
	return &OAuthConfigRepository{db: db}
}

const oauthConfigColumns = `id, provider, client_id, client_secret, auth_url, token_url, userinfo_url, redirect_uri, scopes, created_at, updated_at`

func scanOAuthConfig(row interface{ Scan(...any) error }) (*models.OAuthConfig, error) {
	config := &models.OAuthConfig{}
	err := row.Scan(
		&config.ID,
		&config.Provider,
		&config.ClientID,
		&config.ClientSecret,
		&config.AuthURL,
		&config.TokenURL,
		&config.UserInfoURL,
		&config.RedirectURI,
		&config.Scopes,
		&config.CreatedAt,
		&config.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return config, nil
}

// Upsert stores an OAuth provider configuration, replacing any existing
// configuration for the same provider.
func (r *OAuthConfigRepository) Upsert(ctx context.Context, config *models.OAuthConfig) error {
	query := `
		INSERT INTO oauth_config (id, provider, client_id, client_secret, auth_url, token_url, userinfo_url, redirect_uri, scopes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (provider) DO UPDATE SET
			client_id = EXCLUDED.client_id,
			client_secret = EXCLUDED.client_secret,
			auth_url = EXCLUDED.auth_url,
			token_url = EXCLUDED.token_url,
			userinfo_url = EXCLUDED.userinfo_url,
			redirect_uri = EXCLUDED.redirect_uri,
			scopes = EXCLUDED.scopes,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		config.ID,
		config.Provider,
		config.ClientID,
		config.ClientSecret,
		config.AuthURL,
		config.TokenURL,
		config.UserInfoURL,
		config.RedirectURI,
		config.Scopes,
		now,
		now,
	).Scan(&config.CreatedAt, &config.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert oauth config: %w", err)
	}

	return nil
}

// GetByProvider retrieves an OAuth configuration by provider name
func (r *OAuthConfigRepository) GetByProvider(ctx context.Context, provider string) (*models.OAuthConfig, error) {
	query := `SELECT ` + oauthConfigColumns + ` FROM oauth_config WHERE provider = $1`

	config, err := scanOAuthConfig(r.db.QueryRowContext(ctx, query, provider))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("oauth config not found for provider: %s", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("get oauth config: %w", err)
	}
	return config, nil
}

// GetAll retrieves all OAuth provider configurations
func (r *OAuthConfigRepository) GetAll(ctx context.Context) ([]*models.OAuthConfig, error) {
	query := `SELECT ` + oauthConfigColumns + ` FROM oauth_config ORDER BY provider`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query oauth configs: %w", err)
	}
	defer rows.Close()

	var configs []*models.OAuthConfig
	for rows.Next() {
		config, err := scanOAuthConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scan oauth config: %w", err)
		}
		configs = append(configs, config)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate oauth configs: %w", err)
	}
	return configs, nil
}

// Delete removes an OAuth configuration by provider
func (r *OAuthConfigRepository) Delete(ctx context.Context, provider string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM oauth_config WHERE provider = $1`, provider)
	if err != nil {
		return fmt.Errorf("delete oauth config: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete oauth config rows affected: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("oauth config not found for provider: %s", provider)
	}

	return nil
}
