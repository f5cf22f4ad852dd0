package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/notesmith/smart-notes/internal/apperr"
	"github.com/notesmith/smart-notes/internal/models"
	"golang.org/x/oauth2"
)

// OAuthConfigStore loads provider configuration from persistent storage
type OAuthConfigStore interface {
	GetByProvider(ctx context.Context, provider string) (*models.OAuthConfig, error)
}

// OAuthService drives the authorization-code flow against a provider whose
// endpoints are stored in the database.
type OAuthService struct {
	configs  OAuthConfigStore
	users    UserStore
	provider string
}

// NewOAuthService creates a new OAuth service for the named provider
func NewOAuthService(configs OAuthConfigStore, users UserStore, provider string) *OAuthService {
	return &OAuthService{
		configs:  configs,
		users:    users,
		provider: provider,
	}
}

// userInfo is the shape of the provider's userinfo response. Google uses
// "sub", some providers use "id".
type userInfo struct {
	Sub           string `json:"sub"`
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (u *userInfo) subject() string {
	if u.Sub != "" {
		return u.Sub
	}
	return u.ID
}

func (s *OAuthService) oauth2Config(cfg *models.OAuthConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       strings.Fields(cfg.Scopes),
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AuthURL,
			TokenURL: cfg.TokenURL,
		},
	}
}

// AuthCodeURL returns the provider authorization URL for the given state
func (s *OAuthService) AuthCodeURL(ctx context.Context, state string) (string, error) {
	cfg, err := s.configs.GetByProvider(ctx, s.provider)
	if err != nil {
		return "", err
	}
	return s.oauth2Config(cfg).AuthCodeURL(state), nil
}

// HandleCallback exchanges the authorization code, fetches the provider's
// userinfo, and creates or updates the matching local user.
func (s *OAuthService) HandleCallback(ctx context.Context, code string) (*models.User, error) {
	cfg, err := s.configs.GetByProvider(ctx, s.provider)
	if err != nil {
		return nil, err
	}

	oauthCfg := s.oauth2Config(cfg)
	token, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return nil, apperr.Unauthorized("authorization code exchange failed")
	}

	info, err := s.fetchUserInfo(ctx, oauthCfg, token, cfg.UserInfoURL)
	if err != nil {
		return nil, err
	}
	if info.subject() == "" || info.Email == "" {
		return nil, apperr.Unauthorized("provider userinfo missing subject or email")
	}

	return s.upsertUser(ctx, info)
}

func (s *OAuthService) fetchUserInfo(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token, userInfoURL string) (*userInfo, error) {
	client := cfg.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read userinfo response: %w", err)
	}

	info := &userInfo{}
	if err := json.Unmarshal(body, info); err != nil {
		return nil, fmt.Errorf("parse userinfo response: %w", err)
	}
	return info, nil
}

func (s *OAuthService) upsertUser(ctx context.Context, info *userInfo) (*models.User, error) {
	subject := info.subject()

	user, err := s.users.GetByProviderID(ctx, s.provider, subject)
	if err == nil {
		if !user.Active {
			return nil, apperr.Forbidden("account is disabled")
		}
		user.Email = strings.ToLower(info.Email)
		user.EmailVerified = info.EmailVerified
		setOptional(&user.Name, info.Name)
		setOptional(&user.Picture, info.Picture)
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	// First login via this provider. Link to an existing local account with
	// the same email rather than creating a duplicate.
	user, err = s.users.GetByEmail(ctx, strings.ToLower(info.Email))
	if err == nil {
		if !user.Active {
			return nil, apperr.Forbidden("account is disabled")
		}
		provider := s.provider
		user.Provider = &provider
		user.ProviderID = &subject
		user.EmailVerified = info.EmailVerified
		setOptional(&user.Name, info.Name)
		setOptional(&user.Picture, info.Picture)
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	provider := s.provider
	user = &models.User{
		ID:            uuid.New(),
		Email:         strings.ToLower(info.Email),
		Provider:      &provider,
		ProviderID:    &subject,
		EmailVerified: info.EmailVerified,
		Active:        true,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	setOptional(&user.Name, info.Name)
	setOptional(&user.Picture, info.Picture)

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func setOptional(dst **string, value string) {
	if value == "" {
		return
	}
	v := value
	*dst = &v
}
