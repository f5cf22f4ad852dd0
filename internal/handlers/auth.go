package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	logpkg "github.com/notesmith/smart-notes/internal/logger"
	"github.com/notesmith/smart-notes/internal/models"
	"github.com/notesmith/smart-notes/internal/request"
	"github.com/notesmith/smart-notes/internal/services/auth"
	"github.com/notesmith/smart-notes/internal/validation"
)

const (
	// SessionCookieName is the cookie holding the session token after an
	// OAuth2 login.
	SessionCookieName = "session"
	// StateCookieName is the short-lived cookie binding the OAuth2 state
	// parameter to the browser that started the flow.
	StateCookieName = "oauth_state"

	stateCookieTTL = 10 * time.Minute
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	passwords   *auth.PasswordService
	oauth       *auth.OAuthService
	tokens      *auth.TokenService
	frontendURL string
	secureCooks bool
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler. oauth may be nil when no
// provider is configured; the OAuth routes then respond 503.
func NewAuthHandler(passwords *auth.PasswordService, oauth *auth.OAuthService, tokens *auth.TokenService, frontendURL string, secureCookies bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		passwords:   passwords,
		oauth:       oauth,
		tokens:      tokens,
		frontendURL: frontendURL,
		secureCooks: secureCookies,
		logger:      logger,
	}
}

// RegisterRoutes registers auth routes that require authentication.
// The router should already have the /auth prefix.
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/me", h.GetMe).Methods("GET")
	r.HandleFunc("/token", h.GetToken).Methods("GET")
}

// RegisterPublicRoutes registers auth routes reachable without a session.
// The router should already have the /auth prefix.
func (h *AuthHandler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/oauth/login", h.OAuthLogin).Methods("GET")
	r.HandleFunc("/oauth/callback", h.OAuthCallback).Methods("GET")
	r.HandleFunc("/logout", h.Logout).Methods("POST")
}

// RegisterRequest represents a local account registration request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"max=200"`
}

// LoginRequest represents a local login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries a freshly issued session token
type TokenResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// GetMe returns current user information
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// GetToken issues a fresh bearer token for the authenticated user. Lets a
// cookie-based browser session obtain a token for API clients.
func (h *AuthHandler) GetToken(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Error("failed_to_issue_token", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to issue token")
		return
	}

	respondJSON(w, http.StatusOK, TokenResponse{Token: token, User: user})
}

// Register creates a local account and returns a session token
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.validateRequest(w, req) {
		return
	}

	user, err := h.passwords.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.respondWithSession(w, user, http.StatusCreated)
}

// Login authenticates a local account and returns a session token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.validateRequest(w, req) {
		return
	}

	user, err := h.passwords.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.respondWithSession(w, user, http.StatusOK)
}

// OAuthLogin redirects the browser to the provider's authorization endpoint
func (h *AuthHandler) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "No OAuth provider is configured")
		return
	}

	state, err := randomState()
	if err != nil {
		h.logger.Error("failed_to_generate_oauth_state", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to start login")
		return
	}

	url, err := h.oauth.AuthCodeURL(r.Context(), state)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCooks,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, url, http.StatusFound)
}

// OAuthCallback completes the authorization-code flow, sets the session
// cookie and redirects back to the frontend.
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "No OAuth provider is configured")
		return
	}

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(StateCookieName)
	if err != nil || state == "" || cookie.Value != state {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid OAuth state")
		return
	}
	// State is single-use
	h.clearCookie(w, StateCookieName)

	code := r.URL.Query().Get("code")
	if code == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Missing authorization code")
		return
	}

	user, err := h.oauth.HandleCallback(r.Context(), code)
	if err != nil {
		h.logger.Warn("oauth_callback_failed",
			zap.String("error", logpkg.SanitizeError(err)),
		)
		respondServiceError(w, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Error("failed_to_issue_token", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to issue token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCooks,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.frontendURL, http.StatusFound)
}

// Logout clears the session cookie. Bearer tokens stay valid until expiry.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, SessionCookieName)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) respondWithSession(w http.ResponseWriter, user *models.User, status int) {
	token, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Error("failed_to_issue_token", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to issue token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCooks,
		SameSite: http.SameSiteLaxMode,
	})

	respondJSON(w, status, TokenResponse{Token: token, User: user})
}

func (h *AuthHandler) validateRequest(w http.ResponseWriter, req any) bool {
	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return false
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return false
	}
	return true
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCooks,
		SameSite: http.SameSiteLaxMode,
	})
}

func randomState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
