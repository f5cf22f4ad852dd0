package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/notesmith/smart-notes/internal/config"
	"github.com/notesmith/smart-notes/internal/database"
	"github.com/notesmith/smart-notes/internal/models"
)

// Pre-baked endpoints for the common providers. Any other provider needs the
// endpoint flags spelled out.
var knownProviders = map[string]struct {
	authURL     string
	tokenURL    string
	userInfoURL string
	scopes      string
}{
	"google": {
		authURL:     "https://accounts.google.com/o/oauth2/v2/auth",
		tokenURL:    "https://oauth2.googleapis.com/token",
		userInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
		scopes:      "openid email profile",
	},
	"github": {
		authURL:     "https://github.com/login/oauth/authorize",
		tokenURL:    "https://github.com/login/oauth/access_token",
		userInfoURL: "https://api.github.com/user",
		scopes:      "read:user user:email",
	},
}

// NewOAuthCmd creates the oauth configuration command with list, set and
// delete subcommands.
func NewOAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oauth",
		Short: "Manage OAuth2 provider configuration",
		Long:  "List, set or delete OAuth2 provider configuration (stored in database).",
	}
	cmd.AddCommand(newOAuthListCmd())
	cmd.AddCommand(newOAuthSetCmd())
	cmd.AddCommand(newOAuthDeleteCmd())
	return cmd
}

func newOAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured OAuth2 providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			repo := database.NewOAuthConfigRepository(db)
			configs, err := repo.GetAll(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list OAuth configs: %w", err)
			}

			if len(configs) == 0 {
				fmt.Println("No OAuth2 providers configured")
				return nil
			}

			fmt.Println("Configured OAuth2 providers:")
			for _, c := range configs {
				fmt.Printf("  - Provider: %s\n", c.Provider)
				fmt.Printf("    Client ID: %s\n", c.ClientID)
				fmt.Printf("    Auth URL: %s\n", c.AuthURL)
				fmt.Printf("    Token URL: %s\n", c.TokenURL)
				fmt.Printf("    UserInfo URL: %s\n", c.UserInfoURL)
				fmt.Printf("    Redirect URI: %s\n", c.RedirectURI)
				fmt.Printf("    Scopes: %s\n", c.Scopes)
				fmt.Println()
			}
			return nil
		},
	}
}

func newOAuthSetCmd() *cobra.Command {
	var clientID, clientSecret, authURL, tokenURL, userInfoURL, redirectURI, scopes string

	cmd := &cobra.Command{
		Use:   "set <provider-name>",
		Short: "Create or update an OAuth2 provider",
		Long:  "Configure an OAuth2 provider. For 'google' and 'github' the endpoints and scopes default to the provider's well-known values.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := args[0]

			if known, ok := knownProviders[provider]; ok {
				if authURL == "" {
					authURL = known.authURL
				}
				if tokenURL == "" {
					tokenURL = known.tokenURL
				}
				if userInfoURL == "" {
					userInfoURL = known.userInfoURL
				}
				if scopes == "" {
					scopes = known.scopes
				}
			}

			if clientID == "" || clientSecret == "" || redirectURI == "" {
				return fmt.Errorf("required flags: --client-id, --client-secret, --redirect-uri")
			}
			if authURL == "" || tokenURL == "" || userInfoURL == "" {
				return fmt.Errorf("unknown provider %q: --auth-url, --token-url and --userinfo-url are required", provider)
			}

			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			repo := database.NewOAuthConfigRepository(db)
			oauthConfig := &models.OAuthConfig{
				ID:           uuid.New(),
				Provider:     provider,
				ClientID:     clientID,
				ClientSecret: clientSecret,
				AuthURL:      authURL,
				TokenURL:     tokenURL,
				UserInfoURL:  userInfoURL,
				RedirectURI:  redirectURI,
				Scopes:       scopes,
			}
			if err := repo.Upsert(context.Background(), oauthConfig); err != nil {
				return fmt.Errorf("failed to save OAuth config: %w", err)
			}

			fmt.Printf("Saved OAuth2 configuration for provider: %s\n", provider)
			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client ID (required)")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth2 client secret (required)")
	cmd.Flags().StringVar(&authURL, "auth-url", "", "Authorization endpoint (defaulted for known providers)")
	cmd.Flags().StringVar(&tokenURL, "token-url", "", "Token endpoint (defaulted for known providers)")
	cmd.Flags().StringVar(&userInfoURL, "userinfo-url", "", "UserInfo endpoint (defaulted for known providers)")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "OAuth2 redirect URI (required)")
	cmd.Flags().StringVar(&scopes, "scopes", "", "Space-separated scopes (defaulted for known providers)")

	return cmd
}

func newOAuthDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <provider-name>",
		Short: "Delete an OAuth2 provider configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			repo := database.NewOAuthConfigRepository(db)
			if err := repo.Delete(context.Background(), args[0]); err != nil {
				return fmt.Errorf("failed to delete OAuth config: %w", err)
			}

			fmt.Printf("Deleted OAuth2 configuration for provider: %s\n", args[0])
			return nil
		},
	}
}

func openDatabase() (*database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func closeDatabase(db *database.DB) {
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
	}
}
