package commands

import (
	"fmt"

	"github.com/fivetwenty-io/scheduler-client/internal/auth"
	"github.com/fivetwenty-io/scheduler-client/internal/constants"
	"github.com/fivetwenty-io/scheduler-client/pkg/schedulerclient"
	"github.com/spf13/cobra"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		username     string
		password     string
		clientID     string
		clientSecret string
		tokenURL     string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against UAA",
		Long: `Obtain a token from the UAA of a Cloud Foundry installation and store it in
~/.scheduler/config.yml. The token URL is discovered from --api unless
--token-url is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config := loadConfig()

			if tokenURL == "" {
				tokenURL = config.TokenURL
			}

			if tokenURL == "" {
				if config.API == "" {
					return constants.ErrNoAPIEndpoint
				}

				discovered, err := schedulerclient.DiscoverTokenURL(cmd.Context(), config.API, config.SkipSSLValidation)
				if err != nil {
					return err
				}

				tokenURL = discovered
			}

			oauthConfig := &auth.OAuth2Config{TokenURL: tokenURL}

			if clientID != "" && clientSecret != "" {
				oauthConfig.ClientID = clientID
				oauthConfig.ClientSecret = clientSecret
			} else {
				if username == "" {
					username = promptLine(cmd.InOrStdin(), cmd.OutOrStdout(), "Username: ")
				}

				if username == "" {
					return constants.ErrUsernameRequired
				}

				if password == "" {
					prompted, err := promptPassword(cmd.InOrStdin(), cmd.OutOrStdout())
					if err != nil {
						return err
					}

					password = prompted
				}

				oauthConfig.ClientID = clientID
				oauthConfig.Username = username
				oauthConfig.Password = password
			}

			tokenManager := auth.NewOAuth2TokenManager(oauthConfig)

			_, err := tokenManager.GetToken(cmd.Context())
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			token := tokenManager.CurrentToken()

			config.TokenURL = tokenURL
			config.Token = token.AccessToken
			config.RefreshToken = token.RefreshToken
			config.Username = oauthConfig.Username
			config.ClientID = oauthConfig.ClientID
			config.ClientSecret = oauthConfig.ClientSecret
			config.TokenExpiresAt = nil

			if !token.ExpiresAt.IsZero() {
				config.TokenExpiresAt = &token.ExpiresAt
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if oauthConfig.Username != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", oauthConfig.Username)
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as client %s\n", oauthConfig.ClientID)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth2 client secret")
	cmd.Flags().StringVar(&tokenURL, "token-url", "", "UAA token URL")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config := loadConfig()
			config.Token = ""
			config.TokenExpiresAt = nil
			config.RefreshToken = ""
			config.ClientSecret = ""

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")

			return nil
		},
	}
}
