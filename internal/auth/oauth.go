package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/scheduler-client/internal/constants"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// OAuth2Config holds the credentials used to obtain tokens from UAA.
type OAuth2Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	RefreshToken string
	AccessToken  string
	Scopes       []string

	// HTTPClient is used for token requests when set.
	HTTPClient *http.Client
}

// OAuth2TokenManager obtains and refreshes tokens through the OAuth2 grants
// UAA supports. Concurrent callers share a single grant request.
type OAuth2TokenManager struct {
	config *OAuth2Config
	store  *TokenStore
	mu     sync.Mutex
}

// NewOAuth2TokenManager creates a token manager. A configured AccessToken is
// used until it is rejected or replaced.
func NewOAuth2TokenManager(config *OAuth2Config) *OAuth2TokenManager {
	manager := &OAuth2TokenManager{
		config: config,
		store:  NewTokenStore(),
	}

	if config.AccessToken != "" {
		manager.store.Set(&Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			TokenType:    "bearer",
		})
	}

	return manager
}

// NewUAATokenManager creates a client_credentials token manager for a UAA server.
func NewUAATokenManager(uaaURL, clientID, clientSecret string) *OAuth2TokenManager {
	return NewOAuth2TokenManager(&OAuth2Config{
		TokenURL:     TokenURL(uaaURL),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       []string{"cloud_controller.read", "cloud_controller.write"},
	})
}

// NewUAATokenManagerWithPassword creates a password grant token manager for a UAA server.
func NewUAATokenManagerWithPassword(uaaURL, clientID, clientSecret, username, password string) *OAuth2TokenManager {
	return NewOAuth2TokenManager(&OAuth2Config{
		TokenURL:     TokenURL(uaaURL),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Username:     username,
		Password:     password,
		Scopes:       []string{"cloud_controller.read", "cloud_controller.write"},
	})
}

// TokenURL returns the token endpoint of a UAA server.
func TokenURL(uaaURL string) string {
	return strings.TrimSuffix(uaaURL, "/") + constants.TokenPath
}

// GetToken returns a valid access token, obtaining a new one when needed.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if token.Valid() {
		return token.AccessToken, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another caller may have refreshed while we waited.
	token = m.store.Get()
	if token.Valid() {
		return token.AccessToken, nil
	}

	err := m.obtain(ctx, token)
	if err != nil {
		return "", err
	}

	return m.store.Get().AccessToken, nil
}

// RefreshToken discards the current access token and obtains a new one.
func (m *OAuth2TokenManager) RefreshToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.obtain(ctx, m.store.Get())
}

// SetToken stores a token obtained elsewhere, keeping the known refresh token.
func (m *OAuth2TokenManager) SetToken(token string, expiresAt time.Time) {
	refreshToken := m.config.RefreshToken
	if current := m.store.Get(); current != nil && current.RefreshToken != "" {
		refreshToken = current.RefreshToken
	}

	m.store.Set(&Token{
		AccessToken:  token,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresAt:    expiresAt,
	})
}

// CurrentToken returns a copy of the stored token, or nil.
func (m *OAuth2TokenManager) CurrentToken() *Token {
	token := m.store.Get()
	if token == nil {
		return nil
	}

	current := *token

	return &current
}

// obtain runs the first applicable grant: refresh token, then password,
// then client credentials. Must be called with m.mu held.
func (m *OAuth2TokenManager) obtain(ctx context.Context, current *Token) error {
	refreshToken := m.config.RefreshToken
	if current != nil && current.RefreshToken != "" {
		refreshToken = current.RefreshToken
	}

	hasPassword := m.config.Username != "" && m.config.Password != ""
	hasClient := m.config.ClientID != "" && m.config.ClientSecret != ""

	if refreshToken == "" && !hasPassword && !hasClient {
		return ErrNoValidCredentials
	}

	if m.config.TokenURL == "" {
		return ErrTokenURLRequired
	}

	if m.config.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, m.config.HTTPClient)
	}

	var lastErr error

	if refreshToken != "" {
		token, err := m.userConfig().TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
		if err == nil {
			m.store.Set(fromOAuth2(token, refreshToken))

			return nil
		}

		lastErr = fmt.Errorf("refreshing token: %w", err)
	}

	switch {
	case hasPassword:
		token, err := m.userConfig().PasswordCredentialsToken(ctx, m.config.Username, m.config.Password)
		if err != nil {
			return fmt.Errorf("password grant: %w", err)
		}

		m.store.Set(fromOAuth2(token, ""))

		return nil
	case hasClient:
		cc := &clientcredentials.Config{
			ClientID:     m.config.ClientID,
			ClientSecret: m.config.ClientSecret,
			TokenURL:     m.config.TokenURL,
			Scopes:       m.config.Scopes,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}

		token, err := cc.Token(ctx)
		if err != nil {
			return fmt.Errorf("client credentials grant: %w", err)
		}

		m.store.Set(fromOAuth2(token, ""))

		return nil
	}

	return lastErr
}

func (m *OAuth2TokenManager) userConfig() *oauth2.Config {
	clientID := m.config.ClientID
	if clientID == "" {
		clientID = constants.DefaultCFClientID
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: m.config.ClientSecret,
		Scopes:       m.config.Scopes,
		Endpoint: oauth2.Endpoint{
			TokenURL:  m.config.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

func fromOAuth2(token *oauth2.Token, fallbackRefresh string) *Token {
	refreshToken := token.RefreshToken
	if refreshToken == "" {
		refreshToken = fallbackRefresh
	}

	result := &Token{
		AccessToken:  token.AccessToken,
		RefreshToken: refreshToken,
		TokenType:    token.TokenType,
		ExpiresAt:    token.Expiry,
	}

	if !token.Expiry.IsZero() {
		result.ExpiresIn = int64(time.Until(token.Expiry).Seconds())
	}

	return result
}
