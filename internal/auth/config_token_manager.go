package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoConfigPersister = errors.New("no config persister configured")
)

// ConfigPersister saves tokens so later invocations can reuse them.
type ConfigPersister interface {
	SaveToken(accessToken string, expiresAt time.Time, refreshToken string) error
}

// ConfigTokenManager wraps an OAuth2TokenManager and persists every token it obtains.
type ConfigTokenManager struct {
	oauth2Manager *OAuth2TokenManager
	persister     ConfigPersister
	onPersistErr  func(error)

	mu        sync.Mutex
	lastSaved string
}

// NewConfigTokenManager creates a persisting token manager. onPersistErr, if
// set, receives persistence failures; they never fail the request.
func NewConfigTokenManager(config *OAuth2Config, persister ConfigPersister, onPersistErr func(error)) *ConfigTokenManager {
	return &ConfigTokenManager{
		oauth2Manager: NewOAuth2TokenManager(config),
		persister:     persister,
		onPersistErr:  onPersistErr,
		lastSaved:     config.AccessToken,
	}
}

// GetToken returns a valid access token and persists it if it is new.
func (m *ConfigTokenManager) GetToken(ctx context.Context) (string, error) {
	token, err := m.oauth2Manager.GetToken(ctx)
	if err != nil {
		return "", err
	}

	m.persistIfChanged()

	return token, nil
}

// RefreshToken forces a new token and persists it.
func (m *ConfigTokenManager) RefreshToken(ctx context.Context) error {
	err := m.oauth2Manager.RefreshToken(ctx)
	if err != nil {
		return err
	}

	m.persistIfChanged()

	return nil
}

// SetToken sets the access token without persisting it.
func (m *ConfigTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.oauth2Manager.SetToken(token, expiresAt)
	m.lastSaved = token
}

// TokenExpiry returns the current token's expiration time.
func (m *ConfigTokenManager) TokenExpiry() time.Time {
	token := m.oauth2Manager.CurrentToken()
	if token == nil {
		return time.Time{}
	}

	return token.ExpiresAt
}

func (m *ConfigTokenManager) persistIfChanged() {
	token := m.oauth2Manager.CurrentToken()
	if token == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if token.AccessToken == m.lastSaved {
		return
	}

	err := m.persist(token)
	if err != nil {
		if m.onPersistErr != nil {
			m.onPersistErr(err)
		}

		return
	}

	m.lastSaved = token.AccessToken
}

func (m *ConfigTokenManager) persist(token *Token) error {
	if m.persister == nil {
		return ErrNoConfigPersister
	}

	err := m.persister.SaveToken(token.AccessToken, token.ExpiresAt, token.RefreshToken)
	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	return nil
}
