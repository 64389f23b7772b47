package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/scheduler-client/internal/auth"
	"github.com/fivetwenty-io/scheduler-client/internal/constants"
	"github.com/fivetwenty-io/scheduler-client/internal/http"
	"github.com/fivetwenty-io/scheduler-client/pkg/scheduler"
)

// Static errors for err113 compliance.
var (
	ErrEndpointRequired         = errors.New("scheduler endpoint is required")
	ErrNoTokenManagerConfigured = errors.New("no token manager configured")
)

// Client implements the scheduler.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	baseURL      string
	logger       scheduler.Logger

	calls *CallsClient
	jobs  *JobsClient
}

// createTokenManager picks a token manager for the configured credentials:
// a bare access token is static, anything that can obtain a new token goes
// through OAuth2, and no credentials means no authentication.
func createTokenManager(config *scheduler.Config) auth.TokenManager {
	canObtain := config.RefreshToken != "" ||
		(config.ClientID != "" && config.ClientSecret != "") ||
		(config.Username != "" && config.Password != "")

	if config.AccessToken != "" && !canObtain {
		return auth.NewStaticTokenManager(config.AccessToken)
	}

	if !canObtain {
		return nil
	}

	return auth.NewOAuth2TokenManager(OAuth2Config(config))
}

// OAuth2Config maps the client configuration to token manager settings.
func OAuth2Config(config *scheduler.Config) *auth.OAuth2Config {
	return &auth.OAuth2Config{
		TokenURL:     config.TokenURL,
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Username:     config.Username,
		Password:     config.Password,
		RefreshToken: config.RefreshToken,
		AccessToken:  config.AccessToken,
	}
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *scheduler.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(&loggerAdapter{logger: config.Logger}))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RateLimit > 0 {
		httpOpts = append(httpOpts, http.WithRateLimit(config.RateLimit, max(config.PageConcurrency, 1)))
	}

	if config.RetryMax > 0 || config.RetryWaitMin > 0 || config.RetryWaitMax > 0 {
		retryMax := constants.DefaultRetryMax
		if config.RetryMax > 0 {
			retryMax = config.RetryMax
		}

		retryWaitMin := constants.DefaultRetryWaitMin
		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		retryWaitMax := constants.DefaultRetryWaitMax
		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(retryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates a new scheduler API client.
func New(_ context.Context, config *scheduler.Config) (*Client, error) {
	if config == nil {
		return nil, scheduler.ErrConfigRequired
	}

	return NewWithTokenManager(config, createTokenManager(config))
}

// NewWithTokenManager creates a new scheduler API client with a custom token manager.
func NewWithTokenManager(config *scheduler.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config == nil {
		return nil, scheduler.ErrConfigRequired
	}

	if config.Endpoint == "" {
		return nil, ErrEndpointRequired
	}

	httpClient := http.NewClient(config.Endpoint, tokenManager, createHTTPClientOptions(config)...)

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      httpClient.BaseURL(),
		logger:       config.Logger,
	}

	client.initializeResourceClients(paginationOptions(config))

	return client, nil
}

func paginationOptions(config *scheduler.Config) scheduler.PaginationOptions {
	options := *scheduler.DefaultPaginationOptions()

	if config.PageConcurrency > 0 {
		options.Concurrency = config.PageConcurrency
	}

	if config.PageSize > 0 {
		options.PageSize = config.PageSize
	}

	return options
}

// Calls implements scheduler.Client.Calls.
func (c *Client) Calls() scheduler.CallsClient {
	return c.calls
}

// Jobs implements scheduler.Client.Jobs.
func (c *Client) Jobs() scheduler.JobsClient {
	return c.jobs
}

// BaseURL returns the scheduler endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() auth.TokenManager {
	return c.tokenManager
}

// GetToken returns the current access token from the token manager.
func (c *Client) GetToken(ctx context.Context) (string, error) {
	if c.tokenManager == nil {
		return "", ErrNoTokenManagerConfigured
	}

	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}

	return token, nil
}

func (c *Client) initializeResourceClients(pagination scheduler.PaginationOptions) {
	c.calls = NewCallsClient(c.httpClient, pagination)
	c.jobs = NewJobsClient(c.httpClient, pagination)
}

// loggerAdapter adapts scheduler.Logger to the HTTP layer.
type loggerAdapter struct {
	logger scheduler.Logger
}

func (l *loggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, fields)
}

func (l *loggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, fields)
}

func (l *loggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, fields)
}

func (l *loggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, fields)
}
