package schedulerclient

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/fivetwenty-io/scheduler-client/internal/client"
	"github.com/fivetwenty-io/scheduler-client/internal/constants"
	"github.com/fivetwenty-io/scheduler-client/pkg/scheduler"
)

// DevModeEnv enables insecure TLS during token URL discovery.
const DevModeEnv = "SCHEDULER_DEV_MODE"

// New creates a new Scheduler API client, discovering the UAA token URL from
// the Cloud Foundry API root when a grant needs one.
func New(ctx context.Context, config *scheduler.Config) (scheduler.Client, error) {
	if config == nil {
		return nil, scheduler.ErrConfigRequired
	}

	if config.Endpoint == "" {
		return nil, scheduler.ErrEndpointRequired
	}

	normalized := *config
	normalized.Endpoint = NormalizeEndpoint(config.Endpoint)

	if config.APIEndpoint != "" {
		normalized.APIEndpoint = NormalizeEndpoint(config.APIEndpoint)
	}

	if needsTokenURL(&normalized) {
		if normalized.APIEndpoint == "" {
			return nil, scheduler.ErrAPIEndpointRequired
		}

		tokenURL, err := DiscoverTokenURL(ctx, normalized.APIEndpoint, normalized.SkipTLSVerify)
		if err != nil {
			return nil, err
		}

		normalized.TokenURL = tokenURL
	}

	schedulerClient, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return schedulerClient, nil
}

// DiscoverTokenURL returns the UAA token URL advertised by the Cloud Foundry
// API root at apiEndpoint.
func DiscoverTokenURL(ctx context.Context, apiEndpoint string, skipTLS bool) (string, error) {
	uaaURL, err := discoverUAAEndpoint(ctx, NormalizeEndpoint(apiEndpoint), skipTLS)
	if err != nil {
		return "", fmt.Errorf("discovering UAA endpoint: %w", err)
	}

	return strings.TrimSuffix(uaaURL, "/") + constants.TokenPath, nil
}

// NormalizeEndpoint trims trailing slashes and defaults the scheme to https.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSuffix(strings.TrimSpace(endpoint), "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}

// needsTokenURL reports whether the credentials require an OAuth2 grant
// and no token URL was given.
func needsTokenURL(config *scheduler.Config) bool {
	if config.TokenURL != "" {
		return false
	}

	return config.RefreshToken != "" ||
		(config.ClientID != "" && config.ClientSecret != "") ||
		(config.Username != "" && config.Password != "")
}

func isDevelopmentEnvironment() bool {
	devMode := os.Getenv(DevModeEnv)

	return devMode == "true" || devMode == "1"
}

// createDiscoveryHTTPClient creates an HTTP client for UAA endpoint discovery.
func createDiscoveryHTTPClient(skipTLS bool) (*http.Client, error) {
	httpClient := &http.Client{
		Timeout: constants.ShortHTTPTimeout,
	}

	if skipTLS {
		if !isDevelopmentEnvironment() {
			return nil, fmt.Errorf("%w (set %s=true)", scheduler.ErrSkipTLSOnlyInDev, DevModeEnv)
		}

		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 -- guarded by the dev mode check
		}
	}

	return httpClient, nil
}

// fetchRootInfo reads links.uaa, or links.login, from the API root.
func fetchRootInfo(ctx context.Context, httpClient *http.Client, apiEndpoint string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiEndpoint+"/", nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("getting root info: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return "", fmt.Errorf("%w with status %d: %s", scheduler.ErrRootInfoRequestFailed, resp.StatusCode, string(body))
	}

	var rootInfo struct {
		Links struct {
			UAA   *scheduler.Link `json:"uaa"`
			Login *scheduler.Link `json:"login"`
		} `json:"links"`
	}

	err = json.NewDecoder(resp.Body).Decode(&rootInfo)
	if err != nil {
		return "", fmt.Errorf("parsing root info: %w", err)
	}

	if rootInfo.Links.UAA != nil && rootInfo.Links.UAA.Href != "" {
		return rootInfo.Links.UAA.Href, nil
	}

	if rootInfo.Links.Login != nil && rootInfo.Links.Login.Href != "" {
		return rootInfo.Links.Login.Href, nil
	}

	return "", scheduler.ErrNoUAAOrLoginURL
}

func discoverUAAEndpoint(ctx context.Context, apiEndpoint string, skipTLS bool) (string, error) {
	httpClient, err := createDiscoveryHTTPClient(skipTLS)
	if err != nil {
		return "", err
	}

	return fetchRootInfo(ctx, httpClient, apiEndpoint)
}

// NewWithToken creates a client that sends a static bearer token.
func NewWithToken(ctx context.Context, endpoint, token string) (scheduler.Client, error) {
	return New(ctx, &scheduler.Config{
		Endpoint:    endpoint,
		AccessToken: token,
	})
}

// NewWithClientCredentials creates a client using the OAuth2 client_credentials grant.
func NewWithClientCredentials(ctx context.Context, endpoint, apiEndpoint, clientID, clientSecret string) (scheduler.Client, error) {
	return New(ctx, &scheduler.Config{
		Endpoint:     endpoint,
		APIEndpoint:  apiEndpoint,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}

// NewWithPassword creates a client using the OAuth2 password grant.
func NewWithPassword(ctx context.Context, endpoint, apiEndpoint, username, password string) (scheduler.Client, error) {
	return New(ctx, &scheduler.Config{
		Endpoint:    endpoint,
		APIEndpoint: apiEndpoint,
		Username:    username,
		Password:    password,
	})
}
