//go:build integration

package integration

import (
	"context"
	"iter"
	"os"
	"testing"

	"github.com/fivetwenty-io/scheduler-client/pkg/scheduler"
	"github.com/fivetwenty-io/scheduler-client/pkg/schedulerclient"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	// A cron expression that never fires during a test run.
	cronExpressionSlow = "* * * * ? 2099"
	testPageSize       = 2
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	SchedulerEndpoint string
	APIEndpoint       string
	ClientID          string
	ClientSecret      string
	Username          string
	Password          string
	SpaceGUID         string
	AppGUID           string
	CallURL           string
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	callURL := os.Getenv("SCHEDULER_CALL_URL")
	if callURL == "" {
		callURL = "https://example.com/"
	}

	return &TestConfig{
		SchedulerEndpoint: os.Getenv("SCHEDULER_ENDPOINT"),
		APIEndpoint:       os.Getenv("CF_API_ENDPOINT"),
		ClientID:          os.Getenv("CF_CLIENT_ID"),
		ClientSecret:      os.Getenv("CF_CLIENT_SECRET"),
		Username:          os.Getenv("CF_USERNAME"),
		Password:          os.Getenv("CF_PASSWORD"),
		SpaceGUID:         os.Getenv("SCHEDULER_SPACE_GUID"),
		AppGUID:           os.Getenv("SCHEDULER_APP_GUID"),
		CallURL:           callURL,
	}
}

func (c *TestConfig) complete() bool {
	hasCredentials := (c.ClientID != "" && c.ClientSecret != "") || (c.Username != "" && c.Password != "")

	return c.SchedulerEndpoint != "" && c.APIEndpoint != "" && c.SpaceGUID != "" && c.AppGUID != "" && hasCredentials
}

// newTestClient builds a client from the environment or skips the test.
func newTestClient(t *testing.T, pageSize int) (scheduler.Client, *TestConfig) {
	t.Helper()

	config := LoadTestConfig()
	if !config.complete() {
		t.Skip("SCHEDULER_ENDPOINT, CF_API_ENDPOINT, SCHEDULER_SPACE_GUID, SCHEDULER_APP_GUID and CF credentials are required")
	}

	client, err := schedulerclient.New(context.Background(), &scheduler.Config{
		Endpoint:     config.SchedulerEndpoint,
		APIEndpoint:  config.APIEndpoint,
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Username:     config.Username,
		Password:     config.Password,
		PageSize:     pageSize,
	})
	require.NoError(t, err)

	return client, config
}

// randomName returns a unique resource name with the given prefix.
func randomName(t *testing.T, prefix string) string {
	t.Helper()

	id, err := uuid.NewRandom()
	require.NoError(t, err)

	return "test-" + prefix + "-" + id.String()[:8]
}

// collect drains a ListAll sequence.
func collect[T any](t *testing.T, seq iter.Seq2[T, error]) []T {
	t.Helper()

	var items []T

	for item, err := range seq {
		require.NoError(t, err)

		items = append(items, item)
	}

	return items
}
