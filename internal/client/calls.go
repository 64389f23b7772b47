package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/scheduler-client/internal/http"
	"github.com/fivetwenty-io/scheduler-client/pkg/scheduler"
)

// CallsClient implements scheduler.CallsClient.
type CallsClient struct {
	*scheduledResource[scheduler.Call]
}

// NewCallsClient creates a new calls client.
func NewCallsClient(httpClient *http.Client, pagination scheduler.PaginationOptions) *CallsClient {
	return &CallsClient{
		scheduledResource: newScheduledResource[scheduler.Call](httpClient, "/calls", "call", pagination),
	}
}

// Create implements scheduler.CallsClient.Create.
func (c *CallsClient) Create(ctx context.Context, request *scheduler.CallCreate) (*scheduler.Call, error) {
	err := request.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating call: %w", err)
	}

	query := url.Values{"app_guid": []string{request.AppGUID}}

	resp, err := c.httpClient.PostWithQuery(ctx, "/calls", query, request)
	if err != nil {
		return nil, fmt.Errorf("creating call: %w", err)
	}

	var call scheduler.Call

	err = json.Unmarshal(resp.Body, &call)
	if err != nil {
		return nil, fmt.Errorf("parsing call: %w", err)
	}

	return &call, nil
}
