package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/scheduler-client/internal/http"
	"github.com/fivetwenty-io/scheduler-client/pkg/scheduler"
)

// JobsClient implements scheduler.JobsClient.
type JobsClient struct {
	*scheduledResource[scheduler.Job]
}

// NewJobsClient creates a new jobs client.
func NewJobsClient(httpClient *http.Client, pagination scheduler.PaginationOptions) *JobsClient {
	return &JobsClient{
		scheduledResource: newScheduledResource[scheduler.Job](httpClient, "/jobs", "job", pagination),
	}
}

// Create implements scheduler.JobsClient.Create.
func (c *JobsClient) Create(ctx context.Context, request *scheduler.JobCreate) (*scheduler.Job, error) {
	err := request.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating job: %w", err)
	}

	query := url.Values{"app_guid": []string{request.AppGUID}}

	resp, err := c.httpClient.PostWithQuery(ctx, "/jobs", query, request)
	if err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}

	var job scheduler.Job

	err = json.Unmarshal(resp.Body, &job)
	if err != nil {
		return nil, fmt.Errorf("parsing job: %w", err)
	}

	return &job, nil
}
