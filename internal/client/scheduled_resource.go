package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"time"

	"github.com/fivetwenty-io/scheduler-client/internal/constants"
	"github.com/fivetwenty-io/scheduler-client/internal/http"
	"github.com/fivetwenty-io/scheduler-client/pkg/scheduler"
)

// Static errors for err113 compliance.
var (
	ErrExecutionFailed   = errors.New("execution failed")
	ErrHistoryNotFound   = errors.New("execution history not found")
	ErrGUIDRequired      = errors.New("guid is required")
	ErrSpaceGUIDRequired = errors.New("space guid is required")
)

// scheduledResource implements the endpoints shared by calls and jobs:
// {path}/{guid}, {path}/{guid}/execute, {path}/{guid}/schedules and
// {path}/{guid}/history.
type scheduledResource[T any] struct {
	httpClient   *http.Client
	resourcePath string
	kind         string
	pagination   scheduler.PaginationOptions
	pollInterval time.Duration
	pollTimeout  time.Duration
}

func newScheduledResource[T any](httpClient *http.Client, resourcePath, kind string, pagination scheduler.PaginationOptions) *scheduledResource[T] {
	return &scheduledResource[T]{
		httpClient:   httpClient,
		resourcePath: resourcePath,
		kind:         kind,
		pagination:   pagination,
		pollInterval: constants.DefaultPollInterval,
		pollTimeout:  constants.DefaultExecutionTimeout,
	}
}

// Get retrieves a single resource.
func (r *scheduledResource[T]) Get(ctx context.Context, guid string) (*T, error) {
	if guid == "" {
		return nil, ErrGUIDRequired
	}

	resource, err := getJSON[T](ctx, r.httpClient, r.path(guid), nil)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", r.kind, err)
	}

	return resource, nil
}

// Delete removes a resource together with its schedules and history.
func (r *scheduledResource[T]) Delete(ctx context.Context, guid string) error {
	if guid == "" {
		return ErrGUIDRequired
	}

	_, err := r.httpClient.Delete(ctx, r.path(guid))
	if err != nil {
		return fmt.Errorf("deleting %s: %w", r.kind, err)
	}

	return nil
}

// Execute runs the resource immediately and returns the pending history record.
func (r *scheduledResource[T]) Execute(ctx context.Context, guid string) (*scheduler.History, error) {
	if guid == "" {
		return nil, ErrGUIDRequired
	}

	resp, err := r.httpClient.Post(ctx, r.path(guid, "execute"), nil)
	if err != nil {
		return nil, fmt.Errorf("executing %s: %w", r.kind, err)
	}

	var history scheduler.History

	err = json.Unmarshal(resp.Body, &history)
	if err != nil {
		return nil, fmt.Errorf("parsing %s execution response: %w", r.kind, err)
	}

	return &history, nil
}

// List retrieves one page of the resources in a space.
func (r *scheduledResource[T]) List(ctx context.Context, spaceGUID string, params *scheduler.QueryParams) (*scheduler.ListResponse[T], error) {
	if spaceGUID == "" {
		return nil, ErrSpaceGUIDRequired
	}

	query := params.Clone().WithSpaceGUID(spaceGUID).ToValues()

	result, err := getJSON[scheduler.ListResponse[T]](ctx, r.httpClient, r.resourcePath, query)
	if err != nil {
		return nil, fmt.Errorf("listing %ss: %w", r.kind, err)
	}

	return result, nil
}

// ListAll returns every resource in a space, page after page.
func (r *scheduledResource[T]) ListAll(ctx context.Context, spaceGUID string) iter.Seq2[T, error] {
	return r.aggregate(ctx, func(ctx context.Context, params *scheduler.QueryParams) (*scheduler.ListResponse[T], error) {
		return r.List(ctx, spaceGUID, params)
	})
}

// Schedule attaches a new schedule to the resource.
func (r *scheduledResource[T]) Schedule(ctx context.Context, guid string, request *scheduler.ScheduleCreate) (*scheduler.Schedule, error) {
	if guid == "" {
		return nil, ErrGUIDRequired
	}

	err := request.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating schedule: %w", err)
	}

	resp, err := r.httpClient.Post(ctx, r.path(guid, "schedules"), request)
	if err != nil {
		return nil, fmt.Errorf("scheduling %s: %w", r.kind, err)
	}

	var schedule scheduler.Schedule

	err = json.Unmarshal(resp.Body, &schedule)
	if err != nil {
		return nil, fmt.Errorf("parsing schedule response: %w", err)
	}

	return &schedule, nil
}

// ListSchedules retrieves one page of the resource's schedules.
func (r *scheduledResource[T]) ListSchedules(ctx context.Context, guid string, params *scheduler.QueryParams) (*scheduler.ScheduleList, error) {
	if guid == "" {
		return nil, ErrGUIDRequired
	}

	result, err := getJSON[scheduler.ScheduleList](ctx, r.httpClient, r.path(guid, "schedules"), params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing %s schedules: %w", r.kind, err)
	}

	return result, nil
}

// ListAllSchedules returns every schedule of the resource.
func (r *scheduledResource[T]) ListAllSchedules(ctx context.Context, guid string) iter.Seq2[scheduler.Schedule, error] {
	return aggregate(ctx, r, func(ctx context.Context, params *scheduler.QueryParams) (*scheduler.ScheduleList, error) {
		return r.ListSchedules(ctx, guid, params)
	})
}

// DeleteSchedule removes a schedule from the resource.
func (r *scheduledResource[T]) DeleteSchedule(ctx context.Context, guid, scheduleGUID string) error {
	if guid == "" || scheduleGUID == "" {
		return ErrGUIDRequired
	}

	_, err := r.httpClient.Delete(ctx, r.path(guid, "schedules", scheduleGUID))
	if err != nil {
		return fmt.Errorf("deleting %s schedule: %w", r.kind, err)
	}

	return nil
}

// ListHistories retrieves one page of the resource's execution history.
func (r *scheduledResource[T]) ListHistories(ctx context.Context, guid string, params *scheduler.QueryParams) (*scheduler.HistoryList, error) {
	if guid == "" {
		return nil, ErrGUIDRequired
	}

	result, err := getJSON[scheduler.HistoryList](ctx, r.httpClient, r.path(guid, "history"), params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing %s history: %w", r.kind, err)
	}

	return result, nil
}

// ListAllHistories returns the resource's whole execution history.
func (r *scheduledResource[T]) ListAllHistories(ctx context.Context, guid string) iter.Seq2[scheduler.History, error] {
	return aggregate(ctx, r, func(ctx context.Context, params *scheduler.QueryParams) (*scheduler.HistoryList, error) {
		return r.ListHistories(ctx, guid, params)
	})
}

// ListScheduleHistories retrieves one page of the executions triggered by one schedule.
func (r *scheduledResource[T]) ListScheduleHistories(ctx context.Context, guid, scheduleGUID string, params *scheduler.QueryParams) (*scheduler.HistoryList, error) {
	if guid == "" || scheduleGUID == "" {
		return nil, ErrGUIDRequired
	}

	path := r.path(guid, "schedules", scheduleGUID, "history")

	result, err := getJSON[scheduler.HistoryList](ctx, r.httpClient, path, params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing %s schedule history: %w", r.kind, err)
	}

	return result, nil
}

// ListAllScheduleHistories returns every execution triggered by one schedule.
func (r *scheduledResource[T]) ListAllScheduleHistories(ctx context.Context, guid, scheduleGUID string) iter.Seq2[scheduler.History, error] {
	return aggregate(ctx, r, func(ctx context.Context, params *scheduler.QueryParams) (*scheduler.HistoryList, error) {
		return r.ListScheduleHistories(ctx, guid, scheduleGUID, params)
	})
}

// WaitForExecution polls the history of the resource until the execution
// identified by historyGUID leaves the PENDING state. A deadline on ctx
// bounds the wait; without one the default execution timeout applies.
func (r *scheduledResource[T]) WaitForExecution(ctx context.Context, guid, historyGUID string) (*scheduler.History, error) {
	var (
		pollCtx context.Context
		cancel  context.CancelFunc
	)

	if _, ok := ctx.Deadline(); ok {
		pollCtx, cancel = context.WithCancel(ctx)
	} else {
		pollCtx, cancel = context.WithTimeout(ctx, r.pollTimeout)
	}
	defer cancel()

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		history, err := r.findHistory(pollCtx, guid, historyGUID)
		if err != nil && !errors.Is(err, ErrHistoryNotFound) {
			return nil, err
		}

		if history != nil && history.State != scheduler.StatePending {
			if history.State == scheduler.StateFailed {
				return history, fmt.Errorf("%w: %s", ErrExecutionFailed, history.Message)
			}

			return history, nil
		}

		select {
		case <-pollCtx.Done():
			return history, fmt.Errorf("timeout waiting for %s execution: %w", r.kind, pollCtx.Err())
		case <-ticker.C:
		}
	}
}

func (r *scheduledResource[T]) findHistory(ctx context.Context, guid, historyGUID string) (*scheduler.History, error) {
	for history, err := range r.ListAllHistories(ctx, guid) {
		if err != nil {
			return nil, err
		}

		if history.GUID == historyGUID {
			return &history, nil
		}
	}

	return nil, ErrHistoryNotFound
}

func (r *scheduledResource[T]) aggregate(ctx context.Context, list scheduler.Lister[T]) iter.Seq2[T, error] {
	return aggregate(ctx, r, list)
}

func (r *scheduledResource[T]) path(guid string, segments ...string) string {
	path := r.resourcePath + "/" + url.PathEscape(guid)
	for _, segment := range segments {
		path += "/" + url.PathEscape(segment)
	}

	return path
}

// aggregate walks every page of list with the resource's pagination options.
// The query parameters are fixed here; only the page number varies.
func aggregate[T, R any](ctx context.Context, r *scheduledResource[T], list scheduler.Lister[R]) iter.Seq2[R, error] {
	fetcher := scheduler.PageFetcherFor(list, scheduler.NewQueryParams(), r.pagination.PageSize)
	options := r.pagination

	return scheduler.Aggregate(ctx, fetcher, &options)
}

func getJSON[R any](ctx context.Context, httpClient *http.Client, path string, query url.Values) (*R, error) {
	resp, err := httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var result R

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	return &result, nil
}
