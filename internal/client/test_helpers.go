package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalhttp "github.com/fivetwenty-io/scheduler-client/internal/http"
	"github.com/fivetwenty-io/scheduler-client/pkg/scheduler"
)

// NewTestClient creates a client for baseURL without authentication or retries.
func NewTestClient(baseURL string, pagination scheduler.PaginationOptions) *Client {
	httpClient := internalhttp.NewClient(baseURL, nil, internalhttp.WithRetryConfig(0, time.Millisecond, time.Millisecond))

	client := &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
	}

	client.initializeResourceClients(pagination)

	return client
}

// SetPolling overrides the execution polling cadence of both resource clients.
func (c *Client) SetPolling(interval, timeout time.Duration) {
	c.calls.pollInterval, c.calls.pollTimeout = interval, timeout
	c.jobs.pollInterval, c.jobs.pollTimeout = interval, timeout
}

// TestCreateOperation represents a generic create operation test case.
type TestCreateOperation[TRequest, TResponse any] struct {
	Name          string
	Request       *TRequest
	ExpectedPath  string
	ExpectedQuery string
	StatusCode    int
	Response      interface{}
	WantErr       bool
	ErrMessage    string
}

// TestGetOperation represents a generic get operation test case.
type TestGetOperation[TResponse any] struct {
	Name         string
	GUID         string
	ExpectedPath string
	StatusCode   int
	Response     *TResponse
	WantErr      bool
	ErrMessage   string
}

// TestDeleteOperation represents a generic delete operation test case.
type TestDeleteOperation struct {
	Name         string
	GUID         string
	ExpectedPath string
	StatusCode   int
	WantErr      bool
	ErrMessage   string
}

// routeServer answers a single method and path with status and an optional
// JSON body, and fails the test on any other request.
func routeServer(t *testing.T, method, path, query string, status int, body interface{}) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, method, request.Method)
		assert.Equal(t, path, request.URL.Path)

		if method == http.MethodPost {
			assert.Equal(t, query, request.URL.RawQuery)
		}

		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(status)

		if body != nil {
			_ = json.NewEncoder(writer).Encode(body)
		}
	}))

	t.Cleanup(server.Close)

	return server
}

func checkOutcome(t *testing.T, err error, wantErr bool, errMessage string) {
	t.Helper()

	if !wantErr {
		require.NoError(t, err)

		return
	}

	require.Error(t, err)

	if errMessage != "" {
		assert.Contains(t, err.Error(), errMessage)
	}
}

// notFoundPayload is the error body the scheduler sends for an unknown GUID.
var notFoundPayload = scheduler.ResponseError{
	Description: "Resource not found",
	Errors:      []scheduler.ErrorDetail{{Resource: "guid", Messages: []string{"no such resource"}}},
}

// RunCreateTests runs a series of create operation tests.
func RunCreateTests[TRequest, TResponse any](
	t *testing.T,
	tests []TestCreateOperation[TRequest, TResponse],
	createFunc func(*Client) func(context.Context, *TRequest) (*TResponse, error),
) {
	t.Helper()

	for _, testCase := range tests {
		t.Run(testCase.Name, func(t *testing.T) {
			server := routeServer(t, http.MethodPost, testCase.ExpectedPath, testCase.ExpectedQuery, testCase.StatusCode, testCase.Response)

			result, err := createFunc(NewTestClient(server.URL, *scheduler.DefaultPaginationOptions()))(context.Background(), testCase.Request)
			checkOutcome(t, err, testCase.WantErr, testCase.ErrMessage)
			assert.Equal(t, testCase.WantErr, result == nil)
		})
	}
}

// RunGetTests runs a series of get operation tests.
func RunGetTests[TResponse any](
	t *testing.T,
	tests []TestGetOperation[TResponse],
	getFunc func(*Client) func(context.Context, string) (*TResponse, error),
) {
	t.Helper()

	for _, testCase := range tests {
		t.Run(testCase.Name, func(t *testing.T) {
			var body interface{}

			switch {
			case testCase.WantErr:
				body = notFoundPayload
			case testCase.Response != nil:
				body = testCase.Response
			}

			server := routeServer(t, http.MethodGet, testCase.ExpectedPath, "", testCase.StatusCode, body)

			result, err := getFunc(NewTestClient(server.URL, *scheduler.DefaultPaginationOptions()))(context.Background(), testCase.GUID)
			checkOutcome(t, err, testCase.WantErr, testCase.ErrMessage)
			assert.Equal(t, testCase.WantErr, result == nil)
		})
	}
}

// RunDeleteTests runs a series of delete operation tests.
func RunDeleteTests(
	t *testing.T,
	tests []TestDeleteOperation,
	deleteFunc func(*Client) func(context.Context, string) error,
) {
	t.Helper()

	for _, testCase := range tests {
		t.Run(testCase.Name, func(t *testing.T) {
			server := routeServer(t, http.MethodDelete, testCase.ExpectedPath, "", testCase.StatusCode, nil)

			err := deleteFunc(NewTestClient(server.URL, *scheduler.DefaultPaginationOptions()))(context.Background(), testCase.GUID)
			checkOutcome(t, err, testCase.WantErr, testCase.ErrMessage)
		})
	}
}

// PagedServer serves a paginated collection at a single path and records
// the query of every request it receives.
type PagedServer[T any] struct {
	*httptest.Server

	mu       sync.Mutex
	requests []map[string]string
}

// NewPagedServer starts a server returning pages[i] for page i+1.
func NewPagedServer[T any](t *testing.T, path string, pages [][]T) *PagedServer[T] {
	t.Helper()

	paged := &PagedServer[T]{}

	paged.Server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, path, request.URL.Path)
		assert.Equal(t, http.MethodGet, request.Method)

		query := map[string]string{}
		for key := range request.URL.Query() {
			query[key] = request.URL.Query().Get(key)
		}

		paged.mu.Lock()
		paged.requests = append(paged.requests, query)
		paged.mu.Unlock()

		page := 1
		if value := query["page"]; value != "" {
			parsed, err := strconv.Atoi(value)
			assert.NoError(t, err)

			page = parsed
		}

		var resources []T
		if page >= 1 && page <= len(pages) {
			resources = pages[page-1]
		}

		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(scheduler.ListResponse[T]{
			Pagination: scheduler.Pagination{TotalPages: len(pages)},
			Resources:  resources,
		})
	}))

	t.Cleanup(paged.Close)

	return paged
}

// Requests returns the queries received so far.
func (s *PagedServer[T]) Requests() []map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]map[string]string(nil), s.requests...)
}
