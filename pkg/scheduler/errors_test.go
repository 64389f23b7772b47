package scheduler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/fivetwenty-io/scheduler-client/pkg/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *scheduler.ResponseError
		expected string
	}{
		{
			name:     "description only",
			err:      &scheduler.ResponseError{StatusCode: 404, Description: "Job not found"},
			expected: "Job not found (status: 404)",
		},
		{
			name:     "empty description falls back to status text",
			err:      &scheduler.ResponseError{StatusCode: 503},
			expected: "Service Unavailable (status: 503)",
		},
		{
			name: "with details",
			err: &scheduler.ResponseError{
				StatusCode:  422,
				Description: "Invalid request",
				Errors: []scheduler.ErrorDetail{
					{Resource: "name", Messages: []string{"can't be blank", "is too short"}},
					{Resource: "command", Messages: []string{"can't be blank"}},
				},
			},
			expected: "Invalid request (status: 422): name: can't be blank, is too short; command: can't be blank",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestParseResponseError(t *testing.T) {
	t.Parallel()

	t.Run("scheduler payload", func(t *testing.T) {
		t.Parallel()

		body := []byte(`{"description":"Bad schedule","errors":[{"resource":"expression","messages":["invalid cron"]}]}`)

		err := scheduler.ParseResponseError(http.StatusBadRequest, body)

		respErr := &scheduler.ResponseError{}
		require.ErrorAs(t, err, &respErr)
		assert.Equal(t, http.StatusBadRequest, respErr.StatusCode)
		assert.Equal(t, "Bad schedule", respErr.Description)
		assert.Equal(t, []scheduler.ErrorDetail{{Resource: "expression", Messages: []string{"invalid cron"}}}, respErr.Errors)
	})

	t.Run("empty errors list is still a scheduler payload", func(t *testing.T) {
		t.Parallel()

		err := scheduler.ParseResponseError(http.StatusConflict, []byte(`{"description":"conflict","errors":[]}`))

		respErr := &scheduler.ResponseError{}
		require.ErrorAs(t, err, &respErr)
		assert.Empty(t, respErr.Errors)
	})

	tests := []struct {
		name    string
		body    string
		payload string
	}{
		{name: "empty body", body: "", payload: ""},
		{name: "whitespace body", body: "  \n", payload: ""},
		{name: "html body", body: "<html>oops</html>", payload: "<html>oops</html>"},
		{name: "json without errors", body: `{"message":"nope"}`, payload: `{"message":"nope"}`},
		{name: "json array", body: `[1,2]`, payload: `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := scheduler.ParseResponseError(http.StatusBadGateway, []byte(tt.body))

			unknown := &scheduler.UnknownError{}
			require.ErrorAs(t, err, &unknown)
			assert.Equal(t, http.StatusBadGateway, unknown.StatusCode)
			assert.Equal(t, tt.payload, unknown.Payload)
			assert.Equal(t, "unknown scheduler error (status: 502)", err.Error())
		})
	}
}

func TestStatusHelpers(t *testing.T) {
	t.Parallel()

	notFound := fmt.Errorf("getting job: %w", &scheduler.ResponseError{StatusCode: http.StatusNotFound})
	unauthorized := &scheduler.UnknownError{StatusCode: http.StatusUnauthorized}
	forbidden := &scheduler.PageError{Page: 3, Err: &scheduler.ResponseError{StatusCode: http.StatusForbidden}}

	assert.True(t, scheduler.IsNotFound(notFound))
	assert.False(t, scheduler.IsNotFound(unauthorized))
	assert.True(t, scheduler.IsUnauthorized(unauthorized))
	assert.True(t, scheduler.IsForbidden(forbidden))
	assert.Equal(t, 0, scheduler.StatusCode(errors.New("plain")))
	assert.Equal(t, 0, scheduler.StatusCode(nil))
}

func TestPageError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := &scheduler.PageError{Page: 4, Err: cause}

	assert.Equal(t, "fetching page 4: connection reset", err.Error())
	require.ErrorIs(t, err, cause)
}
