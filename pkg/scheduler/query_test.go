package scheduler_test

import (
	"net/url"
	"testing"

	"github.com/fivetwenty-io/scheduler-client/pkg/scheduler"
	"github.com/stretchr/testify/assert"
)

func TestQueryParams_ToValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		params   *scheduler.QueryParams
		expected url.Values
	}{
		{
			name:     "nil params",
			params:   nil,
			expected: url.Values{},
		},
		{
			name:     "empty params",
			params:   scheduler.NewQueryParams(),
			expected: url.Values{},
		},
		{
			name:   "with pagination",
			params: scheduler.NewQueryParams().WithPage(2).WithPerPage(50),
			expected: url.Values{
				"page":     []string{"2"},
				"per_page": []string{"50"},
			},
		},
		{
			name:   "with space",
			params: scheduler.NewQueryParams().WithSpaceGUID("space-guid"),
			expected: url.Values{
				"space_guid": []string{"space-guid"},
			},
		},
		{
			name: "with filters",
			params: scheduler.NewQueryParams().
				WithFilter("state", "FAILED", "SUCCEEDED").
				WithFilter("empty"),
			expected: url.Values{
				"state": []string{"FAILED,SUCCEEDED"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.params.ToValues())
		})
	}
}

func TestQueryParams_Clone(t *testing.T) {
	t.Parallel()

	original := scheduler.NewQueryParams().WithSpaceGUID("space-guid").WithFilter("state", "FAILED")
	clone := original.Clone().WithPage(3).WithFilter("state", "PENDING")

	assert.Equal(t, 0, original.Page)
	assert.Equal(t, []string{"FAILED"}, original.Filters["state"])
	assert.Equal(t, 3, clone.Page)
	assert.Equal(t, "space-guid", clone.SpaceGUID)
	assert.Equal(t, []string{"FAILED", "PENDING"}, clone.Filters["state"])

	var nilParams *scheduler.QueryParams
	assert.NotNil(t, nilParams.Clone())
}
