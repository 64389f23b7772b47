package scheduler

import (
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// QueryParams represents query parameters for scheduler list requests.
type QueryParams struct {
	Page      int
	PerPage   int
	SpaceGUID string
	Filters   map[string][]string
}

// NewQueryParams creates empty query parameters.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Filters: make(map[string][]string),
	}
}

// WithPage sets the page number.
func (q *QueryParams) WithPage(page int) *QueryParams {
	q.Page = page

	return q
}

// WithPerPage sets the page size.
func (q *QueryParams) WithPerPage(perPage int) *QueryParams {
	q.PerPage = perPage

	return q
}

// WithSpaceGUID restricts a listing to a space.
func (q *QueryParams) WithSpaceGUID(spaceGUID string) *QueryParams {
	q.SpaceGUID = spaceGUID

	return q
}

// WithFilter adds a filter value.
func (q *QueryParams) WithFilter(key string, values ...string) *QueryParams {
	if q.Filters == nil {
		q.Filters = make(map[string][]string)
	}

	q.Filters[key] = append(q.Filters[key], values...)

	return q
}

// Clone returns a deep copy. Cloning nil yields empty parameters.
func (q *QueryParams) Clone() *QueryParams {
	if q == nil {
		return NewQueryParams()
	}

	clone := *q
	clone.Filters = make(map[string][]string, len(q.Filters))

	for key, values := range q.Filters {
		clone.Filters[key] = slices.Clone(values)
	}

	return &clone
}

// ToValues converts the parameters to url.Values.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}
	if q == nil {
		return values
	}

	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}

	if q.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(q.PerPage))
	}

	if q.SpaceGUID != "" {
		values.Set("space_guid", q.SpaceGUID)
	}

	for _, key := range slices.Sorted(maps.Keys(q.Filters)) {
		if len(q.Filters[key]) > 0 {
			values.Set(key, strings.Join(q.Filters[key], ","))
		}
	}

	return values
}
