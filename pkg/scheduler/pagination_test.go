package scheduler_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fivetwenty-io/scheduler-client/pkg/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errPageFailed = errors.New("page failed")

type TestResource struct {
	ID   string
	Name string
}

// mockPages serves a fixed set of pages and counts fetcher invocations.
type mockPages struct {
	mu     sync.Mutex
	pages  map[int]*scheduler.ListResponse[TestResource]
	errs   map[int]error
	delays map[int]time.Duration
	calls  []int
}

func newMockPages(totalPages int, items ...[]string) *mockPages {
	mock := &mockPages{
		pages:  make(map[int]*scheduler.ListResponse[TestResource]),
		errs:   make(map[int]error),
		delays: make(map[int]time.Duration),
	}

	total := 0
	for _, page := range items {
		total += len(page)
	}

	for index, page := range items {
		resources := make([]TestResource, 0, len(page))
		for _, id := range page {
			resources = append(resources, TestResource{ID: id, Name: "Resource " + id})
		}

		mock.pages[index+1] = &scheduler.ListResponse[TestResource]{
			Pagination: scheduler.Pagination{TotalResults: total, TotalPages: totalPages},
			Resources:  resources,
		}
	}

	return mock
}

func (m *mockPages) fetch(ctx context.Context, page int) (*scheduler.ListResponse[TestResource], error) {
	m.mu.Lock()
	m.calls = append(m.calls, page)
	delay := m.delays[page]
	err := m.errs[page]
	resp := m.pages[page]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}

	if resp == nil {
		return &scheduler.ListResponse[TestResource]{}, nil
	}

	return resp, nil
}

func (m *mockPages) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.calls)
}

func collect(t *testing.T, seq func(func(TestResource, error) bool)) ([]string, error) {
	t.Helper()

	var (
		ids []string
		err error
	)

	for item, itemErr := range seq {
		if itemErr != nil {
			err = itemErr

			break
		}

		ids = append(ids, item.ID)
	}

	return ids, err
}

func TestAggregate_SinglePage(t *testing.T) {
	t.Parallel()

	for _, totalPages := range []int{1, 0} {
		mock := newMockPages(totalPages, []string{"1", "2", "3"})

		ids, err := collect(t, scheduler.Aggregate(context.Background(), mock.fetch, nil))
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2", "3"}, ids)
		assert.Equal(t, 1, mock.callCount())
	}
}

func TestAggregate_MultiPageOrdering(t *testing.T) {
	t.Parallel()

	mock := newMockPages(3, []string{"a", "b"}, []string{"c", "d"}, []string{"e"})
	// Page 2 resolves well after page 3.
	mock.delays[2] = 50 * time.Millisecond

	ids, err := collect(t, scheduler.Aggregate(context.Background(), mock.fetch, &scheduler.PaginationOptions{Concurrency: 2}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids)
	assert.ElementsMatch(t, []int{1, 2, 3}, mock.calls)
	assert.Equal(t, 1, mock.calls[0])
}

func TestAggregate_EmptyCollection(t *testing.T) {
	t.Parallel()

	mock := newMockPages(1, []string{})

	ids, err := collect(t, scheduler.Aggregate(context.Background(), mock.fetch, nil))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestAggregate_EmptyMiddlePage(t *testing.T) {
	t.Parallel()

	mock := newMockPages(3, []string{"a"}, []string{}, []string{"b"})

	ids, err := collect(t, scheduler.Aggregate(context.Background(), mock.fetch, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestAggregate_FirstPageFailure(t *testing.T) {
	t.Parallel()

	mock := newMockPages(3, []string{"a"}, []string{"b"}, []string{"c"})
	mock.errs[1] = errPageFailed

	ids, err := collect(t, scheduler.Aggregate(context.Background(), mock.fetch, nil))
	require.ErrorIs(t, err, errPageFailed)
	assert.Empty(t, ids)
	assert.Equal(t, 1, mock.callCount())

	pageErr := &scheduler.PageError{}
	require.ErrorAs(t, err, &pageErr)
	assert.Equal(t, 1, pageErr.Page)
}

func TestAggregate_LaterPageFailure(t *testing.T) {
	t.Parallel()

	mock := newMockPages(2, []string{"a"}, []string{"b"})
	mock.errs[2] = errPageFailed

	var (
		ids    []string
		errs   []error
		yields int
	)

	for item, err := range scheduler.Aggregate(context.Background(), mock.fetch, nil) {
		yields++

		if err != nil {
			errs = append(errs, err)

			continue
		}

		ids = append(ids, item.ID)
	}

	assert.Equal(t, []string{"a"}, ids)
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], errPageFailed)
	assert.Equal(t, 2, yields)

	pageErr := &scheduler.PageError{}
	require.ErrorAs(t, errs[0], &pageErr)
	assert.Equal(t, 2, pageErr.Page)
}

func TestAggregate_FailureNeverSurfacesLaterPages(t *testing.T) {
	t.Parallel()

	mock := newMockPages(4, []string{"p1"}, []string{"p2"}, []string{"p3"}, []string{"p4"})
	mock.delays[2] = 30 * time.Millisecond
	mock.errs[3] = errPageFailed

	ids, err := collect(t, scheduler.Aggregate(context.Background(), mock.fetch, &scheduler.PaginationOptions{Concurrency: 3}))
	require.ErrorIs(t, err, errPageFailed)
	assert.NotContains(t, ids, "p3")
	assert.NotContains(t, ids, "p4")
	assert.Equal(t, "p1", ids[0])
}

func TestAggregate_IndependentRuns(t *testing.T) {
	t.Parallel()

	first := newMockPages(3, []string{"1", "2"}, []string{"3", "4"}, []string{"5"})
	second := newMockPages(3, []string{"1", "2"}, []string{"3", "4"}, []string{"5"})

	idsFirst, err := collect(t, scheduler.Aggregate(context.Background(), first.fetch, nil))
	require.NoError(t, err)

	idsSecond, err := collect(t, scheduler.Aggregate(context.Background(), second.fetch, nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, idsFirst)
	assert.Equal(t, idsFirst, idsSecond)
}

func TestAggregate_CallsScenario(t *testing.T) {
	t.Parallel()

	fetch := func(_ context.Context, page int) (*scheduler.CallList, error) {
		calls := map[int][]scheduler.Call{
			1: {{GUID: "call-1"}, {GUID: "call-2"}},
			2: {{GUID: "call-3"}},
		}

		return &scheduler.CallList{
			Pagination: scheduler.Pagination{TotalPages: 2, TotalResults: 3},
			Resources:  calls[page],
		}, nil
	}

	var guids []string

	for call, err := range scheduler.Aggregate(context.Background(), fetch, nil) {
		require.NoError(t, err)

		guids = append(guids, call.GUID)
	}

	assert.Equal(t, []string{"call-1", "call-2", "call-3"}, guids)
}

func TestAggregate_MalformedTotalPages(t *testing.T) {
	t.Parallel()

	mock := newMockPages(-4, []string{"a"}, []string{"b"})

	ids, err := collect(t, scheduler.Aggregate(context.Background(), mock.fetch, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
	assert.Equal(t, 1, mock.callCount())
}

func TestAggregate_NilFetcher(t *testing.T) {
	t.Parallel()

	_, err := collect(t, scheduler.Aggregate[TestResource](context.Background(), nil, nil))
	require.ErrorIs(t, err, scheduler.ErrFetcherRequired)
}

func TestAggregate_NilPage(t *testing.T) {
	t.Parallel()

	fetch := func(context.Context, int) (*scheduler.ListResponse[TestResource], error) {
		return nil, nil
	}

	_, err := collect(t, scheduler.Aggregate(context.Background(), fetch, nil))
	require.ErrorIs(t, err, scheduler.ErrNilPage)
}

func TestAggregate_StopOnFirstPage(t *testing.T) {
	t.Parallel()

	mock := newMockPages(5, []string{"a", "b"}, []string{"c"}, []string{"d"}, []string{"e"}, []string{"f"})

	for item, err := range scheduler.Aggregate(context.Background(), mock.fetch, nil) {
		require.NoError(t, err)
		assert.Equal(t, "a", item.ID)

		break
	}

	assert.Equal(t, 1, mock.callCount())
}

func TestAggregate_StopCancelsRemainingFetches(t *testing.T) {
	t.Parallel()

	mock := newMockPages(10,
		[]string{"1"}, []string{"2"}, []string{"3"}, []string{"4"}, []string{"5"},
		[]string{"6"}, []string{"7"}, []string{"8"}, []string{"9"}, []string{"10"},
	)
	for page := 3; page <= 10; page++ {
		mock.delays[page] = time.Hour
	}

	done := make(chan struct{})

	go func() {
		defer close(done)

		for item, err := range scheduler.Aggregate(context.Background(), mock.fetch, &scheduler.PaginationOptions{Concurrency: 2}) {
			assert.NoError(t, err)

			if item.ID == "2" {
				break
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("aggregation did not stop after the consumer broke out")
	}

	calls := mock.callCount()
	assert.LessOrEqual(t, calls, 4)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, mock.callCount())
}

func TestAggregate_ContextCancelled(t *testing.T) {
	t.Parallel()

	mock := newMockPages(3, []string{"a"}, []string{"b"}, []string{"c"})
	mock.delays[2] = time.Hour

	ctx, cancel := context.WithCancel(context.Background())

	var (
		ids []string
		err error
	)

	for item, itemErr := range scheduler.Aggregate(ctx, mock.fetch, nil) {
		if itemErr != nil {
			err = itemErr

			break
		}

		ids = append(ids, item.ID)
		cancel()
	}

	assert.Equal(t, []string{"a"}, ids)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAggregate_BoundedConcurrency(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32

	fetch := func(_ context.Context, page int) (*scheduler.ListResponse[TestResource], error) {
		current := inFlight.Add(1)
		defer inFlight.Add(-1)

		for {
			old := peak.Load()
			if current <= old || peak.CompareAndSwap(old, current) {
				break
			}
		}

		time.Sleep(5 * time.Millisecond)

		return &scheduler.ListResponse[TestResource]{
			Pagination: scheduler.Pagination{TotalPages: 12},
			Resources:  []TestResource{{ID: string(rune('a' + page - 1))}},
		}, nil
	}

	ids, err := collect(t, scheduler.Aggregate(context.Background(), fetch, &scheduler.PaginationOptions{Concurrency: 3}))
	require.NoError(t, err)
	assert.Len(t, ids, 12)
	assert.Equal(t, "abcdefghijkl", concat(ids))
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestAggregate_HugeTotalPages(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	fetch := func(_ context.Context, page int) (*scheduler.ListResponse[TestResource], error) {
		calls.Add(1)

		return &scheduler.ListResponse[TestResource]{
			Pagination: scheduler.Pagination{TotalPages: 1 << 62},
			Resources:  []TestResource{{ID: strconv.Itoa(page)}},
		}, nil
	}

	var ids []string

	for item, err := range scheduler.Aggregate(context.Background(), fetch, &scheduler.PaginationOptions{Concurrency: 4}) {
		require.NoError(t, err)

		ids = append(ids, item.ID)
		if len(ids) == 3 {
			break
		}
	}

	assert.Equal(t, []string{"1", "2", "3"}, ids)
	assert.LessOrEqual(t, calls.Load(), int32(3+4))
}

func TestAggregate_ReadAheadIsBounded(t *testing.T) {
	t.Parallel()

	const concurrency = 2

	var calls atomic.Int32

	fetch := func(_ context.Context, page int) (*scheduler.ListResponse[TestResource], error) {
		calls.Add(1)

		return &scheduler.ListResponse[TestResource]{
			Pagination: scheduler.Pagination{TotalPages: 500},
			Resources:  []TestResource{{ID: strconv.Itoa(page)}},
		}, nil
	}

	seen := 0

	for item, err := range scheduler.Aggregate(context.Background(), fetch, &scheduler.PaginationOptions{Concurrency: concurrency}) {
		require.NoError(t, err)

		seen++
		page, convErr := strconv.Atoi(item.ID)
		require.NoError(t, convErr)

		if page == 2 || page == 40 {
			// A slow consumer must not let fetching run ahead.
			time.Sleep(50 * time.Millisecond)
			assert.LessOrEqual(t, int(calls.Load()), page+concurrency, "fetched too far ahead of page %d", page)
		}
	}

	assert.Equal(t, 500, seen)
	assert.Equal(t, int32(500), calls.Load())
}

func TestAggregate_FetcherPanic(t *testing.T) {
	t.Parallel()

	for _, failing := range []int{1, 3} {
		t.Run(strconv.Itoa(failing), func(t *testing.T) {
			t.Parallel()

			fetch := func(_ context.Context, page int) (*scheduler.ListResponse[TestResource], error) {
				if page == failing {
					panic("decoder exploded")
				}

				return &scheduler.ListResponse[TestResource]{
					Pagination: scheduler.Pagination{TotalPages: 4},
					Resources:  []TestResource{{ID: strconv.Itoa(page)}},
				}, nil
			}

			ids, err := collect(t, scheduler.Aggregate(context.Background(), fetch, nil))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "decoder exploded")
			assert.LessOrEqual(t, len(ids), failing-1)

			pageErr := &scheduler.PageError{}
			require.ErrorAs(t, err, &pageErr)
			assert.Equal(t, failing, pageErr.Page)
		})
	}
}

func concat(ids []string) string {
	out := ""
	for _, id := range ids {
		out += id
	}

	return out
}

func TestFetchAllPages(t *testing.T) {
	t.Parallel()

	mock := newMockPages(3, []string{"1", "2"}, []string{"3", "4"}, []string{"5"})

	resources, err := scheduler.FetchAllPages(context.Background(), mock.fetch, nil)
	require.NoError(t, err)
	assert.Len(t, resources, 5)
	assert.Equal(t, "5", resources[4].ID)
}

func TestFetchAllPages_WithMaxPages(t *testing.T) {
	t.Parallel()

	mock := newMockPages(3, []string{"1", "2"}, []string{"3", "4"}, []string{"5"})

	options := &scheduler.PaginationOptions{
		PageSize: 2,
		MaxPages: 2,
	}

	resources, err := scheduler.FetchAllPages(context.Background(), mock.fetch, options)
	require.NoError(t, err)
	assert.Len(t, resources, 4) // Only first 2 pages
	assert.NotContains(t, mock.calls, 3)
}

func TestFetchAllPages_Error(t *testing.T) {
	t.Parallel()

	mock := newMockPages(2, []string{"1"}, []string{"2"})
	mock.errs[2] = errPageFailed

	resources, err := scheduler.FetchAllPages(context.Background(), mock.fetch, nil)
	require.ErrorIs(t, err, errPageFailed)
	assert.Nil(t, resources)
}

func TestStreamPages(t *testing.T) {
	t.Parallel()

	mock := newMockPages(2, []string{"1", "2"}, []string{"3"})

	var (
		allResources []TestResource
		pages        []int
	)

	for result := range scheduler.StreamPages(context.Background(), mock.fetch, nil) {
		require.NoError(t, result.Err)

		allResources = append(allResources, result.Items...)
		pages = append(pages, result.Page)
	}

	assert.Equal(t, []int{1, 2}, pages)
	assert.Len(t, allResources, 3)
}

func TestStreamPages_Error(t *testing.T) {
	t.Parallel()

	mock := newMockPages(2, []string{"1"}, []string{"2"})
	mock.errs[2] = errPageFailed

	var results []scheduler.PageResult[TestResource]
	for result := range scheduler.StreamPages(context.Background(), mock.fetch, nil) {
		results = append(results, result)
	}

	require.Len(t, results, 2)
	require.NoError(t, results[0].Err)
	require.ErrorIs(t, results[1].Err, errPageFailed)
}

func TestPageFetcherFor(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		seen []*scheduler.QueryParams
	)

	list := func(_ context.Context, params *scheduler.QueryParams) (*scheduler.ListResponse[TestResource], error) {
		mu.Lock()
		seen = append(seen, params)
		mu.Unlock()

		return &scheduler.ListResponse[TestResource]{
			Pagination: scheduler.Pagination{TotalPages: 2},
			Resources:  []TestResource{{ID: params.ToValues().Get("page")}},
		}, nil
	}

	base := scheduler.NewQueryParams().WithSpaceGUID("space-guid")
	fetcher := scheduler.PageFetcherFor(list, base, 25)

	resources, err := scheduler.FetchAllPages(context.Background(), fetcher, nil)
	require.NoError(t, err)
	assert.Equal(t, []TestResource{{ID: "1"}, {ID: "2"}}, resources)

	require.Len(t, seen, 2)

	for _, params := range seen {
		assert.Equal(t, "space-guid", params.SpaceGUID)
		assert.Equal(t, 25, params.PerPage)
	}

	assert.Equal(t, 0, base.Page)
	assert.Equal(t, 0, base.PerPage)
}
