package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fivetwenty-io/scheduler-client/pkg/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStop = errors.New("stop")

func TestPaginationIterator_HasNext(t *testing.T) {
	t.Parallel()

	mock := newMockPages(2, []string{"1", "2"}, []string{"3"})

	iterator := scheduler.NewPaginationIterator(context.Background(), mock.fetch, nil)
	defer iterator.Close()

	// Should have next before any fetch
	assert.True(t, iterator.HasNext())

	item1, err := iterator.Next()
	require.NoError(t, err)
	assert.Equal(t, "1", item1.ID)

	// HasNext does not consume
	assert.True(t, iterator.HasNext())
	assert.True(t, iterator.HasNext())

	item2, err := iterator.Next()
	require.NoError(t, err)
	assert.Equal(t, "2", item2.ID)

	// Page 2
	assert.True(t, iterator.HasNext())

	item3, err := iterator.Next()
	require.NoError(t, err)
	assert.Equal(t, "3", item3.ID)

	assert.False(t, iterator.HasNext())

	_, err = iterator.Next()
	require.ErrorIs(t, err, scheduler.ErrNoMoreItems)
}

func TestPaginationIterator_All(t *testing.T) {
	t.Parallel()

	mock := newMockPages(3, []string{"1", "2"}, []string{"3", "4"}, []string{"5"})

	iterator := scheduler.NewPaginationIterator(context.Background(), mock.fetch, nil)

	all, err := iterator.All()
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.False(t, iterator.HasNext())
}

func TestPaginationIterator_Error(t *testing.T) {
	t.Parallel()

	mock := newMockPages(2, []string{"1"}, []string{"2"})
	mock.errs[2] = errPageFailed

	iterator := scheduler.NewPaginationIterator(context.Background(), mock.fetch, nil)

	item, err := iterator.Next()
	require.NoError(t, err)
	assert.Equal(t, "1", item.ID)

	_, err = iterator.Next()
	require.ErrorIs(t, err, errPageFailed)

	// The iterator is exhausted after an error.
	assert.False(t, iterator.HasNext())
}

func TestPaginationIterator_ForEach(t *testing.T) {
	t.Parallel()

	mock := newMockPages(2, []string{"1", "2"}, []string{"3"})

	var ids []string

	err := scheduler.NewPaginationIterator(context.Background(), mock.fetch, nil).ForEach(func(item TestResource) error {
		ids = append(ids, item.ID)

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}

func TestPaginationIterator_ForEachStops(t *testing.T) {
	t.Parallel()

	mock := newMockPages(3, []string{"1"}, []string{"2"}, []string{"3"})
	mock.delays[3] = time.Hour

	err := scheduler.NewPaginationIterator(context.Background(), mock.fetch, nil).ForEach(func(item TestResource) error {
		if item.ID == "2" {
			return errStop
		}

		return nil
	})
	require.ErrorIs(t, err, errStop)
}

func TestPaginationIterator_CloseEarly(t *testing.T) {
	t.Parallel()

	mock := newMockPages(4, []string{"1"}, []string{"2"}, []string{"3"}, []string{"4"})
	for page := 2; page <= 4; page++ {
		mock.delays[page] = time.Hour
	}

	iterator := scheduler.NewPaginationIterator(context.Background(), mock.fetch, nil)

	item, err := iterator.Next()
	require.NoError(t, err)
	assert.Equal(t, "1", item.ID)

	done := make(chan struct{})

	go func() {
		iterator.Close()
		iterator.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not release in-flight fetches")
	}

	assert.False(t, iterator.HasNext())
}
