package scheduler

import (
	"context"
	"iter"
)

// PaginationIterator is a pull-style view over Aggregate.
// Call Close when abandoning the iterator before it is exhausted.
type PaginationIterator[T any] struct {
	next   func() (T, error, bool)
	stop   func()
	item   T
	err    error
	peeked bool
	done   bool
}

// NewPaginationIterator creates an iterator over every item of a paginated collection.
func NewPaginationIterator[T any](ctx context.Context, fetcher PageFetcher[T], opts *PaginationOptions) *PaginationIterator[T] {
	next, stop := iter.Pull2(Aggregate(ctx, fetcher, opts))

	return &PaginationIterator[T]{
		next: next,
		stop: stop,
	}
}

// HasNext reports whether Next will return an item or an error.
func (it *PaginationIterator[T]) HasNext() bool {
	if it.done {
		return false
	}

	if !it.peeked {
		item, err, ok := it.next()
		if !ok {
			it.Close()

			return false
		}

		it.item, it.err, it.peeked = item, err, true
	}

	return true
}

// Next returns the next item. After an error the iterator is exhausted.
func (it *PaginationIterator[T]) Next() (T, error) {
	if !it.HasNext() {
		var zero T

		return zero, ErrNoMoreItems
	}

	item, err := it.item, it.err

	var zero T

	it.item, it.err, it.peeked = zero, nil, false

	if err != nil {
		it.Close()
	}

	return item, err
}

// All drains the iterator.
func (it *PaginationIterator[T]) All() ([]T, error) {
	all := make([]T, 0)

	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return nil, err
		}

		all = append(all, item)
	}

	return all, nil
}

// ForEach calls fn for every item, stopping at the first error.
func (it *PaginationIterator[T]) ForEach(fn func(T) error) error {
	defer it.Close()

	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return err
		}

		err = fn(item)
		if err != nil {
			return err
		}
	}

	return nil
}

// Close releases the underlying fetches. It is safe to call more than once.
func (it *PaginationIterator[T]) Close() {
	if it.done {
		return
	}

	it.done = true
	it.stop()
}
