package scheduler

import (
	"context"
	"iter"

	"github.com/fivetwenty-io/scheduler-client/internal/constants"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
)

// PageFetcher retrieves a single page of a collection. Pages are numbered from 1.
// It may be called concurrently for different pages.
type PageFetcher[T any] func(ctx context.Context, page int) (*ListResponse[T], error)

// Lister lists one page of a collection for the given query parameters.
type Lister[T any] func(ctx context.Context, params *QueryParams) (*ListResponse[T], error)

// PaginationOptions controls how the pages of a collection are requested.
type PaginationOptions struct {
	// Concurrency bounds the number of pages after the first that are in flight at once.
	Concurrency int
	// MaxPages caps the highest page requested. Zero means every page reported by the server.
	MaxPages int
	// PageSize is sent as per_page by PageFetcherFor. Zero leaves the server default.
	PageSize int
}

// DefaultPaginationOptions returns default pagination options.
func DefaultPaginationOptions() *PaginationOptions {
	return &PaginationOptions{
		Concurrency: constants.DefaultPageConcurrency,
	}
}

func (o *PaginationOptions) normalized() PaginationOptions {
	options := PaginationOptions{Concurrency: constants.DefaultPageConcurrency}
	if o != nil {
		options = *o
	}

	if options.Concurrency <= 0 {
		options.Concurrency = constants.DefaultPageConcurrency
	}

	return options
}

// PageResult carries one page of items, or the error that ended a stream.
type PageResult[T any] struct {
	Page  int
	Items []T
	Err   error
}

// PageFetcherFor adapts a Lister into a PageFetcher. The returned fetcher
// varies only the page number; every other parameter is fixed at creation.
func PageFetcherFor[T any](list Lister[T], params *QueryParams, pageSize int) PageFetcher[T] {
	base := params.Clone()
	if pageSize > 0 && base.PerPage == 0 {
		base.PerPage = pageSize
	}

	return func(ctx context.Context, page int) (*ListResponse[T], error) {
		return list(ctx, base.Clone().WithPage(page))
	}
}

// Aggregate returns every item of a paginated collection as one sequence,
// ordered by page and then by position within the page.
//
// Page 1 is fetched first and its total_pages decides how many more pages are
// requested; a missing or invalid count means a single page. Pages 2..N are
// fetched concurrently but always emitted in page order. A failed fetch ends
// the sequence with a single (zero, err) pair after the items of the pages
// that precede it. Breaking out of the loop cancels in-flight fetches and no
// new fetch starts afterwards. Each range over the sequence walks the
// collection again.
func Aggregate[T any](ctx context.Context, fetcher PageFetcher[T], opts *PaginationOptions) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		err := walkPages(ctx, fetcher, opts, func(_ int, items []T) bool {
			for _, item := range items {
				if !yield(item, nil) {
					return false
				}
			}

			return true
		})
		if err != nil {
			var zero T

			yield(zero, err)
		}
	}
}

// FetchAllPages collects every item of a paginated collection.
func FetchAllPages[T any](ctx context.Context, fetcher PageFetcher[T], opts *PaginationOptions) ([]T, error) {
	all := make([]T, 0)

	err := walkPages(ctx, fetcher, opts, func(_ int, items []T) bool {
		all = append(all, items...)

		return true
	})
	if err != nil {
		return nil, err
	}

	return all, nil
}

// StreamPages delivers whole pages in page order on the returned channel. The
// channel is closed after the last page, or after a result carrying the error
// that ended the stream. Consumers that stop reading early must cancel ctx.
func StreamPages[T any](ctx context.Context, fetcher PageFetcher[T], opts *PaginationOptions) <-chan PageResult[T] {
	results := make(chan PageResult[T])

	go func() {
		defer close(results)

		err := walkPages(ctx, fetcher, opts, func(page int, items []T) bool {
			select {
			case results <- PageResult[T]{Page: page, Items: items}:
				return true
			case <-ctx.Done():
				return false
			}
		})
		if err != nil {
			select {
			case results <- PageResult[T]{Err: err}:
			case <-ctx.Done():
			}
		}
	}()

	return results
}

// walkPages drives the page fetches and hands each page to emit in page order.
// It stops without error when emit returns false.
func walkPages[T any](ctx context.Context, fetcher PageFetcher[T], opts *PaginationOptions, emit func(page int, items []T) bool) error {
	if fetcher == nil {
		return ErrFetcherRequired
	}

	options := opts.normalized()

	first, err := fetchPage(ctx, fetcher, 1)
	if err != nil {
		return err
	}

	last := lastPage(first.Pagination.TotalPages, options.MaxPages)

	if !emit(1, first.Resources) || last <= 1 {
		return nil
	}

	return fetchRemaining(ctx, fetcher, last, options.Concurrency, emit)
}

// lastPage clamps the reported page count; anything below 1 is a single page.
func lastPage(totalPages, maxPages int) int {
	last := max(totalPages, 1)

	if maxPages > 0 && last > maxPages {
		last = maxPages
	}

	return last
}

// fetchPage calls fetcher once and reports errors, nil pages and panics as
// a PageError.
func fetchPage[T any](ctx context.Context, fetcher PageFetcher[T], page int) (*ListResponse[T], error) {
	var (
		catcher panics.Catcher
		resp    *ListResponse[T]
		err     error
	)

	catcher.Try(func() {
		resp, err = fetcher(ctx, page)
	})

	switch recovered := catcher.Recovered(); {
	case recovered != nil:
		return nil, &PageError{Page: page, Err: recovered.AsError()}
	case err != nil:
		return nil, &PageError{Page: page, Err: err}
	case resp == nil:
		return nil, &PageError{Page: page, Err: ErrNilPage}
	}

	return resp, nil
}

type pageSlot[T any] struct {
	page  int
	done  chan struct{}
	items []T
	err   error
}

// fetchRemaining fetches pages 2..last and emits them in order. At most
// concurrency pages are requested ahead of the page being emitted, so a
// consumer that stops pulling also stops the fetching.
func fetchRemaining[T any](
	parent context.Context,
	fetcher PageFetcher[T],
	last, concurrency int,
	emit func(page int, items []T) bool,
) error {
	ctx, cancel := context.WithCancelCause(parent)
	workers := pool.New().WithMaxGoroutines(concurrency)

	defer func() {
		cancel(nil)
		workers.Wait()
	}()

	window := make([]*pageSlot[T], 0, concurrency)
	next := 2

	for page := 2; page <= last; page++ {
		for next <= last && len(window) < concurrency && ctx.Err() == nil {
			slot := &pageSlot[T]{page: next, done: make(chan struct{})}
			window = append(window, slot)
			next++

			workers.Go(func() {
				defer close(slot.done)

				if ctx.Err() != nil {
					slot.err = context.Cause(ctx)

					return
				}

				resp, err := fetchPage(ctx, fetcher, slot.page)
				if err != nil {
					slot.err = err
					// First failure wins; pending pages see it as the cause.
					cancel(err)

					return
				}

				slot.items = resp.Resources
			})
		}

		if len(window) == 0 {
			return context.Cause(ctx)
		}

		slot := window[0]
		window[0] = nil
		window = window[1:]

		select {
		case <-slot.done:
		case <-ctx.Done():
			select {
			case <-slot.done:
			default:
				return context.Cause(ctx)
			}
		}

		if slot.err != nil {
			if ctx.Err() != nil {
				return context.Cause(ctx)
			}

			return slot.err
		}

		if !emit(page, slot.items) {
			return nil
		}
	}

	return nil
}
