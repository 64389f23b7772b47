// Package scheduler provides types, interfaces, and helpers for working with
// the Cloud Foundry Scheduler API.
//
// # Overview
//
// The package defines the domain types (Call, Job, Schedule, History), the
// client interfaces (CallsClient, JobsClient) and the pagination helpers that
// turn a paginated listing into a single stream of items. A concrete client is
// built by the schedulerclient package.
//
//	cli, err := schedulerclient.New(ctx, &scheduler.Config{
//	  Endpoint:    "https://scheduler.sys.example.com",
//	  APIEndpoint: "https://api.sys.example.com",
//	  Username:    "admin",
//	  Password:    "secret",
//	})
//	if err != nil { log.Fatal(err) }
//
//	for job, err := range cli.Jobs().ListAll(ctx, spaceGUID) {
//	  if err != nil { log.Fatal(err) }
//	  fmt.Println(job.Name)
//	}
//
// # Pagination
//
// Any page-at-a-time listing can be aggregated by supplying a PageFetcher:
//
//	fetch := func(ctx context.Context, page int) (*scheduler.HistoryList, error) {
//	  return cli.Jobs().ListHistories(ctx, jobGUID, scheduler.NewQueryParams().WithPage(page))
//	}
//	histories, err := scheduler.FetchAllPages(ctx, fetch, nil)
//
// Aggregate, FetchAllPages, StreamPages and PaginationIterator all share the
// same ordering: page 1 first, then pages 2..total_pages in ascending order,
// regardless of the order in which concurrent page requests complete.
//
// # Errors
//
// Error responses are mapped to ResponseError when the body is a scheduler
// error payload and to UnknownError otherwise. IsNotFound, IsUnauthorized and
// IsForbidden branch on common cases.
package scheduler
