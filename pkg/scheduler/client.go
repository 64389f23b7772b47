package scheduler

import (
	"context"
	"iter"
	"time"
)

// ScheduledResourceClient is the surface shared by calls and jobs.
type ScheduledResourceClient[T any] interface {
	Get(ctx context.Context, guid string) (*T, error)
	Delete(ctx context.Context, guid string) error
	Execute(ctx context.Context, guid string) (*History, error)

	List(ctx context.Context, spaceGUID string, params *QueryParams) (*ListResponse[T], error)
	ListAll(ctx context.Context, spaceGUID string) iter.Seq2[T, error]

	Schedule(ctx context.Context, guid string, request *ScheduleCreate) (*Schedule, error)
	ListSchedules(ctx context.Context, guid string, params *QueryParams) (*ScheduleList, error)
	ListAllSchedules(ctx context.Context, guid string) iter.Seq2[Schedule, error]
	DeleteSchedule(ctx context.Context, guid, scheduleGUID string) error

	ListHistories(ctx context.Context, guid string, params *QueryParams) (*HistoryList, error)
	ListAllHistories(ctx context.Context, guid string) iter.Seq2[History, error]
	ListScheduleHistories(ctx context.Context, guid, scheduleGUID string, params *QueryParams) (*HistoryList, error)
	ListAllScheduleHistories(ctx context.Context, guid, scheduleGUID string) iter.Seq2[History, error]

	// WaitForExecution polls the history until the execution returned by
	// Execute is no longer PENDING.
	WaitForExecution(ctx context.Context, guid, historyGUID string) (*History, error)
}

// CallsClient manages scheduled HTTP calls.
type CallsClient interface {
	ScheduledResourceClient[Call]
	Create(ctx context.Context, request *CallCreate) (*Call, error)
}

// JobsClient manages scheduled jobs.
type JobsClient interface {
	ScheduledResourceClient[Job]
	Create(ctx context.Context, request *JobCreate) (*Job, error)
}

// Client is the entry point to the Scheduler API.
type Client interface {
	Calls() CallsClient
	Jobs() JobsClient
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a scheduler.Client.
//
// # Authentication precedence
//
//  1. AccessToken alone: used as a static Bearer token.
//  2. AccessToken with RefreshToken, client or user credentials: the token is
//     used until it expires, then a new one is obtained through OAuth2.
//  3. ClientID/ClientSecret: OAuth2 client_credentials grant.
//  4. Username/Password: OAuth2 password grant with the "cf" client.
//  5. No credentials: requests are sent without authentication.
//
// # Token URL discovery
//
// When a grant is needed and TokenURL is empty, schedulerclient.New reads the
// Cloud Foundry API root at APIEndpoint ("/" → links.uaa or links.login) and
// uses "<uaa>/oauth/token".
type Config struct {
	// Endpoint: base URL of the scheduler API (e.g., "https://scheduler.sys.example.com").
	Endpoint string
	// APIEndpoint: Cloud Foundry API URL, only used for token URL discovery.
	APIEndpoint string

	AccessToken  string
	RefreshToken string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	TokenURL     string

	// HTTPTimeout: per-attempt timeout of the underlying HTTP client.
	HTTPTimeout time.Duration
	// RetryMax: maximum retries for 429, 5xx and connection errors.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// RateLimit: client-side requests per second. Zero disables limiting.
	RateLimit float64
	// PageConcurrency: pages fetched in parallel by the ListAll operations.
	PageConcurrency int
	// PageSize: per_page used by the ListAll operations.
	PageSize int

	Debug     bool
	Logger    Logger
	UserAgent string
	// SkipTLSVerify is honored during UAA discovery only, and only when
	// SCHEDULER_DEV_MODE is "true" or "1".
	SkipTLSVerify bool
}
