package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for API root discovery.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Polling.
const (
	// DefaultPollInterval is the interval between execution history polls.
	DefaultPollInterval = 2 * time.Second

	// DefaultExecutionTimeout bounds how long an execution is waited for.
	DefaultExecutionTimeout = 5 * time.Minute
)

// Pagination.
const (
	// DefaultPageConcurrency bounds the pages fetched in parallel after the first.
	DefaultPageConcurrency = 4

	// DefaultPerPage is the page size the CLI requests.
	DefaultPerPage = 50

	// MaxPerPage is the largest page size the scheduler accepts.
	MaxPerPage = 100
)

// Authentication.
const (
	// TokenExpirationBuffer is the buffer time before token expiration.
	TokenExpirationBuffer = 30 * time.Second

	// DefaultCFClientID is the public client used for password grants.
	DefaultCFClientID = "cf"

	// TokenPath is appended to the UAA URL to obtain tokens.
	TokenPath = "/oauth/token"
)

// Content types and headers.
const (
	ContentTypeJSON = "application/json"

	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"
	HeaderUserAgent     = "User-Agent"
)

// Output formats.
const (
	// FormatTable for table output format.
	FormatTable = "table"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2
)

// Display.
const (
	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// CommandDisplayLength is the default length for displaying commands.
	CommandDisplayLength = 50

	// BooleanTrue string representation.
	BooleanTrue = "true"
)
