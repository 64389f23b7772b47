package constants

import "errors"

// Configuration errors.
var (
	ErrNoSchedulerEndpoint = errors.New("no scheduler endpoint configured, use 'scheduler config set scheduler <url>' or --scheduler")
	ErrNoAPIEndpoint       = errors.New("no Cloud Foundry API endpoint configured, use --api")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrInvalidOutputFormat = errors.New("output format must be table, json or yaml")
	ErrInvalidNumber       = errors.New("value must be a positive integer")
)

// Authentication errors.
var (
	ErrUsernameRequired = errors.New("username is required")
)

// Validation errors.
var (
	ErrInvalidEnabledFlag = errors.New("enabled flag must be 'true' or 'false'")
	ErrSpaceRequired      = errors.New("space GUID is required (use --space or 'scheduler config set space_guid')")
	ErrAppGUIDRequired    = errors.New("--app flag is required")
)
