package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// Link represents a single pagination link.
type Link struct {
	Href string `json:"href" yaml:"href"`
}

// Pagination represents pagination information.
type Pagination struct {
	TotalResults int   `json:"total_results"      yaml:"total_results"`
	TotalPages   int   `json:"total_pages"        yaml:"total_pages"`
	First        Link  `json:"first"              yaml:"first"`
	Last         Link  `json:"last"               yaml:"last"`
	Next         *Link `json:"next,omitempty"     yaml:"next,omitempty"`
	Previous     *Link `json:"previous,omitempty" yaml:"previous,omitempty"`
}

// ListResponse represents one page of a paginated list response.
type ListResponse[T any] struct {
	Pagination Pagination `json:"pagination" yaml:"pagination"`
	Resources  []T        `json:"resources"  yaml:"resources"`
}

// ExpressionType identifies how a schedule expression is interpreted.
type ExpressionType string

const (
	// ExpressionTypeCron schedules with a cron expression.
	ExpressionTypeCron ExpressionType = "cron_expression"
	// ExpressionTypeExecute schedules a single execution.
	ExpressionTypeExecute ExpressionType = "execute"
)

// ParseExpressionType parses an expression type case-insensitively.
func ParseExpressionType(value string) (ExpressionType, error) {
	switch ExpressionType(strings.ToLower(value)) {
	case ExpressionTypeCron:
		return ExpressionTypeCron, nil
	case ExpressionTypeExecute:
		return ExpressionTypeExecute, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownExpressionType, value)
	}
}

// Execution states reported by the scheduler.
const (
	StatePending   = "PENDING"
	StateSucceeded = "SUCCEEDED"
	StateFailed    = "FAILED"
)

// Call is an HTTP endpoint the scheduler invokes on a schedule.
type Call struct {
	GUID       string    `json:"guid"                 yaml:"guid"`
	Name       string    `json:"name"                 yaml:"name"`
	URL        string    `json:"url"                  yaml:"url"`
	AuthHeader string    `json:"auth_header"          yaml:"auth_header"`
	AppGUID    string    `json:"app_guid,omitempty"   yaml:"app_guid,omitempty"`
	SpaceGUID  string    `json:"space_guid,omitempty" yaml:"space_guid,omitempty"`
	CreatedAt  time.Time `json:"created_at"           yaml:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"           yaml:"updated_at"`
}

// Job is a command the scheduler runs as a task of an application.
type Job struct {
	GUID      string    `json:"guid"                 yaml:"guid"`
	Name      string    `json:"name"                 yaml:"name"`
	Command   string    `json:"command"              yaml:"command"`
	AppGUID   string    `json:"app_guid,omitempty"   yaml:"app_guid,omitempty"`
	SpaceGUID string    `json:"space_guid,omitempty" yaml:"space_guid,omitempty"`
	State     string    `json:"state,omitempty"      yaml:"state,omitempty"`
	CreatedAt time.Time `json:"created_at"           yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at"           yaml:"updated_at"`
}

// Schedule binds a call or job to an expression.
type Schedule struct {
	GUID           string         `json:"guid"               yaml:"guid"`
	Enabled        bool           `json:"enabled"            yaml:"enabled"`
	Expression     string         `json:"expression"         yaml:"expression"`
	ExpressionType ExpressionType `json:"expression_type"    yaml:"expression_type"`
	CallGUID       string         `json:"call_guid,omitempty" yaml:"call_guid,omitempty"`
	JobGUID        string         `json:"job_guid,omitempty"  yaml:"job_guid,omitempty"`
	CreatedAt      time.Time      `json:"created_at"         yaml:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"         yaml:"updated_at"`
}

// History records a single execution of a call or job.
type History struct {
	GUID               string     `json:"guid"                           yaml:"guid"`
	CallGUID           string     `json:"call_guid,omitempty"            yaml:"call_guid,omitempty"`
	JobGUID            string     `json:"job_guid,omitempty"             yaml:"job_guid,omitempty"`
	ScheduleGUID       string     `json:"schedule_guid,omitempty"        yaml:"schedule_guid,omitempty"`
	TaskGUID           string     `json:"task_guid,omitempty"            yaml:"task_guid,omitempty"`
	State              string     `json:"state"                          yaml:"state"`
	Message            string     `json:"message,omitempty"              yaml:"message,omitempty"`
	ScheduledTime      *time.Time `json:"scheduled_time,omitempty"       yaml:"scheduled_time,omitempty"`
	ExecutionStartTime *time.Time `json:"execution_start_time,omitempty" yaml:"execution_start_time,omitempty"`
	ExecutionEndTime   *time.Time `json:"execution_end_time,omitempty"   yaml:"execution_end_time,omitempty"`
}

// CallCreate is the request to create a call.
type CallCreate struct {
	AppGUID    string `json:"-"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	AuthHeader string `json:"auth_header"`
}

// Validate checks the required fields of the request.
func (r *CallCreate) Validate() error {
	switch {
	case r.AppGUID == "":
		return fmt.Errorf("%w: app guid", ErrMissingField)
	case r.Name == "":
		return fmt.Errorf("%w: name", ErrMissingField)
	case r.URL == "":
		return fmt.Errorf("%w: url", ErrMissingField)
	case r.AuthHeader == "":
		return fmt.Errorf("%w: auth header", ErrMissingField)
	}

	return nil
}

// JobCreate is the request to create a job.
type JobCreate struct {
	AppGUID string `json:"-"`
	Name    string `json:"name"`
	Command string `json:"command"`
}

// Validate checks the required fields of the request.
func (r *JobCreate) Validate() error {
	switch {
	case r.AppGUID == "":
		return fmt.Errorf("%w: app guid", ErrMissingField)
	case r.Name == "":
		return fmt.Errorf("%w: name", ErrMissingField)
	case r.Command == "":
		return fmt.Errorf("%w: command", ErrMissingField)
	}

	return nil
}

// ScheduleCreate is the request to schedule a call or job.
type ScheduleCreate struct {
	Enabled        bool           `json:"enabled"`
	Expression     string         `json:"expression"`
	ExpressionType ExpressionType `json:"expression_type"`
}

// Validate checks the required fields of the request.
func (r *ScheduleCreate) Validate() error {
	if r.Expression == "" {
		return fmt.Errorf("%w: expression", ErrMissingField)
	}

	_, err := ParseExpressionType(string(r.ExpressionType))

	return err
}

// CallList represents a paginated list of Call resources.
type CallList = ListResponse[Call]

// JobList represents a paginated list of Job resources.
type JobList = ListResponse[Job]

// ScheduleList represents a paginated list of Schedule resources.
type ScheduleList = ListResponse[Schedule]

// HistoryList represents a paginated list of History resources.
type HistoryList = ListResponse[History]
