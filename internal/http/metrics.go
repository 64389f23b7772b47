package http

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request metrics, registered with the default Prometheus registry:
//   - scheduler_client_requests_total{method, status}
//   - scheduler_client_request_duration_seconds{method}
//   - scheduler_client_retries_total{method}
//   - scheduler_client_token_refreshes_total{result}
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_client_requests_total",
		Help: "Total scheduler API requests by method and status",
	}, []string{"method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scheduler_client_request_duration_seconds",
		Help:    "Scheduler API request duration in seconds by method, retries included",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"method"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_client_retries_total",
		Help: "Total number of retried scheduler API requests by method",
	}, []string{"method"})

	tokenRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_client_token_refreshes_total",
		Help: "Token refreshes triggered by 401 responses, by result",
	}, []string{"result"})
)

func observeRequest(method string, status int, started time.Time) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}

	requestsTotal.WithLabelValues(method, label).Inc()
	requestDuration.WithLabelValues(method).Observe(time.Since(started).Seconds())
}
