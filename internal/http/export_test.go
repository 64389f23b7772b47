package http

import "github.com/prometheus/client_golang/prometheus"

func RetriesCounter(method string) prometheus.Counter {
	return retriesTotal.WithLabelValues(method)
}
