package gapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gcloud_api_requests_total",
		Help: "The total number of REST calls issued, by service, method and response code",
	}, []string{"service", "method", "code"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gcloud_api_request_duration_seconds",
		Help:    "Round trip time of REST calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"service"})
)
