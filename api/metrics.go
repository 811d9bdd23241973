// SPDX-License-Identifier: MIT

package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidora_api_requests_total",
		Help: "Outbound API calls by endpoint and outcome",
	}, []string{
		"endpoint", // ws_asset, ws_program, ...
		"outcome",  // success|failure|malformed|unavailable|http_*
	})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vidora_api_request_duration_seconds",
		Help:    "Outbound API call latency by endpoint",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)

func observeRequest(endpoint, outcome string) {
	requestsTotal.WithLabelValues(endpoint, outcome).Inc()
}

func observeDuration(endpoint string, d time.Duration) {
	requestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}
