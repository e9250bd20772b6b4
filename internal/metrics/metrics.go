package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Auth outcomes
const (
	OutcomeSuccess           = "success"
	OutcomeDuplicate         = "duplicate"
	OutcomeNotFound          = "not_found"
	OutcomeInvalidCredential = "invalid_credential"
	OutcomeMalformed         = "malformed"
	OutcomeError             = "error"
)

// Auth Metrics
var (
	// SignupsTotal tracks signup attempts by outcome
	SignupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_signups_total",
			Help: "Total signup attempts by outcome",
		},
		[]string{"outcome"},
	)

	// LoginsTotal tracks login attempts by outcome
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_logins_total",
			Help: "Total login attempts by outcome",
		},
		[]string{"outcome"},
	)

	// TokenRejectionsTotal tracks bearer tokens rejected by the auth middleware
	TokenRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_token_rejections_total",
			Help: "Total bearer tokens rejected by reason",
		},
		[]string{"reason"},
	)
)

// HTTP Metrics
var (
	// HTTPRequestDuration tracks request latency in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folio_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route", "status"},
	)
)
