// Package metrics exposes Prometheus instrumentation for lead runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lelandsequel/CL-SEO-AUTO/internal/model"
)

// Upstream service labels.
const (
	ServiceTextSearch = "places_text_search"
	ServiceDetails    = "places_details"
	ServicePageSpeed  = "pagespeed"
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeNoResult = "no_result"
	OutcomeSkipped  = "skipped"
)

var (
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seoleads_upstream_requests_total",
			Help: "Upstream API calls by service and outcome",
		},
		[]string{"service", "outcome"},
	)

	LeadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seoleads_leads_total",
			Help: "Leads produced by category",
		},
		[]string{"category"},
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seoleads_analysis_duration_seconds",
			Help:    "Duration of page-quality analyses in seconds",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 45},
		},
	)
)

// RecordUpstream counts one upstream call.
func RecordUpstream(service, outcome string) {
	UpstreamRequestsTotal.WithLabelValues(service, outcome).Inc()
}

// RecordAnalysis observes the duration of one analysis call.
func RecordAnalysis(d time.Duration) {
	AnalysisDuration.Observe(d.Seconds())
}

// RecordLead counts a produced lead under its HOT/WARM/COLD tag.
func RecordLead(c model.Category) {
	LeadsTotal.WithLabelValues(CategoryLabel(c)).Inc()
}

// CategoryLabel reduces a category to a low-cardinality label.
func CategoryLabel(c model.Category) string {
	switch {
	case c.Is("HOT"):
		return "hot"
	case c.Is("WARM"):
		return "warm"
	case c.Is("COLD"):
		return "cold"
	default:
		return "other"
	}
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
