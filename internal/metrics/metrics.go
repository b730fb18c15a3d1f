// Package metrics defines Prometheus metrics for the ride-sharing feed API.
//
// All metrics are registered with Registry, which is served on /metrics.
//
// Metric naming follows Prometheus conventions:
//   - rideshare_ prefix for all custom metrics
//   - _total suffix for counters
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds every metric exported by the server, plus the Go runtime
// and process collectors.
var Registry = prometheus.NewRegistry()

var (
	// CardsTotal counts records rendered as a card, by listing and variant.
	CardsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rideshare_cards_total",
			Help: "Total records dispatched to a presentation variant.",
		},
		[]string{"listing", "variant"},
	)

	// CardsSkippedTotal counts records that matched no variant and were omitted.
	CardsSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rideshare_cards_skipped_total",
			Help: "Total records that matched no presentation variant.",
		},
		[]string{"listing"},
	)

	// ReportsTotal counts report submissions by reportable kind and outcome.
	ReportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rideshare_reports_total",
			Help: "Total report submissions by reportable kind and outcome.",
		},
		[]string{"reportable", "outcome"},
	)

	// OpenReportSessions is the number of report forms currently open.
	OpenReportSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rideshare_open_report_sessions",
			Help: "Number of report sessions currently open.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		CardsTotal,
		CardsSkippedTotal,
		ReportsTotal,
		OpenReportSessions,
	)
}

// RecordCard records one dispatched record.
func RecordCard(listing, variant string) {
	CardsTotal.WithLabelValues(listing, variant).Inc()
}

// RecordCardSkipped records one record that produced no card.
func RecordCardSkipped(listing string) {
	CardsSkippedTotal.WithLabelValues(listing).Inc()
}

// RecordReport records the outcome of one report submission.
// outcome is one of "reported", "rejected" or "failed".
func RecordReport(reportable, outcome string) {
	ReportsTotal.WithLabelValues(reportable, outcome).Inc()
}

// SetOpenReportSessions records the current number of open report sessions.
func SetOpenReportSessions(n int) {
	OpenReportSessions.Set(float64(n))
}
