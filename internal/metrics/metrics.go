package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Simulation outcomes.
const (
	OutcomeRecorded   = "recorded"
	OutcomeNoCarriers = "no_carriers"
	OutcomeInvalid    = "invalid"
	OutcomeFailed     = "failed"
)

// Metrics holds the collectors the simulation service reports to.
type Metrics struct {
	Simulations        *prometheus.CounterVec
	CarrierEvaluations prometheus.Counter
	SimulationDuration prometheus.Histogram
	HistoryEntries     prometheus.Gauge
	HTTPRequests       *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Simulations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logicalc_simulations_total",
				Help: "Total number of freight simulations by outcome",
			},
			[]string{"outcome"},
		),
		CarrierEvaluations: f.NewCounter(
			prometheus.CounterOpts{
				Name: "logicalc_carrier_evaluations_total",
				Help: "Total number of carrier rate evaluations",
			},
		),
		SimulationDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "logicalc_simulation_duration_seconds",
				Help:    "Duration of a simulation including history persistence",
				Buckets: prometheus.DefBuckets,
			},
		),
		HistoryEntries: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "logicalc_history_entries",
				Help: "Number of entries currently in the simulation history log",
			},
		),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logicalc_http_requests_total",
				Help: "Total number of HTTP requests by route and status",
			},
			[]string{"route", "status"},
		),
	}
}
