package resilience

import "github.com/prometheus/client_golang/prometheus"

// Breaker telemetry. One series per guarded band source, labelled with the
// breaker's configured target (for example "tax-bands").
var (
	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Subsystem: "band_source",
			Name:      "breaker_state",
			Help:      "Band source breaker state: 0=closed, 1=open, 2=half_open.",
		},
		[]string{"target"},
	)
	BreakerTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: "band_source",
			Name:      "breaker_transitions_total",
			Help:      "Band source breaker state transitions.",
		},
		[]string{"target", "from", "to"},
	)
	BreakerOpenedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: "band_source",
			Name:      "breaker_opened_total",
			Help:      "Times a band source breaker opened after hitting its failure ratio.",
		},
		[]string{"target"},
	)
)

func init() {
	prometheus.MustRegister(BreakerState, BreakerTransitions, BreakerOpenedTotal)
}
