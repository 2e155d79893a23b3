package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus observability primitives for the payment core.
type Metrics struct {
	donationsCreated *prometheus.CounterVec
	donationAmount   *prometheus.HistogramVec
	providerCalls    *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	workflowFailures *prometheus.CounterVec
}

// NewMetrics registers and returns Prometheus metrics for telemetry.
func NewMetrics() *Metrics {
	donationsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "opencollective_donations_total",
		Help: "Counts donations by provider and kind (charge or subscription).",
	}, []string{"provider", "kind"})

	donationAmount := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "opencollective_donation_amount_minor_units",
		Help:    "Donation amounts in minor currency units.",
		Buckets: prometheus.ExponentialBuckets(100, 4, 8),
	}, []string{"currency"})

	providerCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "opencollective_provider_calls_total",
		Help: "Counts outbound provider calls by provider, operation and status.",
	}, []string{"provider", "operation", "status"})

	providerLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "opencollective_provider_call_duration_seconds",
		Help:    "Latency of outbound provider calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider", "operation"})

	workflowFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "opencollective_payment_workflow_failures_total",
		Help: "Counts failed payment workflows by workflow and step.",
	}, []string{"workflow", "step"})

	prometheus.MustRegister(donationsCreated, donationAmount, providerCalls, providerLatency, workflowFailures)

	return &Metrics{
		donationsCreated: donationsCreated,
		donationAmount:   donationAmount,
		providerCalls:    providerCalls,
		providerLatency:  providerLatency,
		workflowFailures: workflowFailures,
	}
}

// RecordDonation counts a completed donation and observes its amount.
func (m *Metrics) RecordDonation(provider, kind, currency string, amount int64) {
	if m == nil {
		return
	}
	m.donationsCreated.WithLabelValues(provider, kind).Inc()
	m.donationAmount.WithLabelValues(currency).Observe(float64(amount))
}

// RecordProviderCall counts an outbound provider call and its latency.
func (m *Metrics) RecordProviderCall(provider, operation, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.providerCalls.WithLabelValues(provider, operation, status).Inc()
	m.providerLatency.WithLabelValues(provider, operation).Observe(elapsed.Seconds())
}

// RecordWorkflowFailure counts a payment workflow failure at a named step.
func (m *Metrics) RecordWorkflowFailure(workflow, step string) {
	if m == nil {
		return
	}
	m.workflowFailures.WithLabelValues(workflow, step).Inc()
}
