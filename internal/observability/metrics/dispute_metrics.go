package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Config carries the constant labels stamped on every metric.
type Config struct {
	ServiceName string
	Environment string
}

// DisputeMetrics counts dispute webhook outcomes. Instances are injected,
// never global, so tests can assert on isolated registries.
type DisputeMetrics struct {
	validationFailures prometheus.Counter
	webhooksProcessed  *prometheus.CounterVec
}

func NewDisputeMetrics(registerer prometheus.Registerer, cfg Config) *DisputeMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "payrail"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	validationFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "payrail_dispute_webhook_validation_failures_total",
		Help:        "Dispute webhooks rejected for regressing the lifecycle.",
		ConstLabels: constLabels,
	})

	webhooksProcessed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "payrail_webhooks_processed_total",
			Help:        "Webhook deliveries processed by outcome.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // applied | duplicate | discarded | failed
	)

	registerer.MustRegister(validationFailures, webhooksProcessed)

	return &DisputeMetrics{
		validationFailures: validationFailures,
		webhooksProcessed:  webhooksProcessed,
	}
}

// IncValidationFailure records one rejected dispute transition.
func (m *DisputeMetrics) IncValidationFailure() {
	if m == nil {
		return
	}
	m.validationFailures.Inc()
}

// IncWebhookProcessed records one processed delivery by outcome.
func (m *DisputeMetrics) IncWebhookProcessed(result string) {
	if m == nil {
		return
	}
	m.webhooksProcessed.WithLabelValues(result).Inc()
}
