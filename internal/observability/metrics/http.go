package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics captures low-cardinality HTTP server metrics. Endpoints are
// labeled by route template, never by raw path.
type HTTPMetrics struct {
	requestDuration *prometheus.HistogramVec
	inFlight        *prometheus.GaugeVec
}

func NewHTTPMetrics(registerer prometheus.Registerer, cfg Config) *HTTPMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "payrail"
	}
	constLabels := prometheus.Labels{"service": serviceName}

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "payrail_http_request_duration_seconds",
			Help:        "HTTP request duration by route and status.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
	inFlight := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "payrail_http_in_flight_requests",
			Help:        "In-flight HTTP requests by route.",
			ConstLabels: constLabels,
		},
		[]string{"endpoint"},
	)

	registerer.MustRegister(requestDuration, inFlight)

	return &HTTPMetrics{
		requestDuration: requestDuration,
		inFlight:        inFlight,
	}
}

// GinMiddleware records request duration and in-flight gauges.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		endpoint := normalizeEndpoint(c.FullPath())
		m.inFlight.WithLabelValues(endpoint).Inc()
		start := time.Now()
		c.Next()
		m.inFlight.WithLabelValues(endpoint).Dec()

		m.requestDuration.
			WithLabelValues(endpoint, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "unknown"
	}
	return endpoint
}
