package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/smallbiznis/payrail/internal/config"
)

var Module = fx.Module("metrics",
	fx.Provide(func(cfg config.Config) *DisputeMetrics {
		return NewDisputeMetrics(prometheus.DefaultRegisterer, Config{
			ServiceName: cfg.ServiceName,
			Environment: cfg.Environment,
		})
	}),
	fx.Provide(func(cfg config.Config) *HTTPMetrics {
		return NewHTTPMetrics(prometheus.DefaultRegisterer, Config{
			ServiceName: cfg.ServiceName,
			Environment: cfg.Environment,
		})
	}),
)
