package tracing

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"

	"github.com/smallbiznis/payrail/internal/config"
)

var Module = fx.Module("tracing",
	fx.Provide(func(cfg config.Config) Config {
		return Config{
			Enabled:          cfg.TracingEnabled,
			ServiceName:      cfg.ServiceName,
			Environment:      cfg.Environment,
			ExporterEndpoint: cfg.TracingEndpoint,
			ExporterProtocol: cfg.TracingProtocol,
			SamplingRatio:    cfg.TracingSamplingRatio,
		}
	}),
	fx.Provide(NewProvider),
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)
