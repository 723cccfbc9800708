package dispute

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/payrail/internal/dispute/domain"
	"github.com/smallbiznis/payrail/internal/observability/metrics"
)

var Module = fx.Module("dispute",
	fx.Provide(func(m *metrics.DisputeMetrics) *domain.Validator {
		return domain.NewValidator(m)
	}),
)
