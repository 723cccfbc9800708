package webhook

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/payrail/internal/cache"
	"github.com/smallbiznis/payrail/internal/webhook/repository"
	"github.com/smallbiznis/payrail/internal/webhook/service"
)

var Module = fx.Module("webhook.service",
	fx.Provide(func() cache.Cache[string, struct{}] {
		return cache.NewTTLCache[string, struct{}]()
	}),
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
