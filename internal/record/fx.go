package record

import (
	"go.uber.org/fx"

	disputedomain "github.com/smallbiznis/payrail/internal/dispute/domain"
	"github.com/smallbiznis/payrail/internal/record/domain"
	"github.com/smallbiznis/payrail/internal/record/repository"
)

var Module = fx.Module("record",
	fx.Provide(repository.Provide),
	fx.Provide(func(v *disputedomain.Validator) *domain.Builder {
		return domain.NewBuilder(v)
	}),
)
