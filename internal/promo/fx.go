package promo

import (
	promodomain "github.com/subwavelabs/subwave/internal/promo/domain"
	"github.com/subwavelabs/subwave/internal/promo/repository"
	"github.com/subwavelabs/subwave/internal/promo/service"
	"go.uber.org/fx"
)

var Module = fx.Module("promo.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func(s promodomain.Service) promodomain.Resolver { return s }),
)
