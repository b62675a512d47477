package catalog

import (
	catalogdomain "github.com/subwavelabs/subwave/internal/catalog/domain"
	"github.com/subwavelabs/subwave/internal/catalog/repository"
	"github.com/subwavelabs/subwave/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func(s catalogdomain.Service) catalogdomain.Lookup { return s }),
)
