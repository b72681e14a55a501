package catalog

import (
	"github.com/cityville/laundromat/internal/catalog/domain"
	"github.com/cityville/laundromat/internal/catalog/repository"
	"github.com/cityville/laundromat/internal/catalog/service"
	orderdomain "github.com/cityville/laundromat/internal/order/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(
		service.New,
		func(s *service.Service) domain.CatalogService { return s },
		func(s *service.Service) orderdomain.Pricer { return s },
	),
)
