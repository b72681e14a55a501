package order

import (
	"github.com/cityville/laundromat/internal/order/repository"
	"github.com/cityville/laundromat/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
