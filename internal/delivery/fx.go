package delivery

import (
	"github.com/cityville/laundromat/internal/delivery/repository"
	"github.com/cityville/laundromat/internal/delivery/service"
	"go.uber.org/fx"
)

var Module = fx.Module("delivery.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
