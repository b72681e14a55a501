package invoice

import (
	"github.com/cityville/laundromat/internal/invoice/repository"
	"github.com/cityville/laundromat/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
