package reporting

import (
	"github.com/cityville/laundromat/internal/reporting/repository"
	"github.com/cityville/laundromat/internal/reporting/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reporting.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
