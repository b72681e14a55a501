package settings

import (
	"github.com/cityville/laundromat/internal/settings/repository"
	"github.com/cityville/laundromat/internal/settings/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settings.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
