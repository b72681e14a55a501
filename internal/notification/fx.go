package notification

import (
	"github.com/cityville/laundromat/internal/notification/repository"
	"github.com/cityville/laundromat/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
