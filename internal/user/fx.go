package user

import (
	"github.com/cityville/laundromat/internal/user/repository"
	"github.com/cityville/laundromat/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
