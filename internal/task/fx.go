package task

import (
	"github.com/cityville/laundromat/internal/task/repository"
	"github.com/cityville/laundromat/internal/task/service"
	"go.uber.org/fx"
)

var Module = fx.Module("task.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
