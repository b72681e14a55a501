package auth

import (
	"github.com/cityville/laundromat/internal/auth/password"
	"github.com/cityville/laundromat/internal/auth/repository"
	"github.com/cityville/laundromat/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(password.NewHasher),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
