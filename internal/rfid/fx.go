package rfid

import (
	"github.com/cityville/laundromat/internal/rfid/repository"
	"github.com/cityville/laundromat/internal/rfid/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rfid.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
