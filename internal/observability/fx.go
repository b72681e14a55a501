// Package observability wires logging and metrics for the application.
package observability

import (
	"github.com/cityville/laundromat/internal/config"
	"github.com/cityville/laundromat/internal/observability/logger"
	"github.com/cityville/laundromat/internal/observability/metrics"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		provideLoggerConfig,
		logger.New,
		metrics.NewHTTPMetrics,
		metrics.NewJobMetrics,
	),
)

func provideLoggerConfig(cfg config.Config) logger.Config {
	return logger.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
		Version:     cfg.AppVersion,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	}
}
