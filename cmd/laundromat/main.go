package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/config"
	"github.com/cityville/laundromat/internal/migration"
	"github.com/cityville/laundromat/internal/observability"
	"github.com/cityville/laundromat/internal/scheduler"
	"github.com/cityville/laundromat/internal/server"
	"github.com/cityville/laundromat/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,

		server.Module,
		migration.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
