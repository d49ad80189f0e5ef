package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gshop/marketplace/internal/clock"
	"github.com/gshop/marketplace/internal/config"
	"github.com/gshop/marketplace/internal/logger"
	"github.com/gshop/marketplace/internal/migration"
	"github.com/gshop/marketplace/internal/server"
	"github.com/gshop/marketplace/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Schema and seed data
		migration.Module,

		// HTTP surface plus the domain modules it serves
		server.Module,
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
