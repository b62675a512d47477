package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/subwavelabs/subwave/internal/migration"
	"github.com/subwavelabs/subwave/internal/observability"
	"github.com/subwavelabs/subwave/internal/server"
	"github.com/subwavelabs/subwave/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
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
