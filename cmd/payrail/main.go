package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/smallbiznis/payrail/internal/clock"
	"github.com/smallbiznis/payrail/internal/config"
	"github.com/smallbiznis/payrail/internal/dispute"
	"github.com/smallbiznis/payrail/internal/migration"
	"github.com/smallbiznis/payrail/internal/observability/logger"
	"github.com/smallbiznis/payrail/internal/observability/metrics"
	"github.com/smallbiznis/payrail/internal/observability/tracing"
	"github.com/smallbiznis/payrail/internal/record"
	"github.com/smallbiznis/payrail/internal/server"
	"github.com/smallbiznis/payrail/internal/webhook"
	"github.com/smallbiznis/payrail/pkg/db"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		tracing.Module,
		clock.Module,
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		db.Module,
		fx.Invoke(func(conn *gorm.DB) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return migration.RunMigrations(sqlDB)
		}),
		metrics.Module,
		dispute.Module,
		record.Module,
		webhook.Module,
		server.Module,
	)
	app.Run()
}
