package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/carlosascari/opencollective-api/internal/checkout"
	"github.com/carlosascari/opencollective-api/internal/clock"
	"github.com/carlosascari/opencollective-api/internal/collective"
	"github.com/carlosascari/opencollective-api/internal/config"
	"github.com/carlosascari/opencollective-api/internal/donation"
	"github.com/carlosascari/opencollective-api/internal/member"
	"github.com/carlosascari/opencollective-api/internal/migration"
	"github.com/carlosascari/opencollective-api/internal/paymentmethod"
	"github.com/carlosascari/opencollective-api/internal/providers"
	"github.com/carlosascari/opencollective-api/internal/providers/email"
	"github.com/carlosascari/opencollective-api/internal/ratelimit"
	"github.com/carlosascari/opencollective-api/internal/server"
	"github.com/carlosascari/opencollective-api/internal/user"
	"github.com/carlosascari/opencollective-api/pkg/db"
	"github.com/carlosascari/opencollective-api/pkg/log"
	"github.com/carlosascari/opencollective-api/pkg/telemetry"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		telemetry.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		collective.Module,
		user.Module,
		member.Module,
		paymentmethod.Module,
		donation.Module,
		providers.Module,
		email.Module,
		checkout.Module,
		ratelimit.Module,

		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Invoke(func(s *server.Server) {
			s.RegisterAPIRoutes()
		}),
		fx.Invoke(server.RunHTTP),
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
