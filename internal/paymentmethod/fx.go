package paymentmethod

import (
	"github.com/carlosascari/opencollective-api/internal/paymentmethod/repository"
	"github.com/carlosascari/opencollective-api/internal/paymentmethod/service"
	"go.uber.org/fx"
)

var Module = fx.Module("paymentmethod.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
