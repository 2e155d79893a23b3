package donation

import (
	"github.com/carlosascari/opencollective-api/internal/donation/repository"
	"github.com/carlosascari/opencollective-api/internal/donation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("donation.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
