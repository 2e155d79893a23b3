package collective

import (
	"github.com/carlosascari/opencollective-api/internal/collective/repository"
	"github.com/carlosascari/opencollective-api/internal/collective/service"
	"go.uber.org/fx"
)

var Module = fx.Module("collective.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
