package member

import (
	"github.com/carlosascari/opencollective-api/internal/member/repository"
	"github.com/carlosascari/opencollective-api/internal/member/service"
	"go.uber.org/fx"
)

var Module = fx.Module("member.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
