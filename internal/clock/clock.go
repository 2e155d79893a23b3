package clock

import (
	"time"

	"go.uber.org/fx"
)

// Module provides the system clock via Fx.
var Module = fx.Provide(NewSystemClock)

// Clock abstracts time for services that stamp activation and start times.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}
