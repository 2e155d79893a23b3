// Package providers groups the external gateway clients.
package providers

import (
	"github.com/carlosascari/opencollective-api/internal/providers/paypal"
	"github.com/carlosascari/opencollective-api/internal/providers/stripe"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	fx.Provide(stripe.NewClient),
	fx.Provide(paypal.NewClient),
)
