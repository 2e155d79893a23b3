// Package service orchestrates the payment workflows as dependency
// graphs of provider calls and local persistence steps.
package service

import (
	"math"
	"strings"

	"github.com/carlosascari/opencollective-api/internal/checkout/domain"
	"github.com/carlosascari/opencollective-api/internal/clock"
	collectivedomain "github.com/carlosascari/opencollective-api/internal/collective/domain"
	"github.com/carlosascari/opencollective-api/internal/config"
	donationdomain "github.com/carlosascari/opencollective-api/internal/donation/domain"
	memberdomain "github.com/carlosascari/opencollective-api/internal/member/domain"
	paymentmethoddomain "github.com/carlosascari/opencollective-api/internal/paymentmethod/domain"
	"github.com/carlosascari/opencollective-api/internal/providers/email"
	"github.com/carlosascari/opencollective-api/internal/providers/paypal"
	"github.com/carlosascari/opencollective-api/internal/providers/stripe"
	userdomain "github.com/carlosascari/opencollective-api/internal/user/domain"
	"github.com/carlosascari/opencollective-api/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	cfg     config.Config
	log     *zap.Logger
	metrics *telemetry.Metrics
	clock   clock.Clock

	collectives    collectivedomain.Service
	users          userdomain.Service
	members        memberdomain.Service
	paymentMethods paymentmethoddomain.Service
	donations      donationdomain.Service

	stripe   stripe.Gateway
	paypal   paypal.Gateway
	notifier email.Notifier
}

type ServiceParam struct {
	fx.In

	Cfg     config.Config
	Log     *zap.Logger
	Metrics *telemetry.Metrics
	Clock   clock.Clock

	Collectives    collectivedomain.Service
	Users          userdomain.Service
	Members        memberdomain.Service
	PaymentMethods paymentmethoddomain.Service
	Donations      donationdomain.Service

	Stripe   stripe.Gateway
	PayPal   paypal.Gateway
	Notifier email.Notifier
}

func New(p ServiceParam) domain.Service {
	return &Service{
		cfg:            p.Cfg,
		log:            p.Log.Named("checkout.service"),
		metrics:        p.Metrics,
		clock:          p.Clock,
		collectives:    p.Collectives,
		users:          p.Users,
		members:        p.Members,
		paymentMethods: p.PaymentMethods,
		donations:      p.Donations,
		stripe:         p.Stripe,
		paypal:         p.PayPal,
		notifier:       p.Notifier,
	}
}

// userResolution pairs a resolved user with whether this workflow
// created the account.
type userResolution struct {
	user    *userdomain.User
	created bool
}

// minorUnits converts a major-unit request amount to integer minor
// units. All arithmetic after validation is integral.
func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// platformFee applies the fixed platform percentage to an amount in
// minor units.
func (s *Service) platformFee(amount int64) int64 {
	return amount * s.cfg.PlatformFeePercent / 100
}

func normalizeCurrency(requested, fallback string) string {
	currency := strings.TrimSpace(requested)
	if currency == "" {
		currency = fallback
	}
	return strings.ToUpper(currency)
}
