// Package migration creates the schema on startup so the service is
// usable out of the box for local and self-hosted environments.
package migration

import (
	"errors"

	collectivedomain "github.com/carlosascari/opencollective-api/internal/collective/domain"
	donationdomain "github.com/carlosascari/opencollective-api/internal/donation/domain"
	memberdomain "github.com/carlosascari/opencollective-api/internal/member/domain"
	paymentmethoddomain "github.com/carlosascari/opencollective-api/internal/paymentmethod/domain"
	userdomain "github.com/carlosascari/opencollective-api/internal/user/domain"
	"gorm.io/gorm"
)

// Models lists every persisted type in dependency order.
func Models() []any {
	return []any{
		&collectivedomain.Collective{},
		&collectivedomain.StripeAccount{},
		&collectivedomain.ConnectedAccount{},
		&userdomain.User{},
		&paymentmethoddomain.PaymentMethod{},
		&donationdomain.Subscription{},
		&donationdomain.Donation{},
		&donationdomain.Transaction{},
		&memberdomain.Member{},
	}
}

func RunMigrations(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	return conn.AutoMigrate(Models()...)
}
