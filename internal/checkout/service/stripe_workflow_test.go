package service

import (
	"context"
	"errors"
	"testing"

	checkoutdomain "github.com/carlosascari/opencollective-api/internal/checkout/domain"
	collectivedomain "github.com/carlosascari/opencollective-api/internal/collective/domain"
	donationdomain "github.com/carlosascari/opencollective-api/internal/donation/domain"
	memberdomain "github.com/carlosascari/opencollective-api/internal/member/domain"
	paymentmethoddomain "github.com/carlosascari/opencollective-api/internal/paymentmethod/domain"
	"github.com/carlosascari/opencollective-api/internal/providers/stripe"
	userdomain "github.com/carlosascari/opencollective-api/internal/user/domain"
	"github.com/carlosascari/opencollective-api/pkg/taskflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oneTimeRequest() checkoutdomain.StripeDonationRequest {
	return checkoutdomain.StripeDonationRequest{
		CollectiveSlug: "testcollective",
		StripeToken:    "tok_visa",
		Amount:         10,
		Email:          "donor@example.com",
		Name:           "Dana Donor",
	}
}

func TestCreateStripeDonation_OneTime(t *testing.T) {
	h := newHarness(t)

	result, err := h.svc.CreateStripeDonation(context.Background(), oneTimeRequest())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "donor@example.com", result.Payer.Email)
	assert.True(t, result.AccountCreated)

	require.Len(t, h.stripe.charges, 1)
	charge := h.stripe.charges[0]
	assert.Equal(t, int64(1000), charge.Amount)
	assert.Equal(t, "USD", charge.Currency)
	assert.Equal(t, "cus_test", charge.CustomerID)

	var donation donationdomain.Donation
	require.NoError(t, h.db.First(&donation).Error)
	assert.Equal(t, int64(1000), donation.Amount)
	assert.Equal(t, h.collective.ID, donation.CollectiveID)
	assert.Nil(t, donation.SubscriptionID)

	var transaction donationdomain.Transaction
	require.NoError(t, h.db.First(&transaction).Error)
	assert.Equal(t, donationdomain.TransactionStatusConfirmed, transaction.Status)
	assert.Equal(t, int64(1000), transaction.Amount)
	// fee falls back to the platform percentage when the provider
	// reports none
	assert.Equal(t, int64(50), transaction.PlatformFee)
	require.NotNil(t, transaction.UserID)
	assert.Equal(t, result.Payer.ID, *transaction.UserID)

	assert.EqualValues(t, 1, h.count(t, &memberdomain.Member{}, "role = ?", memberdomain.RoleBacker))

	require.Len(t, h.notifier.sent, 1)
	assert.Equal(t, "donor@example.com", h.notifier.sent[0].to)
	assert.Equal(t, "10.00", h.notifier.sent[0].data["amount"])
}

func TestCreateStripeDonation_ProviderFeeWins(t *testing.T) {
	h := newHarness(t)
	h.stripe.chargeFee = 123

	_, err := h.svc.CreateStripeDonation(context.Background(), oneTimeRequest())
	require.NoError(t, err)

	var transaction donationdomain.Transaction
	require.NoError(t, h.db.First(&transaction).Error)
	assert.Equal(t, int64(123), transaction.PlatformFee)
}

func TestCreateStripeDonation_TokenReuseSkipsCustomerCreate(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.db.Create(&paymentmethoddomain.PaymentMethod{
		ID:         h.node.Generate(),
		Provider:   stripe.ProviderName,
		Token:      "tok_visa",
		CustomerID: "cus_known",
	}).Error)

	_, err := h.svc.CreateStripeDonation(context.Background(), oneTimeRequest())
	require.NoError(t, err)

	assert.Zero(t, h.stripe.customerCalls)
	require.Len(t, h.stripe.charges, 1)
	assert.Equal(t, "cus_known", h.stripe.charges[0].CustomerID)
	assert.EqualValues(t, 1, h.count(t, &paymentmethoddomain.PaymentMethod{}, "token = ?", "tok_visa"))
}

func TestCreateStripeDonation_Subscription(t *testing.T) {
	h := newHarness(t)

	req := oneTimeRequest()
	req.Interval = "month"

	result, err := h.svc.CreateStripeDonation(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.Success)

	assert.Equal(t, 1, h.stripe.planCreates)
	require.Len(t, h.stripe.subscriptions, 1)
	assert.Equal(t, "month-1000-usd", h.stripe.subscriptions[0].PlanID)
	assert.Equal(t, int64(5), h.stripe.subscriptions[0].ApplicationFeePercent)

	var subscription donationdomain.Subscription
	require.NoError(t, h.db.First(&subscription).Error)
	assert.Equal(t, "sub_test", subscription.ProviderID)
	assert.False(t, subscription.IsActive)

	var donation donationdomain.Donation
	require.NoError(t, h.db.First(&donation).Error)
	require.NotNil(t, donation.SubscriptionID)
	assert.Equal(t, subscription.ID, *donation.SubscriptionID)

	// the first invoice settles provider-side; no ledger entry yet
	assert.EqualValues(t, 0, h.count(t, &donationdomain.Transaction{}, "1 = 1"))
	assert.EqualValues(t, 1, h.count(t, &memberdomain.Member{}, "role = ?", memberdomain.RoleBacker))
	assert.Zero(t, h.stripe.charges)
}

func TestCreateStripeDonation_ExistingPlanReused(t *testing.T) {
	h := newHarness(t)
	h.stripe.plans["month-1000-usd"] = &stripe.Plan{ID: "month-1000-usd", Amount: 1000, Currency: "usd", Interval: "month"}

	req := oneTimeRequest()
	req.Interval = "month"

	_, err := h.svc.CreateStripeDonation(context.Background(), req)
	require.NoError(t, err)
	assert.Zero(t, h.stripe.planCreates)
}

func TestCreateStripeDonation_Validation(t *testing.T) {
	h := newHarness(t)

	req := oneTimeRequest()
	req.StripeToken = ""
	_, err := h.svc.CreateStripeDonation(context.Background(), req)
	assert.ErrorIs(t, err, checkoutdomain.ErrMissingStripeToken)

	req = oneTimeRequest()
	req.Amount = 0
	_, err = h.svc.CreateStripeDonation(context.Background(), req)
	assert.ErrorIs(t, err, checkoutdomain.ErrInvalidAmount)

	req = oneTimeRequest()
	req.Interval = "week"
	_, err = h.svc.CreateStripeDonation(context.Background(), req)
	assert.ErrorIs(t, err, checkoutdomain.ErrInvalidInterval)

	// nothing ran
	assert.Zero(t, h.stripe.customerCalls)
	assert.EqualValues(t, 0, h.count(t, &donationdomain.Donation{}, "1 = 1"))
}

func TestCreateStripeDonation_UnknownCollective(t *testing.T) {
	h := newHarness(t)

	req := oneTimeRequest()
	req.CollectiveSlug = "nope"
	_, err := h.svc.CreateStripeDonation(context.Background(), req)
	assert.ErrorIs(t, err, collectivedomain.ErrCollectiveNotFound)
}

func TestCreateStripeDonation_LiveKeyOutsideProduction(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.db.Model(&collectivedomain.StripeAccount{}).
		Where("collective_id = ?", h.collective.ID).
		Update("access_token", "sk_live_abc").Error)

	_, err := h.svc.CreateStripeDonation(context.Background(), oneTimeRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, collectivedomain.ErrLiveKeyOutsideProduction)

	var workflowErr *checkoutdomain.WorkflowError
	require.ErrorAs(t, err, &workflowErr)
	assert.Equal(t, "stripe.donation", workflowErr.Workflow)

	assert.EqualValues(t, 0, h.count(t, &donationdomain.Donation{}, "1 = 1"))
}

func TestCreateStripeDonation_ChargeFailureAbortsWorkflow(t *testing.T) {
	h := newHarness(t)
	h.stripe.chargeErr = &stripe.APIError{Status: 402, Code: "card_declined", Message: "card declined"}

	_, err := h.svc.CreateStripeDonation(context.Background(), oneTimeRequest())
	require.Error(t, err)

	var stepErr *taskflow.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, stepExecutePayment, stepErr.Step)

	var apiErr *stripe.APIError
	assert.ErrorAs(t, err, &apiErr)

	assert.EqualValues(t, 0, h.count(t, &donationdomain.Transaction{}, "1 = 1"))
	assert.EqualValues(t, 0, h.count(t, &memberdomain.Member{}, "1 = 1"))
	assert.Empty(t, h.notifier.sent)

	// user resolution ran alongside the declined charge; the retry
	// reuses the row instead of minting a second account
	assert.EqualValues(t, 1, h.count(t, &userdomain.User{}, "email = ?", "donor@example.com"))

	h.stripe.chargeErr = nil
	result, err := h.svc.CreateStripeDonation(context.Background(), oneTimeRequest())
	require.NoError(t, err)
	assert.False(t, result.AccountCreated)
	assert.EqualValues(t, 1, h.count(t, &userdomain.User{}, "email = ?", "donor@example.com"))
}

func TestCreateStripeDonation_NotificationFailureIsSwallowed(t *testing.T) {
	h := newHarness(t)
	h.notifier.err = errors.New("smtp down")

	result, err := h.svc.CreateStripeDonation(context.Background(), oneTimeRequest())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.EqualValues(t, 1, h.count(t, &donationdomain.Transaction{}, "1 = 1"))
}

func TestCreateStripeDonation_MembershipIdempotent(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.CreateStripeDonation(context.Background(), oneTimeRequest())
	require.NoError(t, err)
	result, err := h.svc.CreateStripeDonation(context.Background(), oneTimeRequest())
	require.NoError(t, err)

	// second donation reuses the account and the membership
	assert.False(t, result.AccountCreated)
	assert.EqualValues(t, 1, h.count(t, &memberdomain.Member{}, "1 = 1"))
	assert.EqualValues(t, 2, h.count(t, &donationdomain.Donation{}, "1 = 1"))
}
