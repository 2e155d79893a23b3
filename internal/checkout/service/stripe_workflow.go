package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carlosascari/opencollective-api/internal/checkout/domain"
	collectivedomain "github.com/carlosascari/opencollective-api/internal/collective/domain"
	donationdomain "github.com/carlosascari/opencollective-api/internal/donation/domain"
	memberdomain "github.com/carlosascari/opencollective-api/internal/member/domain"
	paymentmethoddomain "github.com/carlosascari/opencollective-api/internal/paymentmethod/domain"
	"github.com/carlosascari/opencollective-api/internal/providers/email"
	"github.com/carlosascari/opencollective-api/internal/providers/stripe"
	userdomain "github.com/carlosascari/opencollective-api/internal/user/domain"
	"github.com/carlosascari/opencollective-api/pkg/log/ctxlogger"
	"github.com/carlosascari/opencollective-api/pkg/resolver"
	"github.com/carlosascari/opencollective-api/pkg/taskflow"
	"go.uber.org/zap"
)

const stripeWorkflowName = "stripe.donation"

const (
	stepStripeAccount     = "resolveStripeAccount"
	stepFindPaymentMethod = "findPaymentMethod"
	stepCustomer          = "resolveCustomer"
	stepPaymentMethod     = "resolvePaymentMethod"
	stepExecutePayment    = "executePayment"
	stepResolveUser       = "resolveUser"
	stepDonation          = "createDonation"
	stepTransaction       = "createTransaction"
	stepThankYou          = "sendThankYou"
	stepMembership        = "grantMembership"
)

// paymentOutcome is the executePayment step result. Exactly one of
// charge or subscription is set.
type paymentOutcome struct {
	charge       *stripe.Charge
	subscription *stripe.Subscription
	planID       string
}

// donationOutcome carries the persisted donation and, for recurring
// requests, its local subscription row.
type donationOutcome struct {
	donation     *donationdomain.Donation
	subscription *donationdomain.Subscription
}

func (s *Service) CreateStripeDonation(ctx context.Context, req domain.StripeDonationRequest) (*domain.StripeDonationResult, error) {
	req.StripeToken = strings.TrimSpace(req.StripeToken)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Interval = strings.TrimSpace(strings.ToLower(req.Interval))

	if req.StripeToken == "" {
		return nil, domain.ErrMissingStripeToken
	}
	if req.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	recurring := req.Interval != ""
	if recurring && !donationdomain.ValidInterval(req.Interval) {
		return nil, domain.ErrInvalidInterval
	}

	collective, err := s.collectives.GetBySlug(ctx, req.CollectiveSlug)
	if err != nil {
		return nil, err
	}

	currency := normalizeCurrency(req.Currency, collective.Currency)
	amount := minorUnits(req.Amount)

	g := taskflow.New(stripeWorkflowName, s.log)

	g.Add(stepStripeAccount, nil, func(ctx context.Context, _ taskflow.Results) (any, error) {
		return s.collectives.GetStripeAccount(ctx, collective.ID)
	})

	g.Add(stepFindPaymentMethod, []string{stepStripeAccount}, func(ctx context.Context, _ taskflow.Results) (any, error) {
		return s.paymentMethods.FindByToken(ctx, req.StripeToken, stripe.ProviderName)
	})

	// A known token reuses its provider customer; the provider is only
	// called for tokens never seen before.
	g.Add(stepCustomer, []string{stepStripeAccount, stepFindPaymentMethod}, func(ctx context.Context, deps taskflow.Results) (any, error) {
		if existing := taskflow.Value[*paymentmethoddomain.PaymentMethod](deps, stepFindPaymentMethod); existing != nil {
			return existing.CustomerID, nil
		}
		account := taskflow.Value[*collectivedomain.StripeAccount](deps, stepStripeAccount)
		customer, err := s.stripe.CreateCustomer(ctx, account.AccessToken, stripe.CustomerRequest{
			Token:       req.StripeToken,
			Email:       req.Email,
			Description: fmt.Sprintf("Donor for %s", collective.Slug),
		})
		if err != nil {
			return nil, err
		}
		return customer.ID, nil
	})

	g.Add(stepPaymentMethod, []string{stepCustomer, stepFindPaymentMethod}, func(ctx context.Context, deps taskflow.Results) (any, error) {
		if existing := taskflow.Value[*paymentmethoddomain.PaymentMethod](deps, stepFindPaymentMethod); existing != nil {
			return existing, nil
		}
		return s.paymentMethods.Attach(ctx, &paymentmethoddomain.PaymentMethod{
			Provider:   stripe.ProviderName,
			Token:      req.StripeToken,
			CustomerID: taskflow.Value[string](deps, stepCustomer),
		})
	})

	g.Add(stepExecutePayment, []string{stepStripeAccount, stepPaymentMethod}, func(ctx context.Context, deps taskflow.Results) (any, error) {
		account := taskflow.Value[*collectivedomain.StripeAccount](deps, stepStripeAccount)
		method := taskflow.Value[*paymentmethoddomain.PaymentMethod](deps, stepPaymentMethod)
		if recurring {
			return s.executeSubscription(ctx, account, method, collective, req.Interval, amount, currency)
		}
		return s.executeCharge(ctx, account, method, collective, amount, currency, req.Description)
	})

	// Runs alongside the charge. A failed payment can leave the user
	// row behind; find-or-create reuses it on the retry.
	g.Add(stepResolveUser, nil, func(ctx context.Context, _ taskflow.Results) (any, error) {
		user, created, err := s.users.FindOrCreateByEmail(ctx, req.Email, req.Name)
		if err != nil {
			return nil, err
		}
		return userResolution{user: user, created: created}, nil
	})

	g.Add(stepDonation, []string{stepExecutePayment, stepResolveUser}, func(ctx context.Context, deps taskflow.Results) (any, error) {
		payment := taskflow.Value[*paymentOutcome](deps, stepExecutePayment)
		res := taskflow.Value[userResolution](deps, stepResolveUser)
		return s.recordDonation(ctx, collective, res.user, payment, req, amount, currency)
	})

	g.Add(stepTransaction, []string{stepDonation, stepPaymentMethod, stepExecutePayment, stepResolveUser}, func(ctx context.Context, deps taskflow.Results) (any, error) {
		payment := taskflow.Value[*paymentOutcome](deps, stepExecutePayment)
		if payment.charge == nil {
			// recurring path; ledger entries arrive with each invoice
			return nil, nil
		}
		outcome := taskflow.Value[*donationOutcome](deps, stepDonation)
		method := taskflow.Value[*paymentmethoddomain.PaymentMethod](deps, stepPaymentMethod)
		res := taskflow.Value[userResolution](deps, stepResolveUser)
		return s.recordChargeTransaction(ctx, collective, res.user, outcome.donation, method, payment.charge, amount, currency)
	})

	g.Add(stepThankYou, []string{stepDonation, stepResolveUser}, func(ctx context.Context, deps taskflow.Results) (any, error) {
		res := taskflow.Value[userResolution](deps, stepResolveUser)
		s.sendThankYou(ctx, collective, res.user, req.Name, amount, currency)
		return nil, nil
	})

	g.Add(stepMembership, []string{stepTransaction, stepResolveUser}, func(ctx context.Context, deps taskflow.Results) (any, error) {
		res := taskflow.Value[userResolution](deps, stepResolveUser)
		return s.members.Grant(ctx, res.user.ID, collective.ID, memberdomain.RoleBacker)
	})

	results, err := g.Run(ctx)
	if err != nil {
		s.recordWorkflowFailure(ctx, stripeWorkflowName, err)
		return nil, &domain.WorkflowError{Workflow: stripeWorkflowName, Request: req, Err: err}
	}

	res := taskflow.Value[userResolution](results, stepResolveUser)
	return &domain.StripeDonationResult{
		Success:        true,
		Payer:          domain.PayerInfo{ID: res.user.ID, Email: res.user.Email},
		AccountCreated: res.created,
	}, nil
}

// executeSubscription resolves the deterministic plan for the price
// point, creating it on first use, then opens the provider
// subscription with the platform fee attached.
func (s *Service) executeSubscription(
	ctx context.Context,
	account *collectivedomain.StripeAccount,
	method *paymentmethoddomain.PaymentMethod,
	collective *collectivedomain.Collective,
	interval string,
	amount int64,
	currency string,
) (*paymentOutcome, error) {
	planID := stripe.PlanID(interval, amount, currency)

	plan, created, err := resolver.FindOrCreate(ctx,
		func(ctx context.Context) (*stripe.Plan, error) {
			return s.stripe.RetrievePlan(ctx, account.AccessToken, planID)
		},
		func(ctx context.Context) (*stripe.Plan, error) {
			return s.stripe.CreatePlan(ctx, account.AccessToken, stripe.PlanRequest{
				ID:       planID,
				Amount:   amount,
				Currency: currency,
				Interval: interval,
			})
		},
		stripe.IsAlreadyExists,
	)
	if err != nil {
		return nil, err
	}
	if created {
		s.log.Info("created provider plan",
			zap.String("plan_id", planID),
			zap.Int64("collective_id", int64(collective.ID)))
	}

	subscription, err := s.stripe.CreateSubscription(ctx, account.AccessToken, method.CustomerID, stripe.SubscriptionRequest{
		PlanID:                plan.ID,
		ApplicationFeePercent: s.cfg.PlatformFeePercent,
		Metadata: map[string]string{
			"collectiveId":    collective.ID.String(),
			"paymentMethodId": method.ID.String(),
		},
	})
	if err != nil {
		return nil, err
	}
	return &paymentOutcome{subscription: subscription, planID: plan.ID}, nil
}

func (s *Service) executeCharge(
	ctx context.Context,
	account *collectivedomain.StripeAccount,
	method *paymentmethoddomain.PaymentMethod,
	collective *collectivedomain.Collective,
	amount int64,
	currency, description string,
) (*paymentOutcome, error) {
	if description == "" {
		description = fmt.Sprintf("Donation to %s", collective.Name)
	}
	charge, err := s.stripe.CreateCharge(ctx, account.AccessToken, stripe.ChargeRequest{
		Amount:      amount,
		Currency:    currency,
		CustomerID:  method.CustomerID,
		Description: description,
		Metadata: map[string]string{
			"collectiveId":    collective.ID.String(),
			"paymentMethodId": method.ID.String(),
		},
	})
	if err != nil {
		return nil, err
	}
	return &paymentOutcome{charge: charge}, nil
}

func (s *Service) recordDonation(
	ctx context.Context,
	collective *collectivedomain.Collective,
	user *userdomain.User,
	payment *paymentOutcome,
	req domain.StripeDonationRequest,
	amount int64,
	currency string,
) (*donationOutcome, error) {
	outcome := &donationOutcome{}
	kind := "one-time"

	if payment.subscription != nil {
		kind = "subscription"
		sub := &donationdomain.Subscription{
			CollectiveID: collective.ID,
			Amount:       amount,
			Currency:     currency,
			Interval:     donationdomain.BillingInterval(req.Interval),
			Provider:     stripe.ProviderName,
			ProviderID:   payment.subscription.ID,
			Data:         payment.subscription.Raw,
		}
		if err := s.donations.RecordSubscription(ctx, sub); err != nil {
			return nil, err
		}
		outcome.subscription = sub
	}

	donation := &donationdomain.Donation{
		UserID:       user.ID,
		CollectiveID: collective.ID,
		Currency:     currency,
		Amount:       amount,
		Title:        donationTitle(req.Description, collective.Name),
	}
	if outcome.subscription != nil {
		donation.SubscriptionID = &outcome.subscription.ID
	}
	if err := s.donations.RecordDonation(ctx, donation); err != nil {
		return nil, err
	}
	outcome.donation = donation

	s.metrics.RecordDonation(stripe.ProviderName, kind, currency, amount)
	return outcome, nil
}

func (s *Service) recordChargeTransaction(
	ctx context.Context,
	collective *collectivedomain.Collective,
	user *userdomain.User,
	donation *donationdomain.Donation,
	method *paymentmethoddomain.PaymentMethod,
	charge *stripe.Charge,
	amount int64,
	currency string,
) (*donationdomain.Transaction, error) {
	fee := charge.ApplicationFeeAmount
	if fee == 0 {
		fee = s.platformFee(amount)
	}
	transaction := &donationdomain.Transaction{
		Type:            donationdomain.TransactionTypeDonation,
		Status:          donationdomain.TransactionStatusConfirmed,
		Amount:          amount,
		Currency:        currency,
		PlatformFee:     fee,
		Data:            charge.Raw,
		CollectiveID:    collective.ID,
		DonationID:      &donation.ID,
		PaymentMethodID: &method.ID,
		UserID:          &user.ID,
	}
	if err := s.donations.RecordTransaction(ctx, transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}

// sendThankYou is best-effort. A delivery failure is logged and
// swallowed so the donation never fails on a bounced message.
func (s *Service) sendThankYou(ctx context.Context, collective *collectivedomain.Collective, user *userdomain.User, name string, amount int64, currency string) {
	template := email.ThankYouTemplate(collective.Slug)
	err := s.notifier.Send(ctx, template, user.Email, map[string]any{
		"name":       name,
		"collective": collective.Name,
		"amount":     fmt.Sprintf("%.2f", float64(amount)/100),
		"currency":   currency,
	})
	if err != nil {
		s.log.Warn("thank-you notification failed",
			zap.String("template", template),
			zap.String("collective", collective.Slug),
			zap.Error(err))
	}
}

func (s *Service) recordWorkflowFailure(ctx context.Context, workflow string, err error) {
	step := ""
	var stepErr *taskflow.StepError
	if errors.As(err, &stepErr) {
		step = stepErr.Step
	}
	s.metrics.RecordWorkflowFailure(workflow, step)
	ctxlogger.WithContext(ctx, s.log).Error("payment workflow failed",
		zap.String("workflow", workflow),
		zap.String("step", step),
		zap.Error(err))
}

func donationTitle(description, collectiveName string) string {
	if description != "" {
		return description
	}
	return fmt.Sprintf("Donation to %s", collectiveName)
}
