package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/carlosascari/opencollective-api/internal/checkout/domain"
	collectivedomain "github.com/carlosascari/opencollective-api/internal/collective/domain"
	donationdomain "github.com/carlosascari/opencollective-api/internal/donation/domain"
	memberdomain "github.com/carlosascari/opencollective-api/internal/member/domain"
	"github.com/carlosascari/opencollective-api/internal/providers/paypal"
	"github.com/carlosascari/opencollective-api/pkg/log/ctxlogger"
	"github.com/carlosascari/opencollective-api/pkg/taskflow"
	"go.uber.org/zap"
)

const (
	paypalInitiateWorkflowName = "paypal.initiate"
	paypalExecuteWorkflowName  = "paypal.execute"
)

const (
	stepConnectedAccount = "resolveConnectedAccount"
	stepProvisional      = "createProvisionalRecords"
	stepBillingPlan      = "createBillingPlan"
	stepActivatePlan     = "activateBillingPlan"
	stepAgreement        = "createBillingAgreement"
	stepAttachAgreement  = "attachAgreement"

	stepExecuteAgreement     = "executeAgreement"
	stepActivateSubscription = "activateSubscription"
	stepRestoreTransaction   = "restoreTransaction"
)

// agreementStartOffset pushes the first billing cycle past the approval
// round trip so the provider accepts the start date.
const agreementStartOffset = time.Minute

// provisionalPair is the createProvisionalRecords step result.
type provisionalPair struct {
	transaction  *donationdomain.Transaction
	subscription *donationdomain.Subscription
}

func (s *Service) CreatePayPalSubscription(ctx context.Context, req domain.PayPalInitiateRequest) (*domain.PayPalInitiateResult, error) {
	req.Interval = strings.TrimSpace(strings.ToLower(req.Interval))

	if req.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if !donationdomain.ValidInterval(req.Interval) {
		return nil, domain.ErrInvalidInterval
	}

	collective, err := s.collectives.GetBySlug(ctx, req.CollectiveSlug)
	if err != nil {
		return nil, err
	}

	currency := normalizeCurrency(req.Currency, collective.Currency)
	amount := minorUnits(req.Amount)

	g := taskflow.New(paypalInitiateWorkflowName, s.log)

	g.Add(stepConnectedAccount, nil, func(ctx context.Context, _ taskflow.Results) (any, error) {
		return s.collectives.GetConnectedAccount(ctx, collective.ID, paypal.ProviderName)
	})

	// Local records exist before any provider round trip. The
	// transaction stays provisional until the payer approves and the
	// agreement executes.
	g.Add(stepProvisional, []string{stepConnectedAccount}, func(ctx context.Context, _ taskflow.Results) (any, error) {
		transaction, subscription, err := s.donations.CreateProvisionalPair(ctx, donationdomain.ProvisionalPairRequest{
			CollectiveID: collective.ID,
			Amount:       amount,
			Currency:     currency,
			Interval:     donationdomain.BillingInterval(req.Interval),
			Provider:     paypal.ProviderName,
		})
		if err != nil {
			return nil, err
		}
		return &provisionalPair{transaction: transaction, subscription: subscription}, nil
	})

	g.Add(stepBillingPlan, []string{stepConnectedAccount, stepProvisional}, func(ctx context.Context, deps taskflow.Results) (any, error) {
		account := taskflow.Value[*collectivedomain.ConnectedAccount](deps, stepConnectedAccount)
		pair := taskflow.Value[*provisionalPair](deps, stepProvisional)
		return s.paypal.CreateBillingPlan(ctx, credentialsOf(account), paypal.PlanRequest{
			Name:        fmt.Sprintf("Donation to %s", collective.Name),
			Description: fmt.Sprintf("%s %s donation to %s", currency, req.Interval, collective.Name),
			Amount:      amount,
			Currency:    currency,
			Interval:    req.Interval,
			ReturnURL:   s.callbackURL("execute", pair.transaction.ID),
			CancelURL:   s.callbackURL("cancel", pair.transaction.ID),
		})
	})

	g.Add(stepActivatePlan, []string{stepConnectedAccount, stepBillingPlan}, func(ctx context.Context, deps taskflow.Results) (any, error) {
		account := taskflow.Value[*collectivedomain.ConnectedAccount](deps, stepConnectedAccount)
		plan := taskflow.Value[*paypal.Plan](deps, stepBillingPlan)
		return nil, s.paypal.ActivateBillingPlan(ctx, credentialsOf(account), plan.ID)
	})

	g.Add(stepAgreement, []string{stepConnectedAccount, stepBillingPlan, stepActivatePlan}, func(ctx context.Context, deps taskflow.Results) (any, error) {
		account := taskflow.Value[*collectivedomain.ConnectedAccount](deps, stepConnectedAccount)
		plan := taskflow.Value[*paypal.Plan](deps, stepBillingPlan)
		return s.paypal.CreateBillingAgreement(ctx, credentialsOf(account), paypal.AgreementRequest{
			Name:        fmt.Sprintf("Donation to %s", collective.Name),
			Description: fmt.Sprintf("%s %s donation to %s", currency, req.Interval, collective.Name),
			PlanID:      plan.ID,
			StartDate:   s.clock.Now().Add(agreementStartOffset),
		})
	})

	g.Add(stepAttachAgreement, []string{stepProvisional, stepAgreement}, func(ctx context.Context, deps taskflow.Results) (any, error) {
		pair := taskflow.Value[*provisionalPair](deps, stepProvisional)
		agreement := taskflow.Value[*paypal.Agreement](deps, stepAgreement)
		return nil, s.donations.AttachAgreement(ctx, pair.subscription.ID, agreement.ID, agreement.Raw)
	})

	results, err := g.Run(ctx)
	if err != nil {
		s.recordWorkflowFailure(ctx, paypalInitiateWorkflowName, err)
		return nil, &domain.WorkflowError{Workflow: paypalInitiateWorkflowName, Request: req, Err: err}
	}

	pair := taskflow.Value[*provisionalPair](results, stepProvisional)
	agreement := taskflow.Value[*paypal.Agreement](results, stepAgreement)

	ctxlogger.WithContext(ctx, s.log).Info("wallet donation awaiting payer approval",
		zap.Int64("transaction_id", int64(pair.transaction.ID)),
		zap.String("agreement_id", agreement.ID),
		zap.String("approval_url", paypal.ApprovalLink(agreement.Links)))

	return &domain.PayPalInitiateResult{
		Success:       true,
		TransactionID: pair.transaction.ID,
		Links:         agreement.Links,
	}, nil
}

func (s *Service) ExecutePayPalSubscription(ctx context.Context, req domain.PayPalExecuteRequest) (*domain.PayPalExecuteResult, error) {
	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" {
		return nil, domain.ErrMissingExecutionToken
	}

	transactionID, err := snowflake.ParseString(strings.TrimSpace(req.TransactionID))
	if err != nil {
		return nil, donationdomain.ErrTransactionNotFound
	}
	transaction, err := s.donations.GetProvisionalTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.SubscriptionID == nil {
		return nil, donationdomain.ErrSubscriptionNotFound
	}
	subscriptionID := *transaction.SubscriptionID

	g := taskflow.New(paypalExecuteWorkflowName, s.log)

	g.Add(stepConnectedAccount, nil, func(ctx context.Context, _ taskflow.Results) (any, error) {
		return s.collectives.GetConnectedAccount(ctx, transaction.CollectiveID, paypal.ProviderName)
	})

	g.Add(stepExecuteAgreement, []string{stepConnectedAccount}, func(ctx context.Context, deps taskflow.Results) (any, error) {
		account := taskflow.Value[*collectivedomain.ConnectedAccount](deps, stepConnectedAccount)
		return s.paypal.ExecuteBillingAgreement(ctx, credentialsOf(account), req.Token)
	})

	g.Add(stepActivateSubscription, []string{stepExecuteAgreement}, func(ctx context.Context, deps taskflow.Results) (any, error) {
		agreement := taskflow.Value[*paypal.Agreement](deps, stepExecuteAgreement)
		return nil, s.donations.ActivateSubscription(ctx, subscriptionID, agreement.ID, agreement.Raw)
	})

	g.Add(stepResolveUser, []string{stepExecuteAgreement, stepActivateSubscription}, func(ctx context.Context, deps taskflow.Results) (any, error) {
		agreement := taskflow.Value[*paypal.Agreement](deps, stepExecuteAgreement)
		payer := agreement.Payer.PayerInfo
		if payer.Email == "" {
			return nil, domain.ErrMissingPayerEmail
		}
		user, created, err := s.users.FindOrCreateByEmail(ctx, payer.Email, payerName(payer))
		if err != nil {
			return nil, err
		}
		return userResolution{user: user, created: created}, nil
	})

	g.Add(stepMembership, []string{stepResolveUser}, func(ctx context.Context, deps taskflow.Results) (any, error) {
		res := taskflow.Value[userResolution](deps, stepResolveUser)
		return s.members.Grant(ctx, res.user.ID, transaction.CollectiveID, memberdomain.RoleBacker)
	})

	g.Add(stepRestoreTransaction, []string{stepResolveUser, stepMembership}, func(ctx context.Context, deps taskflow.Results) (any, error) {
		res := taskflow.Value[userResolution](deps, stepResolveUser)
		return nil, s.donations.RestoreTransaction(ctx, transaction.ID, res.user.ID)
	})

	results, err := g.Run(ctx)
	if err != nil {
		s.recordWorkflowFailure(ctx, paypalExecuteWorkflowName, err)
		return nil, &domain.WorkflowError{Workflow: paypalExecuteWorkflowName, Request: req, Err: err}
	}

	s.metrics.RecordDonation(paypal.ProviderName, "subscription", transaction.Currency, transaction.Amount)

	res := taskflow.Value[userResolution](results, stepResolveUser)
	return &domain.PayPalExecuteResult{
		UserID:         res.user.ID,
		HasFullAccount: res.user.HasFullAccount,
	}, nil
}

// callbackURL builds the payer-facing redirect target carrying the
// provisional transaction reference.
func (s *Service) callbackURL(action string, transactionID snowflake.ID) string {
	base := strings.TrimRight(s.cfg.CallbackBaseURL, "/")
	return fmt.Sprintf("%s/donations/paypal/%s?transactionId=%s", base, action, transactionID.String())
}

func credentialsOf(account *collectivedomain.ConnectedAccount) paypal.Credentials {
	return paypal.Credentials{ClientID: account.ClientID, Secret: account.Secret}
}

func payerName(info paypal.PayerInfo) string {
	return strings.TrimSpace(info.FirstName + " " + info.LastName)
}
