package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	checkoutdomain "github.com/carlosascari/opencollective-api/internal/checkout/domain"
	"github.com/carlosascari/opencollective-api/internal/clock"
	collectivedomain "github.com/carlosascari/opencollective-api/internal/collective/domain"
	collectiverepository "github.com/carlosascari/opencollective-api/internal/collective/repository"
	collectiveservice "github.com/carlosascari/opencollective-api/internal/collective/service"
	"github.com/carlosascari/opencollective-api/internal/config"
	donationdomain "github.com/carlosascari/opencollective-api/internal/donation/domain"
	donationrepository "github.com/carlosascari/opencollective-api/internal/donation/repository"
	donationservice "github.com/carlosascari/opencollective-api/internal/donation/service"
	memberrepository "github.com/carlosascari/opencollective-api/internal/member/repository"
	memberservice "github.com/carlosascari/opencollective-api/internal/member/service"
	"github.com/carlosascari/opencollective-api/internal/migration"
	paymentmethodrepository "github.com/carlosascari/opencollective-api/internal/paymentmethod/repository"
	paymentmethodservice "github.com/carlosascari/opencollective-api/internal/paymentmethod/service"
	"github.com/carlosascari/opencollective-api/internal/providers/paypal"
	"github.com/carlosascari/opencollective-api/internal/providers/stripe"
	userrepository "github.com/carlosascari/opencollective-api/internal/user/repository"
	userservice "github.com/carlosascari/opencollective-api/internal/user/service"
	"github.com/carlosascari/opencollective-api/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakeStripe struct {
	mu sync.Mutex

	plans map[string]*stripe.Plan

	customerCalls int
	planRetrieves int
	planCreates   int

	subscriptions []stripe.SubscriptionRequest
	charges       []stripe.ChargeRequest

	chargeFee int64

	customerErr error
	chargeErr   error
	planErr     error
}

func newFakeStripe() *fakeStripe {
	return &fakeStripe{plans: make(map[string]*stripe.Plan)}
}

func (f *fakeStripe) CreateCustomer(ctx context.Context, accessToken string, req stripe.CustomerRequest) (*stripe.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.customerErr != nil {
		return nil, f.customerErr
	}
	f.customerCalls++
	return &stripe.Customer{ID: "cus_test", Email: req.Email}, nil
}

func (f *fakeStripe) RetrievePlan(ctx context.Context, accessToken, planID string) (*stripe.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.planRetrieves++
	return f.plans[planID], nil
}

func (f *fakeStripe) CreatePlan(ctx context.Context, accessToken string, req stripe.PlanRequest) (*stripe.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.planErr != nil {
		return nil, f.planErr
	}
	f.planCreates++
	plan := &stripe.Plan{ID: req.ID, Amount: req.Amount, Currency: req.Currency, Interval: req.Interval}
	f.plans[req.ID] = plan
	return plan, nil
}

func (f *fakeStripe) CreateSubscription(ctx context.Context, accessToken, customerID string, req stripe.SubscriptionRequest) (*stripe.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscriptions = append(f.subscriptions, req)
	return &stripe.Subscription{
		ID:     "sub_test",
		Status: "active",
		Raw:    datatypes.JSONMap{"id": "sub_test"},
	}, nil
}

func (f *fakeStripe) CreateCharge(ctx context.Context, accessToken string, req stripe.ChargeRequest) (*stripe.Charge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.chargeErr != nil {
		return nil, f.chargeErr
	}
	f.charges = append(f.charges, req)
	return &stripe.Charge{
		ID:                   "ch_test",
		Status:               "succeeded",
		Amount:               req.Amount,
		Currency:             req.Currency,
		ApplicationFeeAmount: f.chargeFee,
		Raw:                  datatypes.JSONMap{"id": "ch_test"},
	}, nil
}

type fakePayPal struct {
	mu sync.Mutex

	planCreates     int
	planActivations int
	agreementCalls  int
	executeCalls    int

	lastPlanReq      paypal.PlanRequest
	lastAgreementReq paypal.AgreementRequest

	payerEmail string
	executeErr error
}

func newFakePayPal() *fakePayPal {
	return &fakePayPal{payerEmail: "payer@example.com"}
}

func (f *fakePayPal) CreateBillingPlan(ctx context.Context, creds paypal.Credentials, req paypal.PlanRequest) (*paypal.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.planCreates++
	f.lastPlanReq = req
	return &paypal.Plan{ID: "P-TEST", State: "CREATED"}, nil
}

func (f *fakePayPal) ActivateBillingPlan(ctx context.Context, creds paypal.Credentials, planID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.planActivations++
	return nil
}

func (f *fakePayPal) CreateBillingAgreement(ctx context.Context, creds paypal.Credentials, req paypal.AgreementRequest) (*paypal.Agreement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.agreementCalls++
	f.lastAgreementReq = req
	return &paypal.Agreement{
		State: "CREATED",
		Links: []paypal.Link{
			{Href: "https://paypal.test/approve?token=EC-TEST", Rel: "approval_url", Method: "REDIRECT"},
			{Href: "https://paypal.test/execute", Rel: "execute", Method: "POST"},
		},
		Raw: datatypes.JSONMap{"state": "CREATED"},
	}, nil
}

func (f *fakePayPal) ExecuteBillingAgreement(ctx context.Context, creds paypal.Credentials, token string) (*paypal.Agreement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.executeErr != nil {
		return nil, f.executeErr
	}
	f.executeCalls++
	return &paypal.Agreement{
		ID:    "I-TEST",
		State: "Active",
		Payer: paypal.Payer{
			PaymentMethod: "paypal",
			PayerInfo:     paypal.PayerInfo{Email: f.payerEmail, FirstName: "Pat", LastName: "Payer"},
		},
		Raw: datatypes.JSONMap{"id": "I-TEST", "state": "Active"},
	}, nil
}

type sentMessage struct {
	template string
	to       string
	data     map[string]any
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeNotifier) Send(ctx context.Context, templateName, to string, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{template: templateName, to: to, data: data})
	return nil
}

type harness struct {
	db         *gorm.DB
	node       *snowflake.Node
	clock      *clock.FakeClock
	stripe     *fakeStripe
	paypal     *fakePayPal
	notifier   *fakeNotifier
	donations  donationdomain.Service
	svc        checkoutdomain.Service
	collective *collectivedomain.Collective
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(migration.Models()...))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	logger := zap.NewNop()
	fakeClock := clock.NewFakeClock(time.Date(2020, 4, 1, 12, 0, 0, 0, time.UTC))

	cfg := config.Config{
		Environment:        "development",
		PlatformFeePercent: 5,
		CallbackBaseURL:    "http://localhost:3060",
	}

	collectives := collectiveservice.New(collectiveservice.ServiceParam{
		DB: conn, Log: logger, Cfg: cfg, Repo: collectiverepository.Provide(),
	})
	users := userservice.New(userservice.ServiceParam{
		DB: conn, Log: logger, GenID: node, Repo: userrepository.Provide(),
	})
	members := memberservice.New(memberservice.ServiceParam{
		DB: conn, Log: logger, GenID: node, Repo: memberrepository.Provide(),
	})
	paymentMethods := paymentmethodservice.New(paymentmethodservice.ServiceParam{
		DB: conn, Log: logger, GenID: node, Repo: paymentmethodrepository.Provide(),
	})
	donations := donationservice.New(donationservice.ServiceParam{
		DB: conn, Log: logger, GenID: node, Clock: fakeClock, Repo: donationrepository.Provide(),
	})

	stripeGateway := newFakeStripe()
	paypalGateway := newFakePayPal()
	notifier := &fakeNotifier{}

	svc := New(ServiceParam{
		Cfg:            cfg,
		Log:            logger,
		Clock:          fakeClock,
		Collectives:    collectives,
		Users:          users,
		Members:        members,
		PaymentMethods: paymentMethods,
		Donations:      donations,
		Stripe:         stripeGateway,
		PayPal:         paypalGateway,
		Notifier:       notifier,
	})

	collective := &collectivedomain.Collective{
		ID:       node.Generate(),
		Slug:     "testcollective",
		Name:     "Test Collective",
		Currency: "USD",
	}
	require.NoError(t, conn.Create(collective).Error)
	require.NoError(t, conn.Create(&collectivedomain.StripeAccount{
		ID:           node.Generate(),
		CollectiveID: collective.ID,
		AccessToken:  "sk_test_abc",
	}).Error)
	require.NoError(t, conn.Create(&collectivedomain.ConnectedAccount{
		ID:           node.Generate(),
		CollectiveID: collective.ID,
		Provider:     paypal.ProviderName,
		ClientID:     "client-id",
		Secret:       "client-secret",
	}).Error)

	return &harness{
		db:         conn,
		node:       node,
		clock:      fakeClock,
		stripe:     stripeGateway,
		paypal:     paypalGateway,
		notifier:   notifier,
		donations:  donations,
		svc:        svc,
		collective: collective,
	}
}

func (h *harness) count(t *testing.T, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
