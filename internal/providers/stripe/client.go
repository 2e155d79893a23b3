package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/carlosascari/opencollective-api/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const apiBase = "https://api.stripe.com"

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// APIError is a non-2xx provider response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return "stripe: " + e.Message
	}
	return fmt.Sprintf("stripe: request failed with status %d", e.Status)
}

// IsNotFound classifies a retrieval miss.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusNotFound || apiErr.Code == "resource_missing"
	}
	return false
}

// IsAlreadyExists classifies a create that lost a first-create race.
func IsAlreadyExists(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == "resource_already_exists" ||
			strings.Contains(strings.ToLower(apiErr.Message), "already exists")
	}
	return false
}

type client struct {
	http    *http.Client
	log     *zap.Logger
	metrics *telemetry.Metrics
}

type ClientParam struct {
	fx.In

	Log     *zap.Logger
	Metrics *telemetry.Metrics `optional:"true"`
}

func NewClient(p ClientParam) Gateway {
	return &client{
		http:    &http.Client{Timeout: 12 * time.Second},
		log:     p.Log.Named("stripe.client"),
		metrics: p.Metrics,
	}
}

func (c *client) CreateCustomer(ctx context.Context, accessToken string, req CustomerRequest) (*Customer, error) {
	values := url.Values{}
	values.Set("source", req.Token)
	if req.Email != "" {
		values.Set("email", req.Email)
	}
	if req.Description != "" {
		values.Set("description", req.Description)
	}

	var customer Customer
	if _, err := c.doRequest(ctx, accessToken, "createCustomer", http.MethodPost, "/v1/customers", values, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (c *client) RetrievePlan(ctx context.Context, accessToken, planID string) (*Plan, error) {
	var plan Plan
	_, err := c.doRequest(ctx, accessToken, "retrievePlan", http.MethodGet, "/v1/plans/"+url.PathEscape(planID), nil, &plan)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (c *client) CreatePlan(ctx context.Context, accessToken string, req PlanRequest) (*Plan, error) {
	values := url.Values{}
	values.Set("id", req.ID)
	values.Set("amount", strconv.FormatInt(req.Amount, 10))
	values.Set("currency", strings.ToLower(req.Currency))
	values.Set("interval", req.Interval)
	values.Set("product[name]", req.ID)

	var plan Plan
	if _, err := c.doRequest(ctx, accessToken, "createPlan", http.MethodPost, "/v1/plans", values, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *client) CreateSubscription(ctx context.Context, accessToken, customerID string, req SubscriptionRequest) (*Subscription, error) {
	values := url.Values{}
	values.Set("customer", customerID)
	values.Set("items[0][plan]", req.PlanID)
	if req.ApplicationFeePercent > 0 {
		values.Set("application_fee_percent", strconv.FormatInt(req.ApplicationFeePercent, 10))
	}
	for key, value := range req.Metadata {
		values.Set("metadata["+key+"]", value)
	}

	var subscription Subscription
	raw, err := c.doRequest(ctx, accessToken, "createSubscription", http.MethodPost, "/v1/subscriptions", values, &subscription)
	if err != nil {
		return nil, err
	}
	subscription.Raw = raw
	return &subscription, nil
}

func (c *client) CreateCharge(ctx context.Context, accessToken string, req ChargeRequest) (*Charge, error) {
	values := url.Values{}
	values.Set("amount", strconv.FormatInt(req.Amount, 10))
	values.Set("currency", strings.ToLower(req.Currency))
	values.Set("customer", req.CustomerID)
	if req.Description != "" {
		values.Set("description", req.Description)
	}
	for key, value := range req.Metadata {
		values.Set("metadata["+key+"]", value)
	}

	var charge Charge
	raw, err := c.doRequest(ctx, accessToken, "createCharge", http.MethodPost, "/v1/charges", values, &charge)
	if err != nil {
		return nil, err
	}
	charge.Raw = raw
	return &charge, nil
}

func (c *client) doRequest(
	ctx context.Context,
	accessToken string,
	operation string,
	method string,
	path string,
	values url.Values,
	out any,
) (datatypes.JSONMap, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, &APIError{Status: http.StatusUnauthorized, Message: "missing access token"}
	}

	var bodyReader io.Reader
	if values != nil {
		bodyReader = strings.NewReader(values.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, apiBase+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if values != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.record(operation, "error", start)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.record(operation, "error", start)
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.record(operation, "failure", start)
		var stripeErr stripeError
		_ = json.Unmarshal(body, &stripeErr)
		return nil, &APIError{
			Status:  resp.StatusCode,
			Code:    stripeErr.Error.Code,
			Message: stripeErr.Error.Message,
		}
	}
	c.record(operation, "success", start)

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return nil, err
		}
	}

	var raw datatypes.JSONMap
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *client) record(operation, status string, start time.Time) {
	c.metrics.RecordProviderCall(ProviderName, operation, status, time.Since(start))
}
