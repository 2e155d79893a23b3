package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/carlosascari/opencollective-api/internal/config"
	"github.com/carlosascari/opencollective-api/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// APIError is a non-2xx provider response.
type APIError struct {
	Status  int
	Name    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return "paypal: " + e.Message
	}
	return fmt.Sprintf("paypal: request failed with status %d", e.Status)
}

type client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
	metrics *telemetry.Metrics
}

type ClientParam struct {
	fx.In

	Cfg     config.Config
	Log     *zap.Logger
	Metrics *telemetry.Metrics `optional:"true"`
}

func NewClient(p ClientParam) Gateway {
	return &client{
		baseURL: strings.TrimRight(p.Cfg.PayPalBaseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     p.Log.Named("paypal.client"),
		metrics: p.Metrics,
	}
}

func (c *client) CreateBillingPlan(ctx context.Context, creds Credentials, req PlanRequest) (*Plan, error) {
	payload := map[string]any{
		"name":        req.Name,
		"description": req.Description,
		"type":        "INFINITE",
		"payment_definitions": []map[string]any{
			{
				"name":               req.Name,
				"type":               "REGULAR",
				"frequency":          strings.ToUpper(req.Interval),
				"frequency_interval": "1",
				"cycles":             "0",
				"amount": map[string]string{
					"value":    formatAmount(req.Amount),
					"currency": strings.ToUpper(req.Currency),
				},
			},
		},
		"merchant_preferences": map[string]any{
			"return_url": req.ReturnURL,
			"cancel_url": req.CancelURL,
		},
	}

	var plan Plan
	if _, err := c.doRequest(ctx, creds, "createBillingPlan", http.MethodPost, "/v1/payments/billing-plans", payload, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *client) ActivateBillingPlan(ctx context.Context, creds Credentials, planID string) error {
	payload := []map[string]any{
		{
			"op":    "replace",
			"path":  "/",
			"value": map[string]string{"state": "ACTIVE"},
		},
	}
	_, err := c.doRequest(ctx, creds, "activateBillingPlan", http.MethodPatch, "/v1/payments/billing-plans/"+url.PathEscape(planID), payload, nil)
	return err
}

func (c *client) CreateBillingAgreement(ctx context.Context, creds Credentials, req AgreementRequest) (*Agreement, error) {
	payload := map[string]any{
		"name":        req.Name,
		"description": req.Description,
		"start_date":  req.StartDate.UTC().Format(time.RFC3339),
		"plan":        map[string]string{"id": req.PlanID},
		"payer":       map[string]string{"payment_method": "paypal"},
	}

	var agreement Agreement
	raw, err := c.doRequest(ctx, creds, "createBillingAgreement", http.MethodPost, "/v1/payments/billing-agreements", payload, &agreement)
	if err != nil {
		return nil, err
	}
	agreement.Raw = raw
	return &agreement, nil
}

func (c *client) ExecuteBillingAgreement(ctx context.Context, creds Credentials, token string) (*Agreement, error) {
	path := "/v1/payments/billing-agreements/" + url.PathEscape(token) + "/agreement-execute"

	var agreement Agreement
	raw, err := c.doRequest(ctx, creds, "executeBillingAgreement", http.MethodPost, path, struct{}{}, &agreement)
	if err != nil {
		return nil, err
	}
	agreement.Raw = raw
	return &agreement, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (c *client) fetchAccessToken(ctx context.Context, creds Credentials) (string, error) {
	body := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", body)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(creds.ClientID, creds.Secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", &APIError{Status: resp.StatusCode, Message: "token request failed"}
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", err
	}
	if token.AccessToken == "" {
		return "", &APIError{Status: resp.StatusCode, Message: "empty access token"}
	}
	return token.AccessToken, nil
}

func (c *client) doRequest(
	ctx context.Context,
	creds Credentials,
	operation string,
	method string,
	path string,
	payload any,
	out any,
) (datatypes.JSONMap, error) {
	accessToken, err := c.fetchAccessToken(ctx, creds)
	if err != nil {
		c.record(operation, "error", time.Now())
		return nil, err
	}

	var bodyReader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

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
		var paypalErr struct {
			Name    string `json:"name"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &paypalErr)
		return nil, &APIError{Status: resp.StatusCode, Name: paypalErr.Name, Message: paypalErr.Message}
	}
	c.record(operation, "success", start)

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return nil, err
		}
	}

	var raw datatypes.JSONMap
	if len(body) > 0 {
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

func (c *client) record(operation, status string, start time.Time) {
	c.metrics.RecordProviderCall(ProviderName, operation, status, time.Since(start))
}

// formatAmount renders minor units as the decimal string the provider
// expects (1000 -> "10.00").
func formatAmount(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}
