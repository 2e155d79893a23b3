package server

import (
	"errors"
	"net/http"
	"testing"

	checkoutdomain "github.com/carlosascari/opencollective-api/internal/checkout/domain"
	collectivedomain "github.com/carlosascari/opencollective-api/internal/collective/domain"
	donationdomain "github.com/carlosascari/opencollective-api/internal/donation/domain"
	"github.com/carlosascari/opencollective-api/internal/providers/stripe"
	"github.com/carlosascari/opencollective-api/pkg/taskflow"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"nil", nil, http.StatusInternalServerError, "internal_error"},
		{"validation sentinel", checkoutdomain.ErrInvalidAmount, http.StatusBadRequest, "validation_error"},
		{"missing token", checkoutdomain.ErrMissingStripeToken, http.StatusBadRequest, "validation_error"},
		{"collective not found", collectivedomain.ErrCollectiveNotFound, http.StatusNotFound, "not_found"},
		{"transaction not found", donationdomain.ErrTransactionNotFound, http.StatusNotFound, "not_found"},
		{"missing stripe account", collectivedomain.ErrMissingStripeAccount, http.StatusBadRequest, "invalid_request"},
		{"live key", collectivedomain.ErrLiveKeyOutsideProduction, http.StatusBadRequest, "invalid_request"},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{"provider error", &stripe.APIError{Status: 402, Code: "card_declined"}, http.StatusBadGateway, "provider_error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.typ, payload.Type)
		})
	}
}

// Errors surface wrapped in workflow and step envelopes; mapping must
// see through both.
func TestMapError_WrappedWorkflowError(t *testing.T) {
	err := &checkoutdomain.WorkflowError{
		Workflow: "stripe.donation",
		Err: &taskflow.StepError{
			Step: "resolveStripeAccount",
			Err:  collectivedomain.ErrLiveKeyOutsideProduction,
		},
	}

	status, payload := mapError(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_request", payload.Type)

	status, payload = mapError(&checkoutdomain.WorkflowError{
		Workflow: "paypal.execute",
		Err: &taskflow.StepError{
			Step: "executeAgreement",
			Err:  &stripe.APIError{Status: 500},
		},
	})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "provider_error", payload.Type)
}
