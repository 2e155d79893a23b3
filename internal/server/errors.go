package server

import (
	"errors"
	"net/http"

	checkoutdomain "github.com/carlosascari/opencollective-api/internal/checkout/domain"
	collectivedomain "github.com/carlosascari/opencollective-api/internal/collective/domain"
	donationdomain "github.com/carlosascari/opencollective-api/internal/donation/domain"
	"github.com/carlosascari/opencollective-api/internal/providers/paypal"
	"github.com/carlosascari/opencollective-api/internal/providers/stripe"
	userdomain "github.com/carlosascari/opencollective-api/internal/user/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInternal       = errors.New("internal_error")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrRateLimited    = errors.New("rate_limited")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// validationFields maps checkout validation sentinels to the request
// field they refer to.
var validationFields = map[error]string{
	checkoutdomain.ErrMissingStripeToken:    "stripeToken",
	checkoutdomain.ErrInvalidAmount:         "amount",
	checkoutdomain.ErrInvalidInterval:       "interval",
	checkoutdomain.ErrMissingExecutionToken: "token",
	checkoutdomain.ErrMissingPayerEmail:     "email",
	userdomain.ErrInvalidEmail:              "email",
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	var vErr *ValidationErrors
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	for sentinel, field := range validationFields {
		if errors.Is(err, sentinel) {
			return http.StatusBadRequest, errorPayload{
				Type:    "validation_error",
				Message: "validation error",
				Errors: []ValidationError{
					{
						Field:   field,
						Code:    sentinel.Error(),
						Message: sentinel.Error(),
					},
				},
			}
		}
	}

	switch {
	case errors.Is(err, collectivedomain.ErrCollectiveNotFound),
		errors.Is(err, donationdomain.ErrTransactionNotFound),
		errors.Is(err, donationdomain.ErrSubscriptionNotFound),
		errors.Is(err, userdomain.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, collectivedomain.ErrMissingStripeAccount),
		errors.Is(err, collectivedomain.ErrMissingConnectedAccount),
		errors.Is(err, collectivedomain.ErrLiveKeyOutsideProduction),
		errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: err.Error(),
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case isProviderError(err):
		return http.StatusBadGateway, errorPayload{
			Type:    "provider_error",
			Message: "payment provider error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isProviderError(err error) bool {
	var stripeErr *stripe.APIError
	if errors.As(err, &stripeErr) {
		return true
	}
	var paypalErr *paypal.APIError
	return errors.As(err, &paypalErr)
}
