package server

import (
	"net/http"
	"net/url"
	"strconv"

	checkoutdomain "github.com/carlosascari/opencollective-api/internal/checkout/domain"
	"github.com/carlosascari/opencollective-api/pkg/log"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterAPIRoutes mounts the public donation endpoints.
func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/")
	api.Use(RequestID())

	api.GET("/collectives/:slug/donations", s.ListDonations)
	api.POST("/collectives/:slug/donations", s.CreateDonation)
	api.POST("/collectives/:slug/donations/paypal", s.CreatePayPalDonation)
	api.GET("/donations/paypal/execute", s.ExecutePayPalDonation)
	api.GET("/donations/paypal/cancel", s.CancelPayPalDonation)
}

func (s *Server) ListDonations(c *gin.Context) {
	collective, err := s.collectiveSvc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	donations, err := s.donationSvc.ListRecentDonations(c.Request.Context(), collective.ID, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"donations": donations})
}

func (s *Server) CreateDonation(c *gin.Context) {
	if !s.allowDonation(c) {
		return
	}

	var req checkoutdomain.StripeDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.CollectiveSlug = c.Param("slug")

	result, err := s.checkoutSvc.CreateStripeDonation(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) CreatePayPalDonation(c *gin.Context) {
	if !s.allowDonation(c) {
		return
	}

	var req checkoutdomain.PayPalInitiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.CollectiveSlug = c.Param("slug")

	result, err := s.checkoutSvc.CreatePayPalSubscription(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExecutePayPalDonation is the payer-facing return leg of the wallet
// flow; it finishes the agreement then sends the payer back to the
// frontend with the outcome in the query string.
func (s *Server) ExecutePayPalDonation(c *gin.Context) {
	var req checkoutdomain.PayPalExecuteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.checkoutSvc.ExecutePayPalSubscription(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Redirect(http.StatusFound, s.frontendRedirect(url.Values{
		"status":         {"payment_success"},
		"userId":         {result.UserID.String()},
		"hasFullAccount": {strconv.FormatBool(result.HasFullAccount)},
	}))
}

func (s *Server) CancelPayPalDonation(c *gin.Context) {
	c.Redirect(http.StatusFound, s.frontendRedirect(url.Values{
		"status": {"cancelled"},
	}))
}

func (s *Server) frontendRedirect(values url.Values) string {
	return s.cfg.FrontendBaseURL + "?" + values.Encode()
}

// allowDonation applies the per-client token bucket. A limiter error
// fails open so redis downtime never blocks donations.
func (s *Server) allowDonation(c *gin.Context) bool {
	if !s.donationLimiter.Enabled() {
		return true
	}
	allowed, err := s.donationLimiter.Allow(c.Request.Context(), c.ClientIP())
	if err != nil {
		log.L(c.Request.Context()).Warn("donation rate limit check failed", zap.Error(err))
		return true
	}
	if !allowed {
		AbortWithError(c, ErrRateLimited)
		return false
	}
	return true
}
