// Package server is the HTTP boundary: gin engine, public donation
// routes and error mapping. Request validation lives in the checkout
// service; handlers only bind, dispatch and translate errors.
package server

import (
	"context"
	"net/http"
	"time"

	checkoutdomain "github.com/carlosascari/opencollective-api/internal/checkout/domain"
	collectivedomain "github.com/carlosascari/opencollective-api/internal/collective/domain"
	"github.com/carlosascari/opencollective-api/internal/config"
	donationdomain "github.com/carlosascari/opencollective-api/internal/donation/domain"
	"github.com/carlosascari/opencollective-api/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	log             *zap.Logger
	checkoutSvc     checkoutdomain.Service
	collectiveSvc   collectivedomain.Service
	donationSvc     donationdomain.Service
	donationLimiter *ratelimit.DonationLimiter
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	CheckoutSvc     checkoutdomain.Service
	CollectiveSvc   collectivedomain.Service
	DonationSvc     donationdomain.Service
	DonationLimiter *ratelimit.DonationLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("http.server"),
		checkoutSvc:     p.CheckoutSvc,
		collectiveSvc:   p.CollectiveSvc,
		donationSvc:     p.DonationSvc,
		donationLimiter: p.DonationLimiter,
	}
}

func RunHTTP(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.log.Info("http server starting", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
