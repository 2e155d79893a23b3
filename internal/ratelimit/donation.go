package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carlosascari/opencollective-api/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keyDonationClient = "donation:client:%s"

// DonationLimiter throttles donation submissions per client address.
// A nil limiter is disabled and allows everything.
type DonationLimiter struct {
	enabled bool

	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewDonationLimiter(cfg config.Config) (*DonationLimiter, error) {
	if !cfg.RateLimitEnabled {
		return nil, nil
	}

	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if cfg.DonationRate <= 0 || cfg.DonationBurst <= 0 {
		return nil, errors.New("donation rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	return &DonationLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    cfg.DonationRate,
		burst:   cfg.DonationBurst,
	}, nil
}

func (l *DonationLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *DonationLimiter) Allow(ctx context.Context, clientKey string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyDonationClient, strings.TrimSpace(clientKey)), l.rate, l.burst)
}
