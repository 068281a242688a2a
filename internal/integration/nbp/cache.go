package nbp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Dhoini/licensing-backend/internal/service"
	"github.com/Dhoini/licensing-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	// Key prefix for cached mid rates
	rateKeyPrefix = "rate:"

	// TTL for cached rates
	defaultRateTTL = 15 * time.Minute
)

// CachedRateProvider caches mid rates in Redis in front of another
// provider. Cache failures fall through to the live lookup.
type CachedRateProvider struct {
	client *redis.Client
	next   service.RateProvider
	ttl    time.Duration
	log    *logger.Logger
}

// NewCachedRateProvider connects to Redis and wraps the given provider
func NewCachedRateProvider(redisAddr, redisPassword string, redisDB int, next service.RateProvider, log *logger.Logger) (*CachedRateProvider, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &CachedRateProvider{
		client: client,
		next:   next,
		ttl:    defaultRateTTL,
		log:    log,
	}, nil
}

// MidRate returns the cached rate when present, otherwise asks the
// wrapped provider and caches the answer.
func (p *CachedRateProvider) MidRate(ctx context.Context, currencyCode string) (decimal.Decimal, error) {
	key := rateKeyPrefix + strings.ToUpper(currencyCode)

	cached, err := p.client.Get(ctx, key).Result()
	if err == nil {
		rate, parseErr := decimal.NewFromString(cached)
		if parseErr == nil {
			p.log.Debug("Rate cache hit for %s", currencyCode)
			return rate, nil
		}
		p.log.Warn("Invalid cached rate for %s: %v", currencyCode, parseErr)
	} else if err != redis.Nil {
		p.log.Warn("Rate cache read failed for %s: %v", currencyCode, err)
	}

	rate, err := p.next.MidRate(ctx, currencyCode)
	if err != nil {
		return decimal.Zero, err
	}

	if err := p.client.Set(ctx, key, rate.String(), p.ttl).Err(); err != nil {
		p.log.Warn("Rate cache write failed for %s: %v", currencyCode, err)
	}

	return rate, nil
}

// Close closes the Redis connection
func (p *CachedRateProvider) Close() error {
	return p.client.Close()
}
