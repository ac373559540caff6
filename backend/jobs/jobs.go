// Package jobs runs the periodic maintenance tasks.
package jobs

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

type PurchaseExpirer interface {
	ExpireStale(ttl time.Duration) (int64, error)
}

type Sweeper interface {
	Sweep() int
}

type Config struct {
	PurchaseSweepSpec  string
	PendingPurchaseTTL time.Duration
}

// Start schedules the jobs and returns the running scheduler. sweeper may be
// nil when rate limits are kept in Redis, which expires keys by itself.
func Start(cfg Config, purchases PurchaseExpirer, sweeper Sweeper, logger *log.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithLogger(cron.PrintfLogger(logger)))

	if _, err := c.AddFunc(cfg.PurchaseSweepSpec, ExpirePurchases(purchases, cfg.PendingPurchaseTTL, logger)); err != nil {
		return nil, err
	}
	if sweeper != nil {
		if _, err := c.AddFunc("@every 5m", SweepRateLimits(sweeper, logger)); err != nil {
			return nil, err
		}
	}

	c.Start()
	logger.Printf("[JOBS] scheduler started, purchase sweep %q", cfg.PurchaseSweepSpec)
	return c, nil
}

func ExpirePurchases(purchases PurchaseExpirer, ttl time.Duration, logger *log.Logger) func() {
	return func() {
		n, err := purchases.ExpireStale(ttl)
		if err != nil {
			logger.Printf("[JOBS] expire pending purchases: %v", err)
			return
		}
		if n > 0 {
			logger.Printf("[JOBS] marked %d pending purchases abandoned", n)
		}
	}
}

func SweepRateLimits(sweeper Sweeper, logger *log.Logger) func() {
	return func() {
		if n := sweeper.Sweep(); n > 0 {
			logger.Printf("[JOBS] dropped %d idle rate limit keys", n)
		}
	}
}
