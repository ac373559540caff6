package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coursehub/backend/config"
	"coursehub/backend/jobs"
	"coursehub/backend/media"
	"coursehub/backend/middleware"
	"coursehub/backend/payment"
	"coursehub/backend/ratelimit"
	"coursehub/backend/routes"
	"coursehub/backend/services"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func newLogger(cmd *cobra.Command) *log.Logger {
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")
	if jsonLogs {
		return utils.InitLogger(utils.LoggerConfig{Format: "json"})
	}
	return utils.InitLogger(utils.LoggerConfig{EnableColors: true})
}

func runServe(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.ServerPort = port
	}
	logger := newLogger(cmd)

	db, err := utils.InitDB(cfg)
	if err != nil {
		return err
	}
	if err := utils.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter, sweeper, closeLimiter, err := newLimiter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLimiter()

	mediaClient := media.NewClient(cfg.MediaAPIURL, cfg.MediaAPIKey, cfg.MediaPublicURL, cfg.MediaMaxUploadMB)
	paymentClient := payment.NewClient(cfg.PaymentAPIURL, cfg.PaymentSecretKey)

	deps := routes.Deps{
		DB:        db,
		Cfg:       cfg,
		Logger:    logger,
		Limiter:   limiter,
		Courses:   services.NewCourseService(db, mediaClient, logger),
		Purchases: services.NewPurchaseService(db, paymentClient, logger),
		Learning:  services.NewLearningService(db),
		Admin:     services.NewAdminService(db),
	}

	scheduler, err := jobs.Start(jobs.Config{
		PurchaseSweepSpec:  cfg.PurchaseSweepSpec,
		PendingPurchaseTTL: cfg.PendingPurchaseTTL,
	}, deps.Purchases, sweeper, logger)
	if err != nil {
		return fmt.Errorf("start jobs: %w", err)
	}
	defer func() { <-scheduler.Stop().Done() }()

	app := fiber.New(fiber.Config{
		AppName:   "coursehub",
		BodyLimit: (cfg.MediaMaxUploadMB + 1) << 20,
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigin,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))
	routes.SetupRoutes(app, deps)

	errc := make(chan error, 1)
	go func() {
		errc <- app.Listen(":" + cfg.ServerPort)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

// newLimiter uses Redis when REDIS_ADDR is set so limits hold across
// replicas. The in-process limiter is returned as a sweeper for the cron job.
func newLimiter(ctx context.Context, cfg *config.Config, logger *log.Logger) (ratelimit.Limiter, jobs.Sweeper, func(), error) {
	if cfg.RedisAddr == "" {
		mem := ratelimit.NewMemoryLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
		logger.Printf("rate limiting in memory: %d per %s", cfg.RateLimitRequests, cfg.RateLimitWindow)
		return mem, mem, func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, nil, fmt.Errorf("connect to redis %s: %w", cfg.RedisAddr, err)
	}
	logger.Printf("rate limiting in redis %s: %d per %s", cfg.RedisAddr, cfg.RateLimitRequests, cfg.RateLimitWindow)
	return ratelimit.NewRedisLimiter(rdb, cfg.RateLimitRequests, cfg.RateLimitWindow), nil, func() { _ = rdb.Close() }, nil
}
