package main

import (
	"context"                        // context package is needed for Redis and S3 setup
	"net/http"                       // Bridge HTTP client
	"pollopollo/internal/api"        // Custom package for API handlers
	"pollopollo/internal/config"     // Custom package for configuration
	"pollopollo/internal/db"         // Database connection and migrations
	"pollopollo/internal/jobs"       // Background jobs
	"pollopollo/internal/middleware" // Custom package for middleware
	"pollopollo/internal/notify"     // Email senders
	"pollopollo/internal/obyte"      // Chat bot bridge client
	"pollopollo/internal/repository" // Persistence layer
	"pollopollo/internal/storage"    // Image storage backends
	"time"                           // Timeouts

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/robfig/cron/v3"    // Scheduler for the exchange rate job
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	ctx := context.Background()

	// Connect to the database and make sure the schema is current
	gdb, err := db.Open(cfg.MySQLDSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if err := db.AutoMigrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}

	// Setup Redis client, caching is skipped when no address is configured
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(ctx).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	}

	// Email goes through SMTP when a host is configured, otherwise it is only logged
	var sender notify.Sender = notify.NewLogSender()
	if cfg.SMTPHost != "" {
		sender = notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	}

	// Images go to S3 when a bucket is configured, otherwise to disk and served from /static
	var images storage.ImageWriter
	imageDir := ""
	if cfg.S3Bucket != "" {
		images, err = storage.NewS3Writer(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			logrus.Fatalf("failed to set up S3: %v", err)
		}
	} else {
		images = storage.NewDiskWriter(cfg.ImageDir)
		imageDir = cfg.ImageDir
	}

	bridge := obyte.NewClient(cfg.BridgeURL, &http.Client{Timeout: 30 * time.Second})
	rates := repository.NewExchangeRateRepository(gdb)

	// Refresh the exchange rate on a schedule when a price feed is configured
	scheduler := cron.New()
	if cfg.PriceFeedURL != "" {
		job := jobs.NewExchangeRateJob(cfg.PriceFeedURL, cfg.PriceFeedPath, rates, nil)
		if _, err := job.Schedule(scheduler, cfg.PriceFeedSchedule); err != nil {
			logrus.Fatalf("invalid price feed schedule: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	api.RegisterRoutes(r, api.Deps{
		DB:           gdb,
		Redis:        redisClient,
		JWTSecret:    cfg.JWTSecret,
		Users:        repository.NewUserRepository(gdb, cfg.Security(), images, cfg.StaticBaseURL),
		Products:     repository.NewProductRepository(gdb, images, cfg.StaticBaseURL),
		Applications: repository.NewApplicationRepository(gdb, sender, cfg.StaticBaseURL),
		Contracts:    repository.NewContractRepository(gdb),
		Donors:       repository.NewDonorRepository(gdb, bridge, rates),
		Rates:        rates,
		AuthLimiter:  middleware.NewRateLimiter(cfg.AuthRatePerSecond, cfg.AuthRateBurst),
		Metrics:      middleware.NewMetrics(),
		ImageDir:     imageDir,
		InternalPort: cfg.InternalPort,
	})

	// Chat bot routes only answer on the loopback listener
	go func() {
		logrus.WithField("port", cfg.InternalPort).Info("Internal listener running")
		if err := r.Run("127.0.0.1:" + cfg.InternalPort); err != nil {
			logrus.Fatalf("internal listener stopped: %v", err)
		}
	}()

	logrus.WithField("port", cfg.AppPort).Info("Server running") // Log server start
	// Start the server on port cfg.AppPort
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
