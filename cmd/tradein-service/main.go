package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"ms-tradein/internal/analytics"
	analytics_api "ms-tradein/internal/analytics/api"
	"ms-tradein/internal/auth"
	"ms-tradein/internal/config"
	"ms-tradein/internal/database"
	"ms-tradein/internal/database/migrations"
	"ms-tradein/internal/kafka"
	"ms-tradein/internal/logger"
	"ms-tradein/internal/models"
	"ms-tradein/internal/notify"
	"ms-tradein/internal/order"
	"ms-tradein/internal/order/order_api"
	orderredis "ms-tradein/internal/order/redis"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
	defer log.Close()

	log.Info("APP", "Starting Trade-in Service initialization")
	if envErr != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	ctx := context.Background()

	if cfg.Database.AutoMigrate {
		opts := migrations.Options{MigrationsDir: cfg.Database.MigrationsDir, AutoMigrate: true}
		if err := migrations.Apply(cfg.Database.DSN, opts, log); err != nil {
			log.Fatal("MIGRATE", err.Error())
		}
	}

	bunDB, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	redisClient, err := auth.NewRedisClient(cfg.Redis, log)
	if err != nil {
		log.Fatal("REDIS", err.Error())
	}
	defer redisClient.Close()

	lock := orderredis.NewRedis(redisClient, cfg.Redis.LockTTL, cfg.Redis.LockRetry, cfg.Redis.LockMaxWait, log)

	var publisher notify.Publisher
	if cfg.Kafka.Enabled {
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{cfg.Kafka.NotificationTopic}, log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic, log)
		defer producer.Close()
		publisher = producer
		log.Info("KAFKA", fmt.Sprintf("Publishing notifications to %s", cfg.Kafka.NotificationTopic))
	} else {
		publisher = notify.NewSender(notify.NewMailClient(cfg.Email, log))
		log.Warn("KAFKA", "Kafka disabled, sending notification emails in-process")
	}

	dispatcher := notify.NewDispatcher(publisher, cfg.Kafka.QueueSize, log)
	dispatcher.Start()

	policy := models.PaymentPolicy{AllowIndependentPaymentStatus: cfg.Payment.IndependentSetter}
	opts := order.Options{
		Policy:        policy,
		OfferTTL:      cfg.Offers.TTL,
		PublicBaseURL: cfg.Offers.PublicBaseURL,
	}
	if len(cfg.Recyclers.Emails) > 0 {
		opts.Recyclers = order.StaticRecyclerDirectory(cfg.Recyclers.Emails)
		log.Info("APP", fmt.Sprintf("Recycler notifications use %d configured addresses", len(cfg.Recyclers.Emails)))
	} else {
		log.Warn("APP", "RECYCLER_EMAILS not set, trusting recycler addresses sent with checkouts")
	}
	service := order.NewOrderService(order.NewBunStore(bunDB), lock, dispatcher, log, opts)
	log.Info("APP", fmt.Sprintf("Counter offers expire after %s; independent payment setter enabled: %t",
		cfg.Offers.TTL, policy.AllowIndependentPaymentStatus))

	verifier, err := newVerifier(ctx, cfg.Auth, log)
	if err != nil {
		log.Fatal("AUTH", err.Error())
	}

	handler := order_api.NewHandler(service, log)
	handler.Ready = func(ctx context.Context) error {
		if err := bunDB.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	}

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(order_api.RequestLogger(log))
	analyticsHandler := analytics_api.NewHandler(analytics.NewService(bunDB), log)
	order_api.RegisterRoutes(r, handler, auth.Middleware(verifier, log), analyticsHandler.RegisterRoutes)
	log.Info("ROUTER", "Trade-in and analytics routes registered under /api")

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go service.RunExpirySweep(sweepCtx, cfg.Offers.SweepInterval)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Trade-in Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	}
	stopSweep()
	if err := dispatcher.Close(ctxShutdown); err != nil {
		log.Warn("NOTIFY", err.Error())
	}
	log.Info("HTTP", "Trade-in Service shutdown complete")
}

// newVerifier prefers the identity provider and falls back to a shared HS256
// secret for local setups.
func newVerifier(ctx context.Context, cfg config.AuthConfig, log *logger.Logger) (auth.Verifier, error) {
	switch {
	case cfg.OIDCIssuer != "":
		log.Info("AUTH", fmt.Sprintf("Verifying bearer tokens against %s", cfg.OIDCIssuer))
		return auth.NewOIDCVerifier(ctx, cfg.OIDCIssuer)
	case cfg.JWTSecret != "":
		log.Warn("AUTH", "OIDC_ISSUER not set, verifying HS256 tokens with JWT_SECRET")
		return auth.NewHMACVerifier(cfg.JWTSecret), nil
	default:
		return nil, errors.New("either OIDC_ISSUER or JWT_SECRET must be set")
	}
}
