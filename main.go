package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"storefront-api/config"
	"storefront-api/database"
	"storefront-api/handlers"
	"storefront-api/middleware"
	"storefront-api/queue"
	"storefront-api/services/auth"
	"storefront-api/services/cart"
	"storefront-api/services/customizer"
	"storefront-api/services/email"
	"storefront-api/worker"
)

const orderQueueName = "order_jobs"

func newLogger() *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if os.Getenv("APP_ENV") == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func connectDatabase(cfg database.DatabaseConfig, logger *zap.Logger) (*database.Connection, error) {
	var (
		db  *database.Connection
		err error
	)
	for retries := 0; retries < 5; retries++ {
		db, err = database.NewConnection(cfg, logger)
		if err == nil {
			return db, nil
		}
		delay := time.Duration(retries+1) * time.Second
		logger.Warn("failed to connect to database, retrying",
			zap.Int("attempt", retries+1), zap.Duration("delay", delay), zap.Error(err))
		time.Sleep(delay)
	}
	return nil, err
}

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg := config.Load(logger)

	db, err := connectDatabase(cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to database after retries", zap.Error(err))
	}
	defer db.Close()
	logger.Info("connected to database")

	jobQueue, err := queue.NewQueue(cfg.Redis.URL, orderQueueName, logger)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer jobQueue.Close()
	logger.Info("connected to redis")

	var sender email.EmailSender
	if cfg.SMTP.Configured() {
		sender = email.NewSMTPService(cfg.SMTP)
	} else {
		logger.Warn("SMTP not configured, order confirmations will only be logged")
		sender = email.NewLogSender(logger)
	}

	orderWorker := worker.NewWorker(jobQueue, sender, logger)
	orderWorker.Start(cfg.Redis.WorkerConcurrency)
	defer orderWorker.Stop()

	rules := customizer.Rules{
		MaxChars:    cfg.Customizer.MaxChars,
		MaxWords:    cfg.Customizer.MaxWords,
		MinQuantity: cfg.Customizer.MinQuantity,
	}

	visitors := handlers.NewVisitors(handlers.VisitorConfig{
		Store: handlers.NewCookieStore(handlers.SessionOptions{
			Secret: cfg.Session.Secret,
			Domain: cfg.Session.Domain,
			MaxAge: cfg.Session.MaxAge,
			Secure: cfg.Session.Secure,
		}),
		Catalog: db,
		CustomHat: cart.CustomHatProduct{
			Name:  cfg.CustomHat.Name,
			Price: cfg.CustomHat.Price,
			Image: cfg.CustomHat.Image,
		},
		Notifier:        queue.NewOrderNotifier(jobQueue),
		ProcessingDelay: cfg.Checkout.ProcessingDelay,
		Logger:          logger,
	})

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, db)
	trusted, err := middleware.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Fatal("invalid TRUSTED_PROXIES", zap.Error(err))
	}
	limiter := middleware.NewRateLimiter(jobQueue.Client(), trusted, logger)

	router := handlers.NewRouter(handlers.Routes{
		Cart:          handlers.NewCartHandler(visitors, rules, logger),
		Checkout:      handlers.NewCheckoutHandler(visitors, logger),
		Orders:        handlers.NewOrderHandler(visitors),
		Products:      handlers.NewProductHandler(db, logger),
		Auth:          handlers.NewAuthHandler(jwtService, logger),
		AdminProducts: handlers.NewAdminProductHandler(db, logger),
		Health: handlers.NewHealthHandler(map[string]handlers.PingFunc{
			"database": db.Ping,
			"redis": func(ctx context.Context) error {
				return jobQueue.Client().Ping(ctx).Err()
			},
		}, logger),
		AdminQueue:    handlers.NewAdminQueueHandler(jobQueue, logger),
		Tokens:        jwtService,
		RateLimit:     limiter.RateLimitMiddleware(),
		AllowedOrigin: cfg.Server.AllowedOrigin,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	orderWorker.Stop()

	logger.Info("server exited")
}
