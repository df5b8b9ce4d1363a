package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant-service/config"
	"restaurant-service/internal/api"
	"restaurant-service/internal/broker"
	"restaurant-service/internal/redisclient"
	"restaurant-service/internal/service"
	"restaurant-service/internal/store"
	"restaurant-service/internal/util"
	"restaurant-service/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting restaurant service",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port))

	tp, err := util.InitTracer(util.ServiceName, cfg.Observ.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	if tp != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				logger.Error("Error shutting down tracer", zap.Error(err))
			}
		}()
	}

	db, err := store.NewStore(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(context.Background()); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
		logger.Info("Database schema migrated")
	}

	checks := map[string]api.Pinger{"database": db}

	var guard service.SubmissionGuard
	if cfg.Redis.Addr != "" {
		redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		guard = redisClient
		checks["redis"] = redisClient
		logger.Info("Redis connected")
	}

	var writer broker.MessageWriter = broker.NopWriter{}
	if cfg.Kafka.Enabled() {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
		defer producer.Close()
		writer = producer
		logger.Info("Kafka producer initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
	}
	eventPublisher := broker.NewEventPublisher(writer)

	clock := service.SystemClock{}
	services := api.Services{
		Orders:     service.NewOrderService(db, guard, eventPublisher, clock, cfg.Business.IdempotencyTTL),
		Products:   service.NewProductService(db, clock),
		Customers:  service.NewCustomerService(db, clock),
		Categories: service.NewCategoryService(db),
		Couriers:   service.NewCourierService(db, clock),
		Payments:   service.NewPaymentService(db, clock),
		Users:      service.NewUserService(db, clock),
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var stockWorker *worker.StockAlertWorker
	if cfg.Kafka.Enabled() {
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder, cfg.Kafka.ConsumerGroup)
		stockWorker = worker.NewStockAlertWorker(consumer, db, eventPublisher, cfg.Business.LowStockThreshold)
		go func() {
			if err := stockWorker.Start(workerCtx); err != nil {
				logger.Error("Stock alert worker error", zap.Error(err))
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var limiter *rate.Limiter
	if cfg.Server.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimitRPS), cfg.Server.RateLimitBurst)
	}

	router := gin.New()
	handler := api.NewHandler(services, checks, limiter)
	handler.SetLowStockThreshold(cfg.Business.LowStockThreshold)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if stockWorker != nil {
		if err := stockWorker.Stop(); err != nil {
			logger.Warn("Failed to stop stock alert worker", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}
