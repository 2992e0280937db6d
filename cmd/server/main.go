// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jkarimi/wacrm-backend/internal/config"
	"github.com/jkarimi/wacrm-backend/internal/db"
	"github.com/jkarimi/wacrm-backend/internal/handler"
	"github.com/jkarimi/wacrm-backend/internal/logger"
	"github.com/jkarimi/wacrm-backend/internal/queue"
	"github.com/jkarimi/wacrm-backend/internal/repository"
	"github.com/jkarimi/wacrm-backend/internal/service"
)

func main() {
	// Missing .env is fine; deployed environments set real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoTimeout)
	database, err := db.Connect(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatal("failed to connect to mongo", zap.Error(err))
	}
	defer database.Client().Disconnect(context.Background())

	if err := db.EnsureIndexes(context.Background(), database); err != nil {
		log.Fatal("failed to create indexes", zap.Error(err))
	}

	dispatchQueue, err := queue.NewRabbitQueue(cfg.AMQPURL, cfg.DispatchQueue, log)
	if err != nil {
		log.Fatal("failed to connect to rabbitmq", zap.Error(err))
	}
	defer dispatchQueue.Close()

	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer cache.Close()
	}

	userRepo := repository.NewUserRepository(database)
	customerRepo := repository.NewCustomerRepository(database)
	templateRepo := repository.NewTemplateRepository(database)
	batchRepo := repository.NewBatchRepository(database)
	messageRepo := repository.NewMessageRepository(database)

	authService := &service.AuthService{
		UserRepo:      userRepo,
		Secret:        []byte(cfg.JWTSecret),
		TokenLifetime: cfg.TokenLifetime,
	}
	batchService := &service.BatchService{
		BatchRepo:    batchRepo,
		MessageRepo:  messageRepo,
		CustomerRepo: customerRepo,
		TemplateRepo: templateRepo,
		Logger:       log,
	}
	customerService := &service.CustomerService{CustomerRepo: customerRepo}
	templateService := &service.TemplateService{TemplateRepo: templateRepo}
	dashboardService := &service.DashboardService{
		CustomerRepo: customerRepo,
		MessageRepo:  messageRepo,
		BatchRepo:    batchRepo,
		TemplateRepo: templateRepo,
		Cache:        cache,
		CacheTTL:     cfg.DashboardTTL,
	}

	router := handler.NewRouter(handler.Handlers{
		Auth:      &handler.AuthHandler{AuthService: authService},
		Batch:     &handler.BatchHandler{BatchService: batchService, Queue: dispatchQueue, Logger: log},
		Customer:  &handler.CustomerHandler{CustomerService: customerService},
		Template:  &handler.TemplateHandler{TemplateService: templateService},
		Dashboard: &handler.DashboardHandler{DashboardService: dashboardService},
	}, authService)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Info("🚀 server running", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	log.Info("server stopped")
}
