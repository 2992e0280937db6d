// cmd/worker/main.go
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/jkarimi/wacrm-backend/internal/config"
	"github.com/jkarimi/wacrm-backend/internal/db"
	"github.com/jkarimi/wacrm-backend/internal/logger"
	"github.com/jkarimi/wacrm-backend/internal/metrics"
	"github.com/jkarimi/wacrm-backend/internal/queue"
	"github.com/jkarimi/wacrm-backend/internal/repository"
	"github.com/jkarimi/wacrm-backend/internal/service"
)

func main() {
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

	dispatchQueue, err := queue.NewRabbitQueue(cfg.AMQPURL, cfg.DispatchQueue, log)
	if err != nil {
		log.Fatal("failed to connect to rabbitmq", zap.Error(err))
	}
	defer dispatchQueue.Close()

	batchRepo := repository.NewBatchRepository(database)
	messageRepo := repository.NewMessageRepository(database)

	dispatcher := &service.Dispatcher{
		BatchRepo:   batchRepo,
		MessageRepo: messageRepo,
		Sender:      service.NewSimulatedSender(cfg.SendDelay, cfg.SendSuccess),
		Logger:      log,
	}

	// Recovery sweep: return batches stuck in sending to pending and re-queue
	// a dispatch job for their owner.
	sweeper := cron.New()
	_, err = sweeper.AddFunc("@every 1m", func() {
		sweepCtx, sweepCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer sweepCancel()

		released, err := batchRepo.ReleaseStale(sweepCtx, time.Now().UTC().Add(-cfg.StaleAfter))
		if err != nil {
			log.Error("stale batch sweep failed", zap.Error(err))
			return
		}

		owners := map[string]bool{}
		for _, b := range released {
			metrics.StaleBatchesReleasedCounter.Inc()
			log.Warn("released stale batch",
				zap.String("batch_id", b.ID),
				zap.String("user_id", b.UserID),
			)
			owners[b.UserID] = true
		}
		for owner := range owners {
			if err := dispatchQueue.PublishDispatch(sweepCtx, owner); err != nil {
				log.Error("failed to re-queue dispatch after sweep",
					zap.String("user_id", owner), zap.Error(err))
			}
		}
	})
	if err != nil {
		log.Fatal("failed to schedule recovery sweep", zap.Error(err))
	}
	sweeper.Start()
	defer sweeper.Stop()

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(cfg.MetricsAddr, nil); err != nil {
			log.Error("metrics endpoint stopped", zap.Error(err))
		}
	}()

	log.Info("🚀 worker running, waiting for dispatch jobs",
		zap.String("queue", cfg.DispatchQueue))

	err = dispatchQueue.Consume(func(job queue.DispatchJob) error {
		return dispatcher.Run(context.Background(), job.UserID)
	})
	if err != nil {
		log.Fatal("consumer stopped", zap.Error(err))
	}
}
