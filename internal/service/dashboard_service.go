// internal/service/dashboard_service.go
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jkarimi/wacrm-backend/internal/model"
	"github.com/jkarimi/wacrm-backend/internal/repository"
)

// DashboardStats aggregates store counts for one owner. Message counts are
// owner-scoped here; the once-global scoping was an accident of messages not
// carrying an owner field.
type DashboardStats struct {
	TotalCustomers int64 `json:"total_customers"`
	MessagesSent   int64 `json:"messages_sent"`
	MessagesFailed int64 `json:"messages_failed"`
	ActiveBatches  int64 `json:"active_batches"`
	TemplatesCount int64 `json:"templates_count"`
}

// DashboardService computes per-owner stats, with an optional short-lived
// Redis cache in front of the counts. A nil Cache disables caching.
type DashboardService struct {
	CustomerRepo repository.CustomerRepositoryInterface
	MessageRepo  repository.MessageRepositoryInterface
	BatchRepo    repository.BatchRepositoryInterface
	TemplateRepo repository.TemplateRepositoryInterface
	Cache        *redis.Client
	CacheTTL     time.Duration
}

func (s *DashboardService) GetStats(ctx context.Context, userID string) (*DashboardStats, error) {
	cacheKey := "dashboard:stats:" + userID

	if s.Cache != nil {
		if raw, err := s.Cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var stats DashboardStats
			if json.Unmarshal(raw, &stats) == nil {
				return &stats, nil
			}
		}
	}

	stats := &DashboardStats{}
	var err error

	if stats.TotalCustomers, err = s.CustomerRepo.CountByUser(ctx, userID); err != nil {
		return nil, err
	}
	if stats.MessagesSent, err = s.MessageRepo.CountByUserAndStatus(ctx, userID, model.MessageStatusSent); err != nil {
		return nil, err
	}
	if stats.MessagesFailed, err = s.MessageRepo.CountByUserAndStatus(ctx, userID, model.MessageStatusFailed); err != nil {
		return nil, err
	}
	if stats.ActiveBatches, err = s.BatchRepo.CountActiveByUser(ctx, userID); err != nil {
		return nil, err
	}
	if stats.TemplatesCount, err = s.TemplateRepo.CountByUser(ctx, userID); err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			// Best effort; a cache write failure never fails the read.
			s.Cache.Set(ctx, cacheKey, raw, s.CacheTTL)
		}
	}

	return stats, nil
}
