// internal/service/splitter.go
package service

import (
	"math"

	appErrors "github.com/jkarimi/wacrm-backend/internal/errors"
	"github.com/jkarimi/wacrm-backend/internal/model"
)

// Linear projection constants, policy knobs rather than guarantees.
const (
	splitSecondsPerCustomer      = 0.01
	completionSecondsPerCustomer = 2.0
)

// SplitEstimate is the projected shape of a campaign before it is created.
type SplitEstimate struct {
	TotalCustomers             int     `json:"total_customers"`
	BatchSize                  int     `json:"batch_size"`
	TotalBatches               int     `json:"total_batches"`
	SplitTimeSeconds           float64 `json:"split_time_seconds"`
	EstimatedCompletionMinutes float64 `json:"estimated_completion_minutes"`
}

// EstimateSplit computes batch count and timing projections without touching
// any store.
func EstimateSplit(totalCustomers, batchSize int) (SplitEstimate, error) {
	if batchSize <= 0 {
		return SplitEstimate{}, appErrors.InvalidArgument("batch_size must be positive, got %d", batchSize)
	}
	if totalCustomers < 0 {
		return SplitEstimate{}, appErrors.InvalidArgument("total_customers cannot be negative, got %d", totalCustomers)
	}

	totalBatches := (totalCustomers + batchSize - 1) / batchSize
	return SplitEstimate{
		TotalCustomers:             totalCustomers,
		BatchSize:                  batchSize,
		TotalBatches:               totalBatches,
		SplitTimeSeconds:           round2(float64(totalCustomers) * splitSecondsPerCustomer),
		EstimatedCompletionMinutes: round2(float64(totalCustomers) * completionSecondsPerCustomer / 60),
	}, nil
}

// SplitCustomers partitions an ordered customer list into contiguous chunks of
// at most batchSize. The last chunk may be shorter; empty input yields zero
// chunks.
func SplitCustomers(customers []model.Customer, batchSize int) ([][]model.Customer, error) {
	if batchSize <= 0 {
		return nil, appErrors.InvalidArgument("batch_size must be positive, got %d", batchSize)
	}

	chunks := [][]model.Customer{}
	for start := 0; start < len(customers); start += batchSize {
		end := start + batchSize
		if end > len(customers) {
			end = len(customers)
		}
		chunks = append(chunks, customers[start:end])
	}
	return chunks, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
