// internal/service/dispatcher.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jkarimi/wacrm-backend/internal/metrics"
	"github.com/jkarimi/wacrm-backend/internal/model"
	"github.com/jkarimi/wacrm-backend/internal/repository"
)

// Dispatcher drains pending batches for one owner at a time. Each cycle
// claims a single batch (atomic pending→sending), sends its pending messages
// sequentially, then finalizes the batch from the per-message outcomes.
type Dispatcher struct {
	BatchRepo   repository.BatchRepositoryInterface
	MessageRepo repository.MessageRepositoryInterface
	Sender      Sender
	Logger      *zap.Logger
}

// Run processes pending batches for the owner until none remain. Store errors
// abort the loop and propagate; the claimed batch is then left in sending for
// the recovery sweep. Send failures are recorded per message and never abort
// a cycle. Cancellation is cooperative and only checked between cycles.
func (d *Dispatcher) Run(ctx context.Context, userID string) error {
	for {
		batch, err := d.BatchRepo.ClaimNextPending(ctx, userID, time.Now().UTC())
		if err != nil {
			return err
		}
		if batch == nil {
			return nil
		}

		if err := d.processBatch(ctx, batch); err != nil {
			d.Logger.Error("dispatch cycle aborted",
				zap.String("batch_id", batch.ID),
				zap.Error(err),
			)
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

func (d *Dispatcher) processBatch(ctx context.Context, batch *model.Batch) error {
	started := time.Now()

	pending, err := d.MessageRepo.ListPendingByBatch(ctx, batch.ID)
	if err != nil {
		return err
	}

	// One message in flight at a time, in seq order.
	for _, msg := range pending {
		if sendErr := d.Sender.Send(ctx, msg.PhoneNumber, msg.Content); sendErr != nil {
			if err := d.MessageRepo.MarkFailed(ctx, msg.ID, sendErr.Error()); err != nil {
				return err
			}
			metrics.MessagesFailedCounter.Inc()
			continue
		}
		if err := d.MessageRepo.MarkSent(ctx, msg.ID, time.Now().UTC()); err != nil {
			return err
		}
		metrics.MessagesSentCounter.Inc()
	}

	// Recount from the store instead of trusting in-memory tallies, so a
	// batch resumed after a crash still finalizes with consistent counts.
	sent, err := d.MessageRepo.CountByBatchAndStatus(ctx, batch.ID, model.MessageStatusSent)
	if err != nil {
		return err
	}
	failed, err := d.MessageRepo.CountByBatchAndStatus(ctx, batch.ID, model.MessageStatusFailed)
	if err != nil {
		return err
	}

	status := model.BatchStatusCompleted
	if failed > 0 {
		status = model.BatchStatusFailed
	}
	if err := d.BatchRepo.Finalize(ctx, batch.ID, status, int(sent), int(failed), time.Now().UTC()); err != nil {
		return err
	}

	metrics.BatchesDispatchedCounter.WithLabelValues(status.String()).Inc()
	metrics.DispatchCycleDurationHist.Observe(time.Since(started).Seconds())

	d.Logger.Info("batch dispatched",
		zap.String("batch_id", batch.ID),
		zap.String("user_id", batch.UserID),
		zap.String("status", status.String()),
		zap.Int64("sent", sent),
		zap.Int64("failed", failed),
	)
	return nil
}
