// internal/service/batch_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/jkarimi/wacrm-backend/internal/errors"
	"github.com/jkarimi/wacrm-backend/internal/model"
	"github.com/jkarimi/wacrm-backend/internal/repository"
)

// BatchService is the batch lifecycle manager: it creates batch campaigns,
// lists them, exposes their messages and resets failed batches for retry.
// Dispatch itself lives in Dispatcher; triggering it is the caller's job.
type BatchService struct {
	BatchRepo    repository.BatchRepositoryInterface
	MessageRepo  repository.MessageRepositoryInterface
	CustomerRepo repository.CustomerRepositoryInterface
	TemplateRepo repository.TemplateRepositoryInterface
	Logger       *zap.Logger
}

// CreateBatchResult is what POST /batches/create returns.
type CreateBatchResult struct {
	Message string        `json:"message"`
	Batches []model.Batch `json:"batches"`
}

// CreateBatch resolves the template and customers, splits the customers into
// contiguous chunks and persists one pending batch plus its messages per
// chunk. Customers that do not resolve are dropped; zero resolved customers
// is an error, not an empty campaign.
func (s *BatchService) CreateBatch(ctx context.Context, userID, templateID string, customerIDs []string, batchSize int, startTime time.Time, priority int) (*CreateBatchResult, error) {
	if batchSize <= 0 {
		return nil, appErrors.InvalidArgument("batch_size must be positive, got %d", batchSize)
	}

	template, err := s.TemplateRepo.GetByIDAndUser(ctx, templateID, userID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, appErrors.NotFound("Template not found")
	}

	customers, err := s.CustomerRepo.FindByIDs(ctx, userID, customerIDs)
	if err != nil {
		return nil, err
	}
	if len(customers) == 0 {
		return nil, appErrors.NotFound("No customers found")
	}

	chunks, err := SplitCustomers(customers, batchSize)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	batches := make([]model.Batch, 0, len(chunks))
	messages := make([]model.Message, 0, len(customers))

	for i, chunk := range chunks {
		batch := model.Batch{
			ID:            uuid.NewString(),
			UserID:        userID,
			TemplateID:    templateID,
			BatchNumber:   i + 1,
			TotalBatches:  len(chunks),
			CustomerCount: len(chunk),
			BatchSize:     batchSize,
			StartTime:     startTime,
			Status:        model.BatchStatusPending,
			Priority:      priority,
			SuccessCount:  0,
			FailedCount:   0,
			PendingCount:  len(chunk),
			CreatedAt:     now,
		}
		batches = append(batches, batch)

		for seq, customer := range chunk {
			messages = append(messages, model.Message{
				ID:           uuid.NewString(),
				BatchID:      batch.ID,
				UserID:       userID,
				CustomerID:   customer.ID,
				PhoneNumber:  customer.Phone,
				CustomerName: customer.Name,
				Content:      RenderTemplate(template.Content, customer.Record()),
				Status:       model.MessageStatusPending,
				Seq:          seq,
				CreatedAt:    now,
			})
		}
	}

	if err := s.BatchRepo.InsertMany(ctx, batches); err != nil {
		return nil, err
	}
	if err := s.MessageRepo.InsertMany(ctx, messages); err != nil {
		return nil, err
	}

	s.Logger.Info("batch campaign created",
		zap.String("user_id", userID),
		zap.String("template_id", templateID),
		zap.Int("batches", len(batches)),
		zap.Int("messages", len(messages)),
	)

	return &CreateBatchResult{
		Message: fmt.Sprintf("Created %d batches successfully", len(batches)),
		Batches: batches,
	}, nil
}

// ListBatches returns the owner's batches, newest-created first.
func (s *BatchService) ListBatches(ctx context.Context, userID string) ([]model.Batch, error) {
	return s.BatchRepo.ListByUser(ctx, userID)
}

// GetBatchMessages returns every message of a batch in send order.
func (s *BatchService) GetBatchMessages(ctx context.Context, batchID string) ([]model.Message, error) {
	return s.MessageRepo.ListByBatch(ctx, batchID)
}

// RescheduleBatch retries a failed batch: its failed messages go back to
// pending with their error cleared, and the batch re-enters the pending queue
// at top priority. Sent messages are untouched. Completed batches are
// terminal and cannot be rescheduled.
func (s *BatchService) RescheduleBatch(ctx context.Context, batchID, userID string) error {
	batch, err := s.BatchRepo.GetByIDAndUser(ctx, batchID, userID)
	if err != nil {
		return err
	}
	if batch == nil {
		return appErrors.NotFound("Batch not found")
	}
	if batch.Status == model.BatchStatusCompleted {
		return appErrors.InvalidArgument("completed batch cannot be rescheduled")
	}

	reset, err := s.MessageRepo.ResetFailed(ctx, batchID)
	if err != nil {
		return err
	}
	if err := s.BatchRepo.Reschedule(ctx, batchID, int(reset)); err != nil {
		return err
	}

	s.Logger.Info("batch rescheduled",
		zap.String("batch_id", batchID),
		zap.String("user_id", userID),
		zap.Int64("messages_reset", reset),
	)
	return nil
}
