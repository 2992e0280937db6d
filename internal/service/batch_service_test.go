package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/jkarimi/wacrm-backend/internal/errors"
	"github.com/jkarimi/wacrm-backend/internal/model"
	"github.com/jkarimi/wacrm-backend/internal/repository/memory"
	"github.com/jkarimi/wacrm-backend/internal/service"
)

const testUserID = "user-1"

type batchEnv struct {
	batches   *memory.BatchStore
	messages  *memory.MessageStore
	customers *memory.CustomerStore
	templates *memory.TemplateStore
	svc       *service.BatchService
}

func newBatchEnv(t *testing.T) *batchEnv {
	t.Helper()
	env := &batchEnv{
		batches:   memory.NewBatchStore(),
		messages:  memory.NewMessageStore(),
		customers: memory.NewCustomerStore(),
		templates: memory.NewTemplateStore(),
	}
	env.svc = &service.BatchService{
		BatchRepo:    env.batches,
		MessageRepo:  env.messages,
		CustomerRepo: env.customers,
		TemplateRepo: env.templates,
		Logger:       zap.NewNop(),
	}
	return env
}

// seedCampaign loads n customers and one template, returning the template ID
// and the customer IDs in upload order.
func (env *batchEnv) seedCampaign(t *testing.T, n int, templateContent string) (string, []string) {
	t.Helper()
	ctx := context.Background()

	customers := make([]model.Customer, n)
	ids := make([]string, n)
	for i := range customers {
		customers[i] = model.Customer{
			ID:     fmt.Sprintf("c-%03d", i),
			UserID: testUserID,
			Name:   fmt.Sprintf("Customer %d", i),
			Phone:  fmt.Sprintf("+2547%08d", i),
		}
		ids[i] = customers[i].ID
	}
	require.NoError(t, env.customers.InsertMany(ctx, customers))

	tmpl := &model.Template{
		ID:           "tmpl-1",
		UserID:       testUserID,
		Name:         "promo",
		Content:      templateContent,
		Placeholders: service.ExtractPlaceholders(templateContent),
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, env.templates.Insert(ctx, tmpl))
	return tmpl.ID, ids
}

func TestCreateBatchSplitsCustomers(t *testing.T) {
	env := newBatchEnv(t)
	ctx := context.Background()
	templateID, customerIDs := env.seedCampaign(t, 250, "Hello {{name}}!")

	result, err := env.svc.CreateBatch(ctx, testUserID, templateID, customerIDs, 100, time.Now().UTC(), 5)
	require.NoError(t, err)
	require.Len(t, result.Batches, 3)
	assert.Equal(t, "Created 3 batches successfully", result.Message)

	wantCounts := []int{100, 100, 50}
	for i, batch := range result.Batches {
		assert.Equal(t, i+1, batch.BatchNumber)
		assert.Equal(t, 3, batch.TotalBatches)
		assert.Equal(t, wantCounts[i], batch.CustomerCount)
		assert.Equal(t, model.BatchStatusPending, batch.Status)
		assert.Equal(t, 5, batch.Priority)

		// Counts invariant holds from the moment of creation.
		assert.Equal(t, 0, batch.SuccessCount)
		assert.Equal(t, 0, batch.FailedCount)
		assert.Equal(t, wantCounts[i], batch.PendingCount)

		msgs, err := env.messages.ListByBatch(ctx, batch.ID)
		require.NoError(t, err)
		require.Len(t, msgs, wantCounts[i])
		for seq, msg := range msgs {
			assert.Equal(t, seq, msg.Seq)
			assert.Equal(t, testUserID, msg.UserID)
			assert.Equal(t, model.MessageStatusPending, msg.Status)
		}
	}
}

func TestCreateBatchRendersPerCustomer(t *testing.T) {
	env := newBatchEnv(t)
	ctx := context.Background()
	templateID, customerIDs := env.seedCampaign(t, 2, "Hi {{name}}, call us at {{phone}}")

	result, err := env.svc.CreateBatch(ctx, testUserID, templateID, customerIDs, 100, time.Now().UTC(), 5)
	require.NoError(t, err)
	require.Len(t, result.Batches, 1)

	msgs, err := env.messages.ListByBatch(ctx, result.Batches[0].ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Hi Customer 0, call us at +254700000000", msgs[0].Content)
	assert.Equal(t, "Hi Customer 1, call us at +254700000001", msgs[1].Content)
}

func TestCreateBatchUnknownTemplate(t *testing.T) {
	env := newBatchEnv(t)
	_, customerIDs := env.seedCampaign(t, 5, "Hello {{name}}")

	_, err := env.svc.CreateBatch(context.Background(), testUserID, "no-such-template", customerIDs, 100, time.Now().UTC(), 5)
	require.Error(t, err)
	assert.True(t, appErrors.IsNotFound(err))
}

func TestCreateBatchNoCustomersResolved(t *testing.T) {
	env := newBatchEnv(t)
	templateID, _ := env.seedCampaign(t, 5, "Hello {{name}}")

	_, err := env.svc.CreateBatch(context.Background(), testUserID, templateID, []string{"ghost-1", "ghost-2"}, 100, time.Now().UTC(), 5)
	require.Error(t, err)
	assert.True(t, appErrors.IsNotFound(err))
}

func TestCreateBatchDropsUnresolvedCustomers(t *testing.T) {
	env := newBatchEnv(t)
	ctx := context.Background()
	templateID, customerIDs := env.seedCampaign(t, 3, "Hello {{name}}")

	requested := append([]string{"ghost-1"}, customerIDs...)
	result, err := env.svc.CreateBatch(ctx, testUserID, templateID, requested, 100, time.Now().UTC(), 5)
	require.NoError(t, err)
	require.Len(t, result.Batches, 1)
	assert.Equal(t, 3, result.Batches[0].CustomerCount)
}

func TestCreateBatchRejectsBadBatchSize(t *testing.T) {
	env := newBatchEnv(t)
	templateID, customerIDs := env.seedCampaign(t, 3, "Hello {{name}}")

	_, err := env.svc.CreateBatch(context.Background(), testUserID, templateID, customerIDs, 0, time.Now().UTC(), 5)
	assert.True(t, appErrors.IsInvalidArgument(err))
}

func TestRescheduleBatchResetsFailedMessages(t *testing.T) {
	env := newBatchEnv(t)
	ctx := context.Background()

	batch := model.Batch{
		ID:            "batch-1",
		UserID:        testUserID,
		Status:        model.BatchStatusFailed,
		Priority:      5,
		CustomerCount: 3,
		SuccessCount:  1,
		FailedCount:   2,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, env.batches.InsertMany(ctx, []model.Batch{batch}))
	require.NoError(t, env.messages.InsertMany(ctx, []model.Message{
		{ID: "m-1", BatchID: batch.ID, UserID: testUserID, Seq: 0, Status: model.MessageStatusSent},
		{ID: "m-2", BatchID: batch.ID, UserID: testUserID, Seq: 1, Status: model.MessageStatusFailed, Error: "Network timeout"},
		{ID: "m-3", BatchID: batch.ID, UserID: testUserID, Seq: 2, Status: model.MessageStatusFailed, Error: "Network timeout"},
	}))

	require.NoError(t, env.svc.RescheduleBatch(ctx, batch.ID, testUserID))

	got, err := env.batches.GetByIDAndUser(ctx, batch.ID, testUserID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.BatchStatusPending, got.Status)
	assert.Equal(t, 1, got.Priority)
	assert.Equal(t, 2, got.PendingCount)
	assert.Equal(t, 0, got.FailedCount)

	msgs, err := env.messages.ListByBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MessageStatusSent, msgs[0].Status)
	for _, m := range msgs[1:] {
		assert.Equal(t, model.MessageStatusPending, m.Status)
		assert.Empty(t, m.Error)
	}
}

func TestRescheduleBatchRejectsCompleted(t *testing.T) {
	env := newBatchEnv(t)
	ctx := context.Background()
	require.NoError(t, env.batches.InsertMany(ctx, []model.Batch{
		{ID: "batch-1", UserID: testUserID, Status: model.BatchStatusCompleted, CreatedAt: time.Now().UTC()},
	}))

	err := env.svc.RescheduleBatch(ctx, "batch-1", testUserID)
	require.Error(t, err)
	assert.True(t, appErrors.IsInvalidArgument(err))
}

func TestRescheduleBatchNotFound(t *testing.T) {
	env := newBatchEnv(t)
	err := env.svc.RescheduleBatch(context.Background(), "nope", testUserID)
	assert.True(t, appErrors.IsNotFound(err))
}

func TestListBatchesNewestFirst(t *testing.T) {
	env := newBatchEnv(t)
	ctx := context.Background()
	base := time.Now().UTC()
	require.NoError(t, env.batches.InsertMany(ctx, []model.Batch{
		{ID: "old", UserID: testUserID, Status: model.BatchStatusCompleted, CreatedAt: base.Add(-time.Hour)},
		{ID: "new", UserID: testUserID, Status: model.BatchStatusPending, CreatedAt: base},
		{ID: "other", UserID: "someone-else", Status: model.BatchStatusPending, CreatedAt: base},
	}))

	got, err := env.svc.ListBatches(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "old", got[1].ID)
}
