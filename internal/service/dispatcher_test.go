package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jkarimi/wacrm-backend/internal/model"
	"github.com/jkarimi/wacrm-backend/internal/service"
)

// scriptedSender records every call and fails the phones it is told to fail.
type scriptedSender struct {
	mu         sync.Mutex
	failPhones map[string]bool
	calls      []string
}

func (s *scriptedSender) Send(_ context.Context, phone, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, phone)
	if s.failPhones[phone] {
		return service.ErrNetworkTimeout
	}
	return nil
}

func (s *scriptedSender) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (env *batchEnv) dispatcher(sender service.Sender) *service.Dispatcher {
	return &service.Dispatcher{
		BatchRepo:   env.batches,
		MessageRepo: env.messages,
		Sender:      sender,
		Logger:      zap.NewNop(),
	}
}

func TestDispatcherCompletesAllBatches(t *testing.T) {
	env := newBatchEnv(t)
	ctx := context.Background()
	templateID, customerIDs := env.seedCampaign(t, 250, "Hello {{name}}")

	_, err := env.svc.CreateBatch(ctx, testUserID, templateID, customerIDs, 100, time.Now().UTC(), 5)
	require.NoError(t, err)

	sender := &scriptedSender{}
	require.NoError(t, env.dispatcher(sender).Run(ctx, testUserID))
	assert.Equal(t, 250, sender.callCount())

	batches, err := env.batches.ListByUser(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, batches, 3)
	for _, batch := range batches {
		assert.Equal(t, model.BatchStatusCompleted, batch.Status)
		assert.Equal(t, batch.CustomerCount, batch.SuccessCount)
		assert.Equal(t, 0, batch.FailedCount)
		assert.Equal(t, 0, batch.PendingCount)
		require.NotNil(t, batch.CompletedAt)

		pending, err := env.messages.ListPendingByBatch(ctx, batch.ID)
		require.NoError(t, err)
		assert.Empty(t, pending)
	}
}

func TestDispatcherRecordsSendFailures(t *testing.T) {
	env := newBatchEnv(t)
	ctx := context.Background()
	templateID, customerIDs := env.seedCampaign(t, 5, "Hello {{name}}")

	result, err := env.svc.CreateBatch(ctx, testUserID, templateID, customerIDs, 100, time.Now().UTC(), 5)
	require.NoError(t, err)
	batchID := result.Batches[0].ID

	sender := &scriptedSender{failPhones: map[string]bool{
		"+254700000001": true,
		"+254700000003": true,
	}}
	require.NoError(t, env.dispatcher(sender).Run(ctx, testUserID))

	batch, err := env.batches.GetByIDAndUser(ctx, batchID, testUserID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusFailed, batch.Status)
	assert.Equal(t, 3, batch.SuccessCount)
	assert.Equal(t, 2, batch.FailedCount)
	assert.Equal(t, 0, batch.PendingCount)

	msgs, err := env.messages.ListByBatch(ctx, batchID)
	require.NoError(t, err)
	for _, msg := range msgs {
		if sender.failPhones[msg.PhoneNumber] {
			assert.Equal(t, model.MessageStatusFailed, msg.Status)
			assert.Equal(t, "Network timeout", msg.Error)
			assert.Nil(t, msg.SentAt)
		} else {
			assert.Equal(t, model.MessageStatusSent, msg.Status)
			require.NotNil(t, msg.SentAt)
		}
	}
}

func TestDispatcherSendsInSeqOrderByPriority(t *testing.T) {
	env := newBatchEnv(t)
	ctx := context.Background()
	base := time.Now().UTC()

	// The older batch arrived first but the newer one was rescheduled to the
	// front of the queue.
	require.NoError(t, env.batches.InsertMany(ctx, []model.Batch{
		{ID: "slow", UserID: testUserID, Status: model.BatchStatusPending, Priority: 5, CreatedAt: base.Add(-time.Hour)},
		{ID: "urgent", UserID: testUserID, Status: model.BatchStatusPending, Priority: 1, CreatedAt: base},
	}))
	require.NoError(t, env.messages.InsertMany(ctx, []model.Message{
		{ID: "m-1", BatchID: "slow", UserID: testUserID, PhoneNumber: "slow-0", Seq: 0, Status: model.MessageStatusPending},
		{ID: "m-2", BatchID: "urgent", UserID: testUserID, PhoneNumber: "urgent-1", Seq: 1, Status: model.MessageStatusPending},
		{ID: "m-3", BatchID: "urgent", UserID: testUserID, PhoneNumber: "urgent-0", Seq: 0, Status: model.MessageStatusPending},
	}))

	sender := &scriptedSender{}
	require.NoError(t, env.dispatcher(sender).Run(ctx, testUserID))
	assert.Equal(t, []string{"urgent-0", "urgent-1", "slow-0"}, sender.calls)
}

func TestDispatcherClaimIsExclusive(t *testing.T) {
	env := newBatchEnv(t)
	ctx := context.Background()
	templateID, customerIDs := env.seedCampaign(t, 40, "Hello {{name}}")

	_, err := env.svc.CreateBatch(ctx, testUserID, templateID, customerIDs, 40, time.Now().UTC(), 5)
	require.NoError(t, err)

	sender := &scriptedSender{}
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = env.dispatcher(sender).Run(ctx, testUserID)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	// Both runners raced for the claim but each message went out exactly once.
	assert.Equal(t, 40, sender.callCount())
}

func TestDispatcherStopsOnStoreError(t *testing.T) {
	env := newBatchEnv(t)
	ctx := context.Background()
	templateID, customerIDs := env.seedCampaign(t, 5, "Hello {{name}}")

	result, err := env.svc.CreateBatch(ctx, testUserID, templateID, customerIDs, 100, time.Now().UTC(), 5)
	require.NoError(t, err)
	batchID := result.Batches[0].ID

	storeErr := errors.New("connection reset")
	env.messages.FailWith = storeErr

	err = env.dispatcher(&scriptedSender{}).Run(ctx, testUserID)
	require.ErrorIs(t, err, storeErr)

	// The claim went through, so the batch is parked in sending for the
	// recovery sweep to release.
	env.messages.FailWith = nil
	batch, err := env.batches.GetByIDAndUser(ctx, batchID, testUserID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusSending, batch.Status)
	require.NotNil(t, batch.ClaimedAt)
}

func TestDispatcherResumesReleasedBatch(t *testing.T) {
	env := newBatchEnv(t)
	ctx := context.Background()

	// A prior worker died mid-batch: two of four messages already sent.
	claimed := time.Now().UTC().Add(-10 * time.Minute)
	require.NoError(t, env.batches.InsertMany(ctx, []model.Batch{
		{ID: "batch-1", UserID: testUserID, Status: model.BatchStatusSending, Priority: 5, CustomerCount: 4, PendingCount: 4, CreatedAt: claimed, ClaimedAt: &claimed},
	}))
	sentAt := claimed.Add(time.Second)
	require.NoError(t, env.messages.InsertMany(ctx, []model.Message{
		{ID: "m-1", BatchID: "batch-1", UserID: testUserID, PhoneNumber: "p-0", Seq: 0, Status: model.MessageStatusSent, SentAt: &sentAt},
		{ID: "m-2", BatchID: "batch-1", UserID: testUserID, PhoneNumber: "p-1", Seq: 1, Status: model.MessageStatusSent, SentAt: &sentAt},
		{ID: "m-3", BatchID: "batch-1", UserID: testUserID, PhoneNumber: "p-2", Seq: 2, Status: model.MessageStatusPending},
		{ID: "m-4", BatchID: "batch-1", UserID: testUserID, PhoneNumber: "p-3", Seq: 3, Status: model.MessageStatusPending},
	}))

	released, err := env.batches.ReleaseStale(ctx, time.Now().UTC().Add(-5*time.Minute))
	require.NoError(t, err)
	require.Len(t, released, 1)

	sender := &scriptedSender{}
	require.NoError(t, env.dispatcher(sender).Run(ctx, testUserID))

	// Only the still-pending messages were resent.
	assert.Equal(t, []string{"p-2", "p-3"}, sender.calls)

	batch, err := env.batches.GetByIDAndUser(ctx, "batch-1", testUserID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, batch.Status)
	assert.Equal(t, 4, batch.SuccessCount)
	assert.Equal(t, 0, batch.FailedCount)
	assert.Equal(t, 0, batch.PendingCount)
}

func TestReleaseStaleSkipsFreshClaims(t *testing.T) {
	env := newBatchEnv(t)
	ctx := context.Background()

	fresh := time.Now().UTC()
	stale := fresh.Add(-10 * time.Minute)
	require.NoError(t, env.batches.InsertMany(ctx, []model.Batch{
		{ID: "fresh", UserID: testUserID, Status: model.BatchStatusSending, CreatedAt: fresh, ClaimedAt: &fresh},
		{ID: "stale", UserID: testUserID, Status: model.BatchStatusSending, CreatedAt: stale, ClaimedAt: &stale},
		{ID: "done", UserID: testUserID, Status: model.BatchStatusCompleted, CreatedAt: stale},
		// Finalized while still carrying its claim timestamp; a finished
		// batch must never be reported as released.
		{ID: "finished-mid-claim", UserID: testUserID, Status: model.BatchStatusCompleted, CreatedAt: stale, ClaimedAt: &stale},
	}))

	released, err := env.batches.ReleaseStale(ctx, fresh.Add(-5*time.Minute))
	require.NoError(t, err)
	require.Len(t, released, 1)
	assert.Equal(t, "stale", released[0].ID)
	// Reported batches carry their released state.
	assert.Equal(t, model.BatchStatusPending, released[0].Status)
	assert.Nil(t, released[0].ClaimedAt)

	batch, err := env.batches.GetByIDAndUser(ctx, "stale", testUserID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusPending, batch.Status)
	assert.Nil(t, batch.ClaimedAt)

	batch, err = env.batches.GetByIDAndUser(ctx, "fresh", testUserID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusSending, batch.Status)
}
