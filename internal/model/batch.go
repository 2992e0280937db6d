// internal/model/batch.go
package model

import "time"

// BatchStatus represents the lifecycle state of a batch.
type BatchStatus string

const (
	BatchStatusPending   BatchStatus = "pending"
	BatchStatusSending   BatchStatus = "sending"
	BatchStatusCompleted BatchStatus = "completed"
	BatchStatusFailed    BatchStatus = "failed"
)

func (s BatchStatus) String() string { return string(s) }

// Terminal reports whether no further dispatch cycle may claim the batch.
// A failed batch is only re-claimable after an explicit reschedule.
func (s BatchStatus) Terminal() bool {
	return s == BatchStatusCompleted || s == BatchStatusFailed
}

// Batch is one bounded chunk of a campaign. Its messages are created with it
// and never added later.
type Batch struct {
	ID            string      `bson:"id" json:"id"`
	UserID        string      `bson:"user_id" json:"user_id"`
	TemplateID    string      `bson:"template_id" json:"template_id"`
	BatchNumber   int         `bson:"batch_number" json:"batch_number"`
	TotalBatches  int         `bson:"total_batches" json:"total_batches"`
	CustomerCount int         `bson:"customer_count" json:"customer_count"`
	BatchSize     int         `bson:"batch_size" json:"batch_size"`
	StartTime     time.Time   `bson:"start_time" json:"start_time"`
	Status        BatchStatus `bson:"status" json:"status"`
	Priority      int         `bson:"priority" json:"priority"`
	SuccessCount  int         `bson:"success_count" json:"success_count"`
	FailedCount   int         `bson:"failed_count" json:"failed_count"`
	PendingCount  int         `bson:"pending_count" json:"pending_count"`
	CreatedAt     time.Time   `bson:"created_at" json:"created_at"`
	ClaimedAt     *time.Time  `bson:"claimed_at,omitempty" json:"claimed_at,omitempty"`
	CompletedAt   *time.Time  `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}
