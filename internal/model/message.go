// internal/model/message.go
package model

import "time"

// MessageStatus represents the delivery state of a single outbound message.
type MessageStatus string

const (
	MessageStatusPending MessageStatus = "pending"
	MessageStatusSent    MessageStatus = "sent"
	MessageStatusFailed  MessageStatus = "failed"
)

func (s MessageStatus) String() string { return string(s) }

// Message is one outbound unit belonging to exactly one batch. CustomerName
// and PhoneNumber are snapshots taken at batch creation, not live references.
// UserID is denormalized so dashboard counts can stay owner-scoped.
type Message struct {
	ID           string        `bson:"id" json:"id"`
	BatchID      string        `bson:"batch_id" json:"batch_id"`
	UserID       string        `bson:"user_id" json:"user_id"`
	CustomerID   string        `bson:"customer_id" json:"customer_id"`
	PhoneNumber  string        `bson:"phone_number" json:"phone_number"`
	CustomerName string        `bson:"customer_name" json:"customer_name"`
	Content      string        `bson:"message_content" json:"message_content"`
	Status       MessageStatus `bson:"status" json:"status"`
	// Seq is the message's position inside its batch; the dispatcher sends in
	// Seq order so a cycle is deterministic for auditing.
	Seq       int        `bson:"seq" json:"seq"`
	Error     string     `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	SentAt    *time.Time `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
}
