// Package memory holds in-memory repository implementations that mirror the
// MongoDB query semantics. Service and dispatcher tests run against these so
// they can exercise real store behavior (atomic claims, bulk resets, sorted
// reads) without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jkarimi/wacrm-backend/internal/model"
	"github.com/jkarimi/wacrm-backend/internal/repository"
)

// BatchStore is an in-memory BatchRepositoryInterface.
type BatchStore struct {
	mu      sync.Mutex
	batches map[string]*model.Batch
	order   []string // insertion order, for stable tie-breaks

	// FailWith, when set, is returned by every operation. Lets tests assert
	// the dispatcher stops on store errors.
	FailWith error
}

func NewBatchStore() *BatchStore {
	return &BatchStore{batches: make(map[string]*model.Batch)}
}

func (s *BatchStore) InsertMany(_ context.Context, batches []model.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	for i := range batches {
		b := batches[i]
		s.batches[b.ID] = &b
		s.order = append(s.order, b.ID)
	}
	return nil
}

func (s *BatchStore) ListByUser(_ context.Context, userID string) ([]model.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	out := []model.Batch{}
	for _, id := range s.order {
		if b := s.batches[id]; b.UserID == userID {
			out = append(out, *b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *BatchStore) GetByIDAndUser(_ context.Context, id, userID string) (*model.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	b, ok := s.batches[id]
	if !ok || b.UserID != userID {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (s *BatchStore) ClaimNextPending(_ context.Context, userID string, claimedAt time.Time) (*model.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	var best *model.Batch
	for _, id := range s.order {
		b := s.batches[id]
		if b.UserID != userID || b.Status != model.BatchStatusPending {
			continue
		}
		if best == nil ||
			b.Priority < best.Priority ||
			(b.Priority == best.Priority && b.CreatedAt.Before(best.CreatedAt)) {
			best = b
		}
	}
	if best == nil {
		return nil, nil
	}
	best.Status = model.BatchStatusSending
	at := claimedAt
	best.ClaimedAt = &at
	copied := *best
	return &copied, nil
}

func (s *BatchStore) Finalize(_ context.Context, id string, status model.BatchStatus, successCount, failedCount int, completedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if b, ok := s.batches[id]; ok {
		b.Status = status
		b.SuccessCount = successCount
		b.FailedCount = failedCount
		b.PendingCount = 0
		at := completedAt
		b.CompletedAt = &at
	}
	return nil
}

func (s *BatchStore) Reschedule(_ context.Context, id string, pendingCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if b, ok := s.batches[id]; ok {
		b.Status = model.BatchStatusPending
		b.Priority = 1
		b.FailedCount = 0
		b.PendingCount = pendingCount
	}
	return nil
}

func (s *BatchStore) ReleaseStale(_ context.Context, cutoff time.Time) ([]model.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	released := []model.Batch{}
	for _, id := range s.order {
		b := s.batches[id]
		if b.Status == model.BatchStatusSending && b.ClaimedAt != nil && b.ClaimedAt.Before(cutoff) {
			b.Status = model.BatchStatusPending
			b.ClaimedAt = nil
			released = append(released, *b)
		}
	}
	if len(released) == 0 {
		return nil, nil
	}
	return released, nil
}

func (s *BatchStore) CountActiveByUser(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return 0, s.FailWith
	}
	var n int64
	for _, b := range s.batches {
		if b.UserID == userID && (b.Status == model.BatchStatusPending || b.Status == model.BatchStatusSending) {
			n++
		}
	}
	return n, nil
}

// MessageStore is an in-memory MessageRepositoryInterface.
type MessageStore struct {
	mu       sync.Mutex
	messages map[string]*model.Message
	order    []string

	FailWith error
}

func NewMessageStore() *MessageStore {
	return &MessageStore{messages: make(map[string]*model.Message)}
}

func (s *MessageStore) InsertMany(_ context.Context, messages []model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	for i := range messages {
		m := messages[i]
		s.messages[m.ID] = &m
		s.order = append(s.order, m.ID)
	}
	return nil
}

func (s *MessageStore) ListByBatch(_ context.Context, batchID string) ([]model.Message, error) {
	return s.list(batchID, "")
}

func (s *MessageStore) ListPendingByBatch(_ context.Context, batchID string) ([]model.Message, error) {
	return s.list(batchID, model.MessageStatusPending)
}

func (s *MessageStore) list(batchID string, status model.MessageStatus) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	out := []model.Message{}
	for _, id := range s.order {
		m := s.messages[id]
		if m.BatchID != batchID {
			continue
		}
		if status != "" && m.Status != status {
			continue
		}
		out = append(out, *m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (s *MessageStore) MarkSent(_ context.Context, id string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if m, ok := s.messages[id]; ok {
		m.Status = model.MessageStatusSent
		at := sentAt
		m.SentAt = &at
	}
	return nil
}

func (s *MessageStore) MarkFailed(_ context.Context, id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if m, ok := s.messages[id]; ok {
		m.Status = model.MessageStatusFailed
		m.Error = reason
	}
	return nil
}

func (s *MessageStore) ResetFailed(_ context.Context, batchID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return 0, s.FailWith
	}
	var n int64
	for _, m := range s.messages {
		if m.BatchID == batchID && m.Status == model.MessageStatusFailed {
			m.Status = model.MessageStatusPending
			m.Error = ""
			n++
		}
	}
	return n, nil
}

func (s *MessageStore) CountByBatchAndStatus(_ context.Context, batchID string, status model.MessageStatus) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return 0, s.FailWith
	}
	var n int64
	for _, m := range s.messages {
		if m.BatchID == batchID && m.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *MessageStore) CountByUserAndStatus(_ context.Context, userID string, status model.MessageStatus) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return 0, s.FailWith
	}
	var n int64
	for _, m := range s.messages {
		if m.UserID == userID && m.Status == status {
			n++
		}
	}
	return n, nil
}

// CustomerStore is an in-memory CustomerRepositoryInterface.
type CustomerStore struct {
	mu        sync.Mutex
	customers map[string]*model.Customer
	order     []string
}

func NewCustomerStore() *CustomerStore {
	return &CustomerStore{customers: make(map[string]*model.Customer)}
}

func (s *CustomerStore) InsertMany(_ context.Context, customers []model.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range customers {
		c := customers[i]
		s.customers[c.ID] = &c
		s.order = append(s.order, c.ID)
	}
	return nil
}

func (s *CustomerStore) FindByIDs(_ context.Context, userID string, ids []string) ([]model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Customer{}
	for _, id := range ids {
		if c, ok := s.customers[id]; ok && c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *CustomerStore) ListByUser(_ context.Context, userID string) ([]model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Customer{}
	for _, id := range s.order {
		if c := s.customers[id]; c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (s *CustomerStore) DeleteByUser(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	remaining := s.order[:0]
	for _, id := range s.order {
		if s.customers[id].UserID == userID {
			delete(s.customers, id)
			n++
			continue
		}
		remaining = append(remaining, id)
	}
	s.order = remaining
	return n, nil
}

func (s *CustomerStore) CountByUser(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, c := range s.customers {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}

// TemplateStore is an in-memory TemplateRepositoryInterface.
type TemplateStore struct {
	mu        sync.Mutex
	templates map[string]*model.Template
	order     []string
}

func NewTemplateStore() *TemplateStore {
	return &TemplateStore{templates: make(map[string]*model.Template)}
}

func (s *TemplateStore) Insert(_ context.Context, t *model.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *t
	s.templates[t.ID] = &copied
	s.order = append(s.order, t.ID)
	return nil
}

func (s *TemplateStore) GetByIDAndUser(_ context.Context, id, userID string) (*model.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (s *TemplateStore) ListByUser(_ context.Context, userID string) ([]model.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Template{}
	for _, id := range s.order {
		if t := s.templates[id]; t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *TemplateStore) DeleteByIDAndUser(_ context.Context, id, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if !ok || t.UserID != userID {
		return false, nil
	}
	delete(s.templates, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (s *TemplateStore) CountByUser(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, t := range s.templates {
		if t.UserID == userID {
			n++
		}
	}
	return n, nil
}

// UserStore is an in-memory UserRepositoryInterface.
type UserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*model.User)}
}

func (s *UserStore) Insert(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *u
	s.users[u.ID] = &copied
	return nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *UserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

var (
	_ repository.BatchRepositoryInterface    = (*BatchStore)(nil)
	_ repository.MessageRepositoryInterface  = (*MessageStore)(nil)
	_ repository.CustomerRepositoryInterface = (*CustomerStore)(nil)
	_ repository.TemplateRepositoryInterface = (*TemplateStore)(nil)
	_ repository.UserRepositoryInterface     = (*UserStore)(nil)
)
