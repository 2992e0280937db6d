// internal/handler/batch_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	appErrors "github.com/jkarimi/wacrm-backend/internal/errors"
	"github.com/jkarimi/wacrm-backend/internal/queue"
	"github.com/jkarimi/wacrm-backend/internal/service"
)

// BatchHandler exposes the batch lifecycle. Create and reschedule publish a
// dispatch job after the write succeeds; the worker picks it up
// asynchronously.
type BatchHandler struct {
	BatchService *service.BatchService
	Queue        queue.Queue
	Logger       *zap.Logger
}

func (h *BatchHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TotalCustomers int `json:"total_customers"`
		BatchSize      int `json:"batch_size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, appErrors.InvalidArgument("invalid request body"))
		return
	}
	if body.BatchSize == 0 {
		body.BatchSize = 100
	}

	estimate, err := service.EstimateSplit(body.TotalCustomers, body.BatchSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, estimate)
}

func (h *BatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TemplateID  string     `json:"template_id"`
		CustomerIDs []string   `json:"customer_ids"`
		BatchSize   int        `json:"batch_size"`
		StartTime   *time.Time `json:"start_time"`
		Priority    int        `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, appErrors.InvalidArgument("invalid request body"))
		return
	}
	if body.BatchSize == 0 {
		body.BatchSize = 100
	}
	if body.Priority == 0 {
		body.Priority = 5
	}
	startTime := time.Now().UTC()
	if body.StartTime != nil {
		startTime = *body.StartTime
	}

	userID := UserID(r)
	result, err := h.BatchService.CreateBatch(r.Context(), userID, body.TemplateID, body.CustomerIDs, body.BatchSize, startTime, body.Priority)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Queue.PublishDispatch(r.Context(), userID); err != nil {
		// The batches exist; the stale sweep will still get them dispatched.
		h.Logger.Error("failed to publish dispatch job", zap.String("user_id", userID), zap.Error(err))
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *BatchHandler) List(w http.ResponseWriter, r *http.Request) {
	batches, err := h.BatchService.ListBatches(r.Context(), UserID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"batches": batches})
}

func (h *BatchHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "id")
	userID := UserID(r)

	if err := h.BatchService.RescheduleBatch(r.Context(), batchID, userID); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Queue.PublishDispatch(r.Context(), userID); err != nil {
		h.Logger.Error("failed to publish dispatch job", zap.String("user_id", userID), zap.Error(err))
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Batch rescheduled successfully"})
}

func (h *BatchHandler) Messages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.BatchService.GetBatchMessages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"messages": messages})
}
