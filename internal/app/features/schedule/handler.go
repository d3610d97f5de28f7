// internal/app/features/schedule/handler.go
package schedule

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	schedulestore "github.com/dalemusser/festhub/internal/app/store/schedule"
	"github.com/dalemusser/festhub/internal/app/system/timeouts"
	"github.com/dalemusser/festhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves the registration window schedule.
type Handler struct {
	Schedule *schedulestore.Store
	Log      *zap.Logger
}

// NewHandler constructs a schedule Handler.
func NewHandler(schedule *schedulestore.Store, logger *zap.Logger) *Handler {
	return &Handler{Schedule: schedule, Log: logger}
}

// ServeGet handles GET /api/schedule.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	schedule, err := h.Schedule.Get(ctx)
	if err != nil {
		h.Log.Error("schedule: read failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, schedule)
}

type saveRequest struct {
	StartDateTime time.Time `json:"start_date_time"`
	EndDateTime   time.Time `json:"end_date_time"`
}

// ServeSave handles PUT /api/schedule (admin): move the registration window.
// The change takes effect on the next window check; nothing is cached.
func (h *Handler) ServeSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.StartDateTime.IsZero() || req.EndDateTime.IsZero() {
		http.Error(w, "start_date_time and end_date_time are required", http.StatusBadRequest)
		return
	}
	if !req.EndDateTime.After(req.StartDateTime) {
		http.Error(w, "end_date_time must be after start_date_time", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	schedule := models.RegistrationSchedule{
		Key:           models.ScheduleKeyGlobal,
		StartDateTime: req.StartDateTime.UTC(),
		EndDateTime:   req.EndDateTime.UTC(),
	}
	if err := h.Schedule.Save(ctx, schedule); err != nil {
		h.Log.Error("schedule: save failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.Log.Info("registration window updated",
		zap.Time("start", schedule.StartDateTime),
		zap.Time("end", schedule.EndDateTime))
	writeJSON(w, schedule)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
