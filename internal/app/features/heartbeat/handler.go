// internal/app/features/heartbeat/handler.go
package heartbeat

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dalemusser/festhub/internal/app/policy/windowpolicy"
	schedulestore "github.com/dalemusser/festhub/internal/app/store/schedule"
	"github.com/dalemusser/festhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the portal heartbeat. Team portals poll it to keep their
// registration UI in sync with the live window state without a full reload.
type Handler struct {
	Schedule *schedulestore.Store
	Log      *zap.Logger
}

// NewHandler creates a new heartbeat handler.
func NewHandler(schedule *schedulestore.Store, logger *zap.Logger) *Handler {
	return &Handler{Schedule: schedule, Log: logger}
}

// heartbeatResponse is the JSON body for the heartbeat endpoint.
type heartbeatResponse struct {
	Status           string    `json:"status"`
	ServerTime       time.Time `json:"server_time"`
	RegistrationOpen bool      `json:"registration_open"`
}

// ServeHeartbeat handles GET /api/heartbeat.
//
// The schedule is re-read on every heartbeat; admins can move the window at
// any moment and polling clients must see the change immediately.
func (h *Handler) ServeHeartbeat(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	now := time.Now().UTC()
	resp := heartbeatResponse{Status: "ok", ServerTime: now}

	schedule, err := h.Schedule.Get(ctx)
	if err != nil {
		// The heartbeat stays green on a schedule read failure; the window
		// just reads as closed until the next poll.
		h.Log.Warn("heartbeat: schedule read failed", zap.Error(err))
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	resp.RegistrationOpen = windowpolicy.IsOpen(now, schedule)
	_ = json.NewEncoder(w).Encode(resp)
}
