// internal/app/features/programs/handler.go
package programs

import (
	"context"
	"encoding/json"
	"net/http"

	programstore "github.com/dalemusser/festhub/internal/app/store/programs"
	registrationstore "github.com/dalemusser/festhub/internal/app/store/registrations"
	"github.com/dalemusser/festhub/internal/app/system/notify"
	"github.com/dalemusser/festhub/internal/app/system/timeouts"
	"github.com/dalemusser/festhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the program catalog. Reads are open to any signed-in user;
// catalog changes are admin only.
type Handler struct {
	Programs      *programstore.Store
	Registrations *registrationstore.Store
	Notifier      notify.Notifier
	Log           *zap.Logger
}

// NewHandler constructs a programs Handler.
func NewHandler(programs *programstore.Store, registrations *registrationstore.Store, notifier notify.Notifier, logger *zap.Logger) *Handler {
	return &Handler{
		Programs:      programs,
		Registrations: registrations,
		Notifier:      notifier,
		Log:           logger,
	}
}

// ServeList handles GET /api/programs.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	programs, err := h.Programs.List(ctx)
	if err != nil {
		h.Log.Error("programs: list failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, programs)
}

type saveRequest struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Section        string `json:"section"`
	Type           string `json:"type"`
	Stage          bool   `json:"stage"`
	CandidateLimit int    `json:"candidate_limit"`
}

// ServeSave handles POST /api/programs: create or update a catalog entry.
func (h *Handler) ServeSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "program name is required", http.StatusBadRequest)
		return
	}
	if !models.IsValidSection(req.Section) {
		http.Error(w, "invalid section", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	saved, err := h.Programs.Save(ctx, models.Program{
		ID:             req.ID,
		Name:           req.Name,
		Section:        req.Section,
		Type:           req.Type,
		Stage:          req.Stage,
		CandidateLimit: req.CandidateLimit,
	})
	if err == programstore.ErrDuplicateProgramID {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		h.Log.Error("programs: save failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, saved)
}

// ServeDelete handles DELETE /api/programs/{id}. Retiring a program removes
// all of its registrations; a deleted-registration event is emitted for each
// so team portals drop the stale seats.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long)
	defer cancel()

	removed, err := h.Registrations.DeleteByProgram(ctx, id)
	if err != nil {
		h.Log.Error("programs: clearing registrations failed", zap.Error(err), zap.String("program_id", id))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := h.Programs.Delete(ctx, id); err != nil {
		h.Log.Error("programs: delete failed", zap.Error(err), zap.String("program_id", id))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	for _, reg := range removed {
		h.Notifier.RegistrationDeleted(reg.ID, reg.ProgramID, reg.TeamID)
	}

	h.Log.Info("program deleted",
		zap.String("program_id", id),
		zap.Int("registrations_removed", len(removed)))
	writeJSON(w, map[string]any{"status": "ok", "registrations_removed": len(removed)})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
