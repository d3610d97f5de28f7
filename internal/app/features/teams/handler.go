// internal/app/features/teams/handler.go
package teams

import (
	"context"
	"encoding/json"
	"net/http"

	teamstore "github.com/dalemusser/festhub/internal/app/store/teams"
	"github.com/dalemusser/festhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the admin team registry.
type Handler struct {
	Teams *teamstore.Store
	Log   *zap.Logger
}

// NewHandler constructs a teams Handler.
func NewHandler(teams *teamstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Teams: teams, Log: logger}
}

// ServeList handles GET /api/teams. Password hashes are never included.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	teams, err := h.Teams.List(ctx)
	if err != nil {
		h.Log.Error("teams: list failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, teams)
}

type saveRequest struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Leader         string `json:"leader"`
	Color          string `json:"color"`
	Password       string `json:"password"`
	Place          string `json:"place"`
	District       string `json:"district"`
	WhatsAppNumber string `json:"whatsapp_number"`
	PrincipalName  string `json:"principal_name"`
	PrincipalPhone string `json:"principal_phone"`
}

// ServeSave handles POST /api/teams: create or update one team.
func (h *Handler) ServeSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "team name is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	id, err := h.Teams.Save(ctx, teamstore.SaveInput{
		ID:             req.ID,
		Name:           req.Name,
		Leader:         req.Leader,
		Color:          req.Color,
		Password:       req.Password,
		Place:          req.Place,
		District:       req.District,
		WhatsAppNumber: req.WhatsAppNumber,
		PrincipalName:  req.PrincipalName,
		PrincipalPhone: req.PrincipalPhone,
	})
	if err == teamstore.ErrDuplicateTeamName {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		h.Log.Error("teams: save failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	team, err := h.Teams.GetByID(ctx, id)
	if err != nil {
		h.Log.Error("teams: reload after save failed", zap.Error(err), zap.String("team_id", id))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	team.PortalPassword = ""
	writeJSON(w, team)
}

// ServeDelete handles DELETE /api/teams/{id}. The team's students and
// registrations are removed with it.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long)
	defer cancel()

	if err := h.Teams.Delete(ctx, id); err != nil {
		h.Log.Error("teams: delete failed", zap.Error(err), zap.String("team_id", id))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.Log.Info("team deleted", zap.String("team_id", id))
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
