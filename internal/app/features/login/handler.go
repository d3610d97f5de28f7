// internal/app/features/login/handler.go
package login

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	teamstore "github.com/dalemusser/festhub/internal/app/store/teams"
	"github.com/dalemusser/festhub/internal/app/system/auth"
	"github.com/dalemusser/festhub/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler authenticates team leaders and the festival admin.
//
// Teams sign in with their team name and portal password. The admin account
// is not stored in the database; its username and bcrypt password hash come
// from configuration.
type Handler struct {
	Teams             *teamstore.Store
	AdminUser         string
	AdminPasswordHash string
	Log               *zap.Logger
}

// NewHandler constructs a login Handler.
func NewHandler(teams *teamstore.Store, adminUser, adminPasswordHash string, logger *zap.Logger) *Handler {
	return &Handler{
		Teams:             teams,
		AdminUser:         adminUser,
		AdminPasswordHash: adminPasswordHash,
		Log:               logger,
	}
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Role     string `json:"role"`
	TeamID   string `json:"team_id,omitempty"`
	TeamName string `json:"team_name,omitempty"`
}

// ServeLogin handles POST /api/login.
//
// The failure response never says whether the name or the password was
// wrong.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Password == "" {
		http.Error(w, "login and password are required", http.StatusBadRequest)
		return
	}

	if h.isAdmin(req.Login, req.Password) {
		if err := auth.SignIn(w, r, auth.Session{Role: auth.RoleAdmin}); err != nil {
			h.Log.Error("login: failed to save admin session", zap.Error(err))
			http.Error(w, "failed to create session", http.StatusInternalServerError)
			return
		}
		h.Log.Info("admin signed in")
		writeJSON(w, loginResponse{Role: auth.RoleAdmin})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short)
	defer cancel()

	team, err := h.Teams.GetByName(ctx, req.Login)
	if err == teamstore.ErrNotFound {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.Log.Error("login: team lookup failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if !h.Teams.CheckPassword(team, req.Password) {
		h.Log.Info("login: wrong password", zap.String("team_id", team.ID))
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	s := auth.Session{TeamID: team.ID, TeamName: team.Name, Role: auth.RoleTeam}
	if err := auth.SignIn(w, r, s); err != nil {
		h.Log.Error("login: failed to save session", zap.Error(err), zap.String("team_id", team.ID))
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	h.Log.Info("team signed in", zap.String("team_id", team.ID), zap.String("team", team.Name))
	writeJSON(w, loginResponse{Role: auth.RoleTeam, TeamID: team.ID, TeamName: team.Name})
}

func (h *Handler) isAdmin(login, password string) bool {
	if h.AdminUser == "" || h.AdminPasswordHash == "" {
		return false
	}
	if login != h.AdminUser {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(h.AdminPasswordHash), []byte(password)) == nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
