// internal/app/features/students/handler.go
package students

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	studentstore "github.com/dalemusser/festhub/internal/app/store/students"
	"github.com/dalemusser/festhub/internal/app/system/auth"
	"github.com/dalemusser/festhub/internal/app/system/notify"
	"github.com/dalemusser/festhub/internal/app/system/timeouts"
	"github.com/dalemusser/festhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the team portal student roster.
//
// Team sessions are always scoped to their own team; only admins may read or
// write another team's roster.
type Handler struct {
	Students *studentstore.Store
	Notifier notify.Notifier
	Log      *zap.Logger
}

// NewHandler constructs a students Handler.
func NewHandler(students *studentstore.Store, notifier notify.Notifier, logger *zap.Logger) *Handler {
	return &Handler{Students: students, Notifier: notifier, Log: logger}
}

// teamScope resolves which team a request may act on. Team sessions are
// pinned to their own team regardless of what the request asks for.
func teamScope(r *http.Request, requested string) string {
	s, ok := auth.Current(r)
	if !ok {
		return requested
	}
	if s.Role == auth.RoleAdmin {
		return requested
	}
	return s.TeamID
}

// ServeList handles GET /api/students. Teams see their own roster; admins
// see everything, or one team via ?team_id=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	teamID := teamScope(r, r.URL.Query().Get("team_id"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	students, err := h.Students.List(ctx, teamID)
	if err != nil {
		h.Log.Error("students: list failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, students)
}

type upsertRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ChestNumber string `json:"chest_number"`
	TeamID      string `json:"team_id"`
	Category    string `json:"category"`
}

type upsertResponse struct {
	ID    string `json:"id"`
	IsNew bool   `json:"is_new"`
}

// ServeUpsert handles POST /api/students: create or update a student. A
// chest number held by another student is a conflict.
func (h *Handler) ServeUpsert(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.ChestNumber == "" {
		http.Error(w, "name and chest_number are required", http.StatusBadRequest)
		return
	}
	if !models.IsValidCategory(req.Category) {
		http.Error(w, "category must be junior or senior", http.StatusBadRequest)
		return
	}

	teamID := teamScope(r, req.TeamID)
	if teamID == "" {
		http.Error(w, "team_id is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	id, isNew, err := h.Students.Upsert(ctx, studentstore.UpsertInput{
		ID:          req.ID,
		Name:        req.Name,
		ChestNumber: req.ChestNumber,
		TeamID:      teamID,
		Category:    req.Category,
	})
	var dup *studentstore.DuplicateChestError
	if errors.As(err, &dup) {
		http.Error(w, dup.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		h.Log.Error("students: upsert failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if isNew {
		h.Notifier.StudentCreated(id, teamID)
	} else {
		h.Notifier.StudentUpdated(id, teamID)
	}

	writeJSON(w, upsertResponse{ID: id, IsNew: isNew})
}

// ServeDelete handles DELETE /api/students/{id}. The student's registrations
// are removed with them. Deleting a student that does not exist is a no-op.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long)
	defer cancel()

	// Teams may only delete their own students.
	if s, ok := auth.Current(r); ok && s.Role == auth.RoleTeam {
		st, err := h.Students.GetByID(ctx, id)
		if err == studentstore.ErrNotFound {
			writeJSON(w, map[string]string{"status": "ok"})
			return
		}
		if err != nil {
			h.Log.Error("students: lookup before delete failed", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if st.TeamID != s.TeamID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	}

	teamID, err := h.Students.Delete(ctx, id)
	if err != nil {
		h.Log.Error("students: delete failed", zap.Error(err), zap.String("student_id", id))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if teamID != "" {
		h.Notifier.StudentDeleted(id, teamID)
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
