// internal/app/features/logout/handler.go
package logout

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/festhub/internal/app/system/auth"
	"go.uber.org/zap"
)

// Handler clears the session cookie.
type Handler struct {
	Log *zap.Logger
}

// NewHandler constructs a logout Handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// ServeLogout handles POST /api/logout. Logging out without a session is
// fine; the response is the same either way.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if s, ok := auth.Current(r); ok {
		h.Log.Info("signed out", zap.String("team_id", s.TeamID), zap.String("role", s.Role))
	}
	if err := auth.SignOut(w, r); err != nil {
		h.Log.Warn("logout: failed to clear session", zap.Error(err))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
