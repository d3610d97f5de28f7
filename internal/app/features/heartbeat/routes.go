// internal/app/features/heartbeat/routes.go
package heartbeat

import "github.com/go-chi/chi/v5"

// Routes returns the router for heartbeat endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeHeartbeat)
	return r
}
