// internal/app/features/registrations/handler.go
package registrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/festhub/internal/app/policy/quotapolicy"
	"github.com/dalemusser/festhub/internal/app/policy/windowpolicy"
	programstore "github.com/dalemusser/festhub/internal/app/store/programs"
	registrationstore "github.com/dalemusser/festhub/internal/app/store/registrations"
	schedulestore "github.com/dalemusser/festhub/internal/app/store/schedule"
	studentstore "github.com/dalemusser/festhub/internal/app/store/students"
	teamstore "github.com/dalemusser/festhub/internal/app/store/teams"
	"github.com/dalemusser/festhub/internal/app/system/auth"
	"github.com/dalemusser/festhub/internal/app/system/notify"
	"github.com/dalemusser/festhub/internal/app/system/timeouts"
	"github.com/dalemusser/festhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves program registrations, the core of the portal.
//
// Creation is gated twice before the write: the registration window must be
// open (schedule re-read on every request) and the student must have quota
// headroom. Neither gate is authoritative under concurrency; the composite
// unique index on (programId, studentId) is what finally guarantees one seat
// per student per program.
type Handler struct {
	Registrations *registrationstore.Store
	Programs      *programstore.Store
	Students      *studentstore.Store
	Teams         *teamstore.Store
	Schedule      *schedulestore.Store
	Notifier      notify.Notifier
	Log           *zap.Logger
}

// NewHandler constructs a registrations Handler.
func NewHandler(
	registrations *registrationstore.Store,
	programs *programstore.Store,
	students *studentstore.Store,
	teams *teamstore.Store,
	schedule *schedulestore.Store,
	notifier notify.Notifier,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Registrations: registrations,
		Programs:      programs,
		Students:      students,
		Teams:         teams,
		Schedule:      schedule,
		Notifier:      notifier,
		Log:           logger,
	}
}

// ServeList handles GET /api/registrations with optional program_id and
// student_id filters. Teams see only their own registrations.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	filter := registrationstore.Filter{
		ProgramID: r.URL.Query().Get("program_id"),
		StudentID: r.URL.Query().Get("student_id"),
		TeamID:    r.URL.Query().Get("team_id"),
	}
	if s, ok := auth.Current(r); ok && s.Role == auth.RoleTeam {
		filter.TeamID = s.TeamID
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	regs, err := h.Registrations.List(ctx, filter)
	if err != nil {
		h.Log.Error("registrations: list failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, regs)
}

type createRequest struct {
	ProgramID string `json:"program_id"`
	StudentID string `json:"student_id"`
}

// ServeCreate handles POST /api/registrations.
//
// Failure modes, in check order:
//
//	403 window closed
//	404 unknown program or student
//	422 quota exhausted (body carries the full quota decision)
//	409 student already registered for the program
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProgramID == "" || req.StudentID == "" {
		http.Error(w, "program_id and student_id are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long)
	defer cancel()

	// The schedule is read fresh on every attempt; a cached window would let
	// registrations slip through after an admin closes it.
	schedule, err := h.Schedule.Get(ctx)
	if err != nil {
		h.Log.Error("registrations: schedule read failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !windowpolicy.IsOpen(time.Now().UTC(), schedule) {
		http.Error(w, "Registration window is closed.", http.StatusForbidden)
		return
	}

	program, err := h.Programs.GetByID(ctx, req.ProgramID)
	if err == programstore.ErrNotFound {
		http.Error(w, "program not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Log.Error("registrations: program lookup failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	student, err := h.Students.GetByID(ctx, req.StudentID)
	if err == studentstore.ErrNotFound {
		http.Error(w, "student not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Log.Error("registrations: student lookup failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// Teams register only their own students.
	if s, ok := auth.Current(r); ok && s.Role == auth.RoleTeam && student.TeamID != s.TeamID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	team, err := h.Teams.GetByID(ctx, student.TeamID)
	if err != nil {
		h.Log.Error("registrations: team lookup failed", zap.Error(err), zap.String("team_id", student.TeamID))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	decision, err := h.evaluateQuota(ctx, student.ID, program)
	if err != nil {
		h.Log.Error("registrations: quota evaluation failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !decision.Allowed {
		writeJSON(w, http.StatusUnprocessableEntity, decision)
		return
	}

	reg, err := h.Registrations.Insert(ctx, registrationstore.Entry{
		ProgramID:    program.ID,
		ProgramName:  program.Name,
		StudentID:    student.ID,
		StudentName:  student.Name,
		StudentChest: student.ChestNumber,
		TeamID:       team.ID,
		TeamName:     team.Name,
	})
	var dup *registrationstore.DuplicateError
	if errors.As(err, &dup) {
		http.Error(w, dup.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		h.Log.Error("registrations: insert failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.Notifier.RegistrationCreated(student.ID, team.ID)
	h.Log.Info("registration created",
		zap.String("registration_id", reg.ID),
		zap.String("program_id", program.ID),
		zap.String("student_id", student.ID))
	writeJSON(w, http.StatusCreated, reg)
}

// evaluateQuota loads the catalog and the student's registrations and runs
// the pure quota policy over them.
func (h *Handler) evaluateQuota(ctx context.Context, studentID string, target models.Program) (quotapolicy.Decision, error) {
	allPrograms, err := h.Programs.List(ctx)
	if err != nil {
		return quotapolicy.Decision{}, err
	}
	regs, err := h.Registrations.List(ctx, registrationstore.Filter{StudentID: studentID})
	if err != nil {
		return quotapolicy.Decision{}, err
	}
	return quotapolicy.Evaluate(studentID, target, allPrograms, regs), nil
}

// ServeDelete handles DELETE /api/registrations/{id}. Deleting an id that no
// longer exists succeeds; the seat is gone either way.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	// Teams may only release their own seats.
	if s, ok := auth.Current(r); ok && s.Role == auth.RoleTeam {
		reg, found, err := h.Registrations.GetByID(ctx, id)
		if err != nil {
			h.Log.Error("registrations: lookup before delete failed", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if found && reg.TeamID != s.TeamID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	}

	deleted, found, err := h.Registrations.Delete(ctx, id)
	if err != nil {
		h.Log.Error("registrations: delete failed", zap.Error(err), zap.String("registration_id", id))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if found {
		h.Notifier.RegistrationDeleted(deleted.ID, deleted.ProgramID, deleted.TeamID)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ServeDeleteByProgram handles DELETE /api/registrations/program/{programID}
// (admin): clear every seat in one program without retiring it from the
// catalog. A deleted-registration event is emitted per removed seat.
func (h *Handler) ServeDeleteByProgram(w http.ResponseWriter, r *http.Request) {
	programID := chi.URLParam(r, "programID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long)
	defer cancel()

	removed, err := h.Registrations.DeleteByProgram(ctx, programID)
	if err != nil {
		h.Log.Error("registrations: delete by program failed", zap.Error(err), zap.String("program_id", programID))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	for _, reg := range removed {
		h.Notifier.RegistrationDeleted(reg.ID, reg.ProgramID, reg.TeamID)
	}

	h.Log.Info("program registrations cleared",
		zap.String("program_id", programID),
		zap.Int("removed", len(removed)))
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "removed": len(removed)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
