// internal/app/features/replacements/handler.go
package replacements

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/festhub/internal/app/policy/quotapolicy"
	programstore "github.com/dalemusser/festhub/internal/app/store/programs"
	registrationstore "github.com/dalemusser/festhub/internal/app/store/registrations"
	replacementstore "github.com/dalemusser/festhub/internal/app/store/replacements"
	studentstore "github.com/dalemusser/festhub/internal/app/store/students"
	"github.com/dalemusser/festhub/internal/app/system/auth"
	"github.com/dalemusser/festhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/festhub/internal/app/system/notify"
	"github.com/dalemusser/festhub/internal/app/system/timeouts"
	"github.com/dalemusser/festhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves replacement requests: a team's proposal to swap one
// registered student for another in the same program, reviewed by an admin.
//
// Submitting is not gated on the registration window; teams may request
// swaps after registration closes (injuries, withdrawals).
type Handler struct {
	Replacements  *replacementstore.Store
	Registrations *registrationstore.Store
	Programs      *programstore.Store
	Students      *studentstore.Store
	Notifier      notify.Notifier
	Log           *zap.Logger
}

// NewHandler constructs a replacements Handler.
func NewHandler(
	replacements *replacementstore.Store,
	registrations *registrationstore.Store,
	programs *programstore.Store,
	students *studentstore.Store,
	notifier notify.Notifier,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Replacements:  replacements,
		Registrations: registrations,
		Programs:      programs,
		Students:      students,
		Notifier:      notifier,
		Log:           logger,
	}
}

// ServeList handles GET /api/replacements. Teams see their own requests;
// admins see everything, or one team via ?team_id=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	teamID := r.URL.Query().Get("team_id")
	if s, ok := auth.Current(r); ok && s.Role == auth.RoleTeam {
		teamID = s.TeamID
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	requests, err := h.Replacements.List(ctx, teamID)
	if err != nil {
		h.Log.Error("replacements: list failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

type createRequest struct {
	ProgramID    string `json:"program_id"`
	OldStudentID string `json:"old_student_id"`
	NewStudentID string `json:"new_student_id"`
	Reason       string `json:"reason"`
}

// ServeCreate handles POST /api/replacements.
//
// Failure modes, in check order:
//
//	404 unknown program or new student
//	422 old student holds no seat in the program
//	422 new student ineligible (body carries the quota decision)
//	409 a pending request already exists for the seat
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProgramID == "" || req.OldStudentID == "" || req.NewStudentID == "" {
		http.Error(w, "program_id, old_student_id, and new_student_id are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long)
	defer cancel()

	program, err := h.Programs.GetByID(ctx, req.ProgramID)
	if err == programstore.ErrNotFound {
		http.Error(w, "program not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Log.Error("replacements: program lookup failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	seat, found, err := h.Registrations.FindByProgramStudent(ctx, req.ProgramID, req.OldStudentID)
	if err != nil {
		h.Log.Error("replacements: seat lookup failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "the student to be replaced holds no seat in this program", http.StatusUnprocessableEntity)
		return
	}

	// Teams may only swap seats they own.
	if s, ok := auth.Current(r); ok && s.Role == auth.RoleTeam && seat.TeamID != s.TeamID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	newStudent, err := h.Students.GetByID(ctx, req.NewStudentID)
	if err == studentstore.ErrNotFound {
		http.Error(w, "replacement student not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Log.Error("replacements: student lookup failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if newStudent.TeamID != seat.TeamID {
		http.Error(w, "replacement student belongs to another team", http.StatusUnprocessableEntity)
		return
	}

	decision, err := h.evaluateEligibility(ctx, newStudent.ID, req.OldStudentID, program)
	if err != nil {
		h.Log.Error("replacements: eligibility evaluation failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !decision.Allowed {
		writeJSON(w, http.StatusUnprocessableEntity, decision)
		return
	}

	created, err := h.Replacements.Create(ctx, replacementstore.Input{
		ProgramID:       program.ID,
		ProgramName:     program.Name,
		OldStudentID:    seat.StudentID,
		OldStudentName:  seat.StudentName,
		OldStudentChest: seat.StudentChest,
		NewStudentID:    newStudent.ID,
		NewStudentName:  newStudent.Name,
		NewStudentChest: newStudent.ChestNumber,
		TeamID:          seat.TeamID,
		TeamName:        seat.TeamName,
		Reason:          htmlsanitize.Plain(req.Reason),
	})
	var dup *replacementstore.DuplicateError
	if errors.As(err, &dup) {
		http.Error(w, dup.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		h.Log.Error("replacements: create failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.Log.Info("replacement request submitted",
		zap.String("request_id", created.ID),
		zap.String("program_id", program.ID),
		zap.String("old_student_id", created.OldStudentID),
		zap.String("new_student_id", created.NewStudentID))
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) evaluateEligibility(ctx context.Context, candidateID, oldStudentID string, program models.Program) (quotapolicy.Decision, error) {
	allPrograms, err := h.Programs.List(ctx)
	if err != nil {
		return quotapolicy.Decision{}, err
	}
	regs, err := h.Registrations.List(ctx, registrationstore.Filter{StudentID: candidateID})
	if err != nil {
		return quotapolicy.Decision{}, err
	}
	return quotapolicy.EvaluateReplacement(candidateID, oldStudentID, program, allPrograms, regs), nil
}

// ServeApprove handles POST /api/replacements/{id}/approve (admin).
func (h *Handler) ServeApprove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long)
	defer cancel()

	approved, err := h.Replacements.Approve(ctx, id, reviewer(r))
	if err == replacementstore.ErrNotFound {
		http.Error(w, "replacement request not found", http.StatusNotFound)
		return
	}
	if err == replacementstore.ErrAlreadyProcessed || err == replacementstore.ErrSeatConflict {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err == registrationstore.ErrSeatNotFound {
		http.Error(w, "the seat to be replaced no longer exists", http.StatusConflict)
		return
	}
	if err != nil {
		h.Log.Error("replacements: approve failed", zap.Error(err), zap.String("request_id", id))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// The seat now carries the new student; nudge the team's portal.
	h.Notifier.RegistrationCreated(approved.NewStudentID, approved.TeamID)
	h.Log.Info("replacement request approved",
		zap.String("request_id", approved.ID),
		zap.String("program_id", approved.ProgramID))
	writeJSON(w, http.StatusOK, approved)
}

// ServeReject handles POST /api/replacements/{id}/reject (admin). Rejecting
// an already processed request is a conflict, not a silent success.
func (h *Handler) ServeReject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium)
	defer cancel()

	rejected, err := h.Replacements.Reject(ctx, id, reviewer(r))
	if err == replacementstore.ErrNotFound {
		http.Error(w, "replacement request not found", http.StatusNotFound)
		return
	}
	if err == replacementstore.ErrAlreadyProcessed {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		h.Log.Error("replacements: reject failed", zap.Error(err), zap.String("request_id", id))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.Log.Info("replacement request rejected", zap.String("request_id", rejected.ID))
	writeJSON(w, http.StatusOK, rejected)
}

// reviewer names the session performing a review for the audit fields.
func reviewer(r *http.Request) string {
	if s, ok := auth.Current(r); ok && s.Role == auth.RoleAdmin {
		return "admin"
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
