package replacementstore_test

import (
	"context"
	"errors"
	"testing"

	registrationstore "github.com/dalemusser/festhub/internal/app/store/registrations"
	replacementstore "github.com/dalemusser/festhub/internal/app/store/replacements"
	"github.com/dalemusser/festhub/internal/domain/models"
	"github.com/dalemusser/festhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

type seat struct {
	team       models.Team
	oldStudent models.Student
	newStudent models.Student
	program    models.Program
	reg        models.ProgramRegistration
}

func newSeat(ctx context.Context, t *testing.T, db *mongo.Database) seat {
	t.Helper()
	fixtures := testutil.NewFixtures(t, db)
	team := fixtures.CreateTeam(ctx, "Al Falah")
	oldStudent := fixtures.CreateStudent(ctx, "Amina Rahman", "A12", team.ID, models.CategoryJunior)
	newStudent := fixtures.CreateStudent(ctx, "Bilal Hasan", "B07", team.ID, models.CategoryJunior)
	program := fixtures.CreateProgram(ctx, "Qiraat", models.SectionJunior, true)
	reg := fixtures.CreateRegistration(ctx, program, oldStudent, team)
	return seat{team: team, oldStudent: oldStudent, newStudent: newStudent, program: program, reg: reg}
}

func requestInput(s seat) replacementstore.Input {
	return replacementstore.Input{
		ProgramID:       s.program.ID,
		ProgramName:     s.program.Name,
		OldStudentID:    s.oldStudent.ID,
		OldStudentName:  s.oldStudent.Name,
		OldStudentChest: s.oldStudent.ChestNumber,
		NewStudentID:    s.newStudent.ID,
		NewStudentName:  s.newStudent.Name,
		NewStudentChest: s.newStudent.ChestNumber,
		TeamID:          s.team.ID,
		TeamName:        s.team.Name,
		Reason:          "Student injured during practice.",
	}
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := replacementstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := newSeat(ctx, t, db)
	req, err := store.Create(ctx, requestInput(s))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if req.ID == "" {
		t.Error("expected a fresh id")
	}
	if req.Status != models.ReplacementPending {
		t.Errorf("status: got %q, want pending", req.Status)
	}
	if req.SubmittedAt.IsZero() {
		t.Error("expected SubmittedAt to be set")
	}
	if req.ReviewedAt != nil || req.ReviewedBy != "" {
		t.Error("audit fields must be empty on a new request")
	}
}

func TestStore_Create_DuplicatePendingSeat(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := replacementstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := newSeat(ctx, t, db)
	if _, err := store.Create(ctx, requestInput(s)); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := store.Create(ctx, requestInput(s))
	var dup *replacementstore.DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected *DuplicateError, got %v", err)
	}
	if dup.OldStudentName != s.oldStudent.Name || dup.ProgramName != s.program.Name {
		t.Errorf("duplicate error fields: got %+v", dup)
	}

	pending, err := store.List(ctx, s.team.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("expected exactly 1 request, got %d", len(pending))
	}
}

func TestStore_Create_AllowedAfterRejection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := replacementstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := newSeat(ctx, t, db)
	first, err := store.Create(ctx, requestInput(s))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Reject(ctx, first.ID, "admin"); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}

	// The partial unique index only covers pending requests, so the team can
	// try again for the same seat.
	if _, err := store.Create(ctx, requestInput(s)); err != nil {
		t.Fatalf("Create after rejection failed: %v", err)
	}
}

func TestStore_Approve_RoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := replacementstore.New(db)
	regStore := registrationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := newSeat(ctx, t, db)
	req, err := store.Create(ctx, requestInput(s))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	approved, err := store.Approve(ctx, req.ID, "festival-admin")
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if approved.Status != models.ReplacementApproved {
		t.Errorf("status: got %q, want approved", approved.Status)
	}
	if approved.ReviewedAt == nil || approved.ReviewedBy != "festival-admin" {
		t.Errorf("audit fields not set: %+v", approved)
	}

	// The seat now belongs to the new student, on the same row.
	after, found, err := regStore.FindByProgramStudent(ctx, s.program.ID, s.newStudent.ID)
	if err != nil || !found {
		t.Fatalf("expected swapped registration, found=%v err=%v", found, err)
	}
	if after.ID != s.reg.ID {
		t.Errorf("registration id changed: got %q, want %q", after.ID, s.reg.ID)
	}
	if !after.Timestamp.Equal(s.reg.Timestamp) {
		t.Errorf("registration timestamp changed: got %v, want %v", after.Timestamp, s.reg.Timestamp)
	}
	if after.StudentName != s.newStudent.Name || after.StudentChest != s.newStudent.ChestNumber {
		t.Errorf("student snapshot not rewritten: %+v", after)
	}
}

func TestStore_Approve_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := replacementstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Approve(ctx, "no-such-request", "admin")
	if err != replacementstore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Approve_TwiceIsConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := replacementstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := newSeat(ctx, t, db)
	req, err := store.Create(ctx, requestInput(s))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := store.Approve(ctx, req.ID, "first-admin"); err != nil {
		t.Fatalf("first Approve failed: %v", err)
	}

	_, err = store.Approve(ctx, req.ID, "second-admin")
	if err != replacementstore.ErrAlreadyProcessed {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}

	// Audit fields still carry the first reviewer.
	got, err := store.GetByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ReviewedBy != "first-admin" {
		t.Errorf("ReviewedBy: got %q, want first-admin", got.ReviewedBy)
	}
}

func TestStore_Approve_ReentryAfterPartialFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := replacementstore.New(db)
	regStore := registrationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := newSeat(ctx, t, db)
	req, err := store.Create(ctx, requestInput(s))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Simulate a crash after the swap but before the status flip: the seat
	// already carries the new student while the request is still pending.
	if err := regStore.SwapStudent(ctx, s.program.ID, s.oldStudent.ID,
		s.newStudent.ID, s.newStudent.Name, s.newStudent.ChestNumber); err != nil {
		t.Fatalf("SwapStudent failed: %v", err)
	}

	approved, err := store.Approve(ctx, req.ID, "admin")
	if err != nil {
		t.Fatalf("re-entrant Approve failed: %v", err)
	}
	if approved.Status != models.ReplacementApproved {
		t.Errorf("status: got %q, want approved", approved.Status)
	}

	// Exactly one registration for the seat, unchanged id.
	regs, err := regStore.List(ctx, registrationstore.Filter{ProgramID: s.program.ID})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(regs) != 1 {
		t.Fatalf("expected 1 registration, got %d", len(regs))
	}
	if regs[0].ID != s.reg.ID || regs[0].StudentID != s.newStudent.ID {
		t.Errorf("seat state after re-entry: %+v", regs[0])
	}
}

func TestStore_Approve_NewStudentRegisteredWhilePending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := replacementstore.New(db)
	regStore := registrationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := newSeat(ctx, t, db)
	req, err := store.Create(ctx, requestInput(s))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// The replacement student takes their own seat in the program while the
	// request sits in the queue. Both seats now exist, so this is not the
	// crash-recovery state and the swap must not be skipped over.
	fixtures := testutil.NewFixtures(t, db)
	fixtures.CreateRegistration(ctx, s.program, s.newStudent, s.team)

	if _, err := store.Approve(ctx, req.ID, "admin"); !errors.Is(err, replacementstore.ErrSeatConflict) {
		t.Fatalf("Approve: got %v, want ErrSeatConflict", err)
	}

	// The request stays pending and the old student keeps the seat.
	got, err := store.GetByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.ReplacementPending {
		t.Errorf("status: got %q, want pending", got.Status)
	}
	seat, found, err := regStore.FindByProgramStudent(ctx, s.program.ID, s.oldStudent.ID)
	if err != nil {
		t.Fatalf("FindByProgramStudent failed: %v", err)
	}
	if !found || seat.StudentID != s.oldStudent.ID {
		t.Errorf("old seat after failed approve: found=%v %+v", found, seat)
	}
}

func TestStore_Approve_SeatDeletedWhilePending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := replacementstore.New(db)
	regStore := registrationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := newSeat(ctx, t, db)
	req, err := store.Create(ctx, requestInput(s))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, _, err := regStore.Delete(ctx, s.reg.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.Approve(ctx, req.ID, "admin"); !errors.Is(err, registrationstore.ErrSeatNotFound) {
		t.Fatalf("Approve: got %v, want ErrSeatNotFound", err)
	}

	got, err := store.GetByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.ReplacementPending {
		t.Errorf("status: got %q, want pending", got.Status)
	}
}

func TestStore_Reject_DoesNotTouchRegistration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := replacementstore.New(db)
	regStore := registrationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := newSeat(ctx, t, db)
	req, err := store.Create(ctx, requestInput(s))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	rejected, err := store.Reject(ctx, req.ID, "admin")
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if rejected.Status != models.ReplacementRejected {
		t.Errorf("status: got %q, want rejected", rejected.Status)
	}

	// The old student still holds the seat.
	reg, found, err := regStore.FindByProgramStudent(ctx, s.program.ID, s.oldStudent.ID)
	if err != nil || !found {
		t.Fatalf("expected original registration, found=%v err=%v", found, err)
	}
	if reg.StudentName != s.oldStudent.Name {
		t.Errorf("registration mutated by rejection: %+v", reg)
	}
}

func TestStore_Reject_TwiceIsConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := replacementstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := newSeat(ctx, t, db)
	req, err := store.Create(ctx, requestInput(s))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := store.Reject(ctx, req.ID, "admin"); err != nil {
		t.Fatalf("first Reject failed: %v", err)
	}
	if _, err := store.Reject(ctx, req.ID, "admin"); err != replacementstore.ErrAlreadyProcessed {
		t.Errorf("expected ErrAlreadyProcessed, got %v", err)
	}
}

func TestStore_List_ScopedToTeam(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := replacementstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := newSeat(ctx, t, db)
	if _, err := store.Create(ctx, requestInput(s)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	otherTeam := fixtures.CreateTeam(ctx, "An Noor")

	mine, err := store.List(ctx, s.team.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("expected 1 request for own team, got %d", len(mine))
	}

	theirs, err := store.List(ctx, otherTeam.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(theirs) != 0 {
		t.Errorf("expected 0 requests for other team, got %d", len(theirs))
	}

	// Unscoped listing sees everything.
	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 request overall, got %d", len(all))
	}
}
