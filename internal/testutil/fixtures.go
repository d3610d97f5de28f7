package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/festhub/internal/app/system/normalize"
	"github.com/dalemusser/festhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateTeam creates a test team with the given name.
func (f *Fixtures) CreateTeam(ctx context.Context, name string) models.Team {
	f.t.Helper()

	now := time.Now().UTC()
	team := models.Team{
		ID:        uuid.NewString(),
		Name:      name,
		NameCI:    text.Fold(name),
		Leader:    "Test Leader",
		Color:     models.DefaultTeamColor,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("teams").InsertOne(ctx, team); err != nil {
		f.t.Fatalf("failed to create test team: %v", err)
	}
	return team
}

// CreateStudent creates a test student on the given team.
func (f *Fixtures) CreateStudent(ctx context.Context, name, chestNumber, teamID, category string) models.Student {
	f.t.Helper()

	now := time.Now().UTC()
	student := models.Student{
		ID:          uuid.NewString(),
		Name:        name,
		NameCI:      text.Fold(name),
		TeamID:      teamID,
		ChestNumber: normalize.ChestNumber(chestNumber),
		Category:    category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("students").InsertOne(ctx, student); err != nil {
		f.t.Fatalf("failed to create test student: %v", err)
	}
	return student
}

// CreateProgram creates a test catalog entry.
func (f *Fixtures) CreateProgram(ctx context.Context, name, section string, stage bool) models.Program {
	f.t.Helper()

	program := models.Program{
		ID:             uuid.NewString(),
		Name:           name,
		Section:        section,
		Type:           models.ProgramTypeSingle,
		Stage:          stage,
		CandidateLimit: 1,
	}

	if _, err := f.db.Collection("programs").InsertOne(ctx, program); err != nil {
		f.t.Fatalf("failed to create test program: %v", err)
	}
	return program
}

// CreateRegistration registers a student directly, bypassing window and quota
// checks, for tests that need pre-existing registrations.
func (f *Fixtures) CreateRegistration(ctx context.Context, program models.Program, student models.Student, team models.Team) models.ProgramRegistration {
	f.t.Helper()

	reg := models.ProgramRegistration{
		ID:           uuid.NewString(),
		ProgramID:    program.ID,
		ProgramName:  program.Name,
		StudentID:    student.ID,
		StudentName:  student.Name,
		StudentChest: student.ChestNumber,
		TeamID:       team.ID,
		TeamName:     team.Name,
		// BSON stores times at millisecond precision; truncate so fixtures
		// round-trip exactly in assertions.
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := f.db.Collection("program_registrations").InsertOne(ctx, reg); err != nil {
		f.t.Fatalf("failed to create test registration: %v", err)
	}
	return reg
}

// OpenSchedule writes a schedule whose window is currently open.
func (f *Fixtures) OpenSchedule(ctx context.Context) models.RegistrationSchedule {
	f.t.Helper()
	return f.writeSchedule(ctx, time.Now().UTC().Add(-time.Hour), time.Now().UTC().Add(time.Hour))
}

// ClosedSchedule writes a schedule whose window has already passed.
func (f *Fixtures) ClosedSchedule(ctx context.Context) models.RegistrationSchedule {
	f.t.Helper()
	return f.writeSchedule(ctx, time.Now().UTC().Add(-2*time.Hour), time.Now().UTC().Add(-time.Hour))
}

func (f *Fixtures) writeSchedule(ctx context.Context, start, end time.Time) models.RegistrationSchedule {
	f.t.Helper()

	schedule := models.RegistrationSchedule{
		Key:           models.ScheduleKeyGlobal,
		StartDateTime: start,
		EndDateTime:   end,
	}
	// Replace any schedule a previous fixture wrote.
	if _, err := f.db.Collection("registration_schedule").DeleteMany(ctx, bson.M{}); err != nil {
		f.t.Fatalf("failed to clear schedule: %v", err)
	}
	if _, err := f.db.Collection("registration_schedule").InsertOne(ctx, schedule); err != nil {
		f.t.Fatalf("failed to create test schedule: %v", err)
	}
	return schedule
}
