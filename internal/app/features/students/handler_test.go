package students_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/festhub/internal/app/features/students"
	studentstore "github.com/dalemusser/festhub/internal/app/store/students"
	"github.com/dalemusser/festhub/internal/app/system/auth"
	"github.com/dalemusser/festhub/internal/app/system/notify"
	"github.com/dalemusser/festhub/internal/domain/models"
	"github.com/dalemusser/festhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *students.Handler {
	logger := zap.NewNop()
	return students.NewHandler(studentstore.New(db), notify.NewLogNotifier(logger), logger)
}

func teamSession(r *http.Request, team models.Team) *http.Request {
	return auth.WithSession(r, &auth.Session{TeamID: team.ID, TeamName: team.Name, Role: auth.RoleTeam})
}

func TestServeUpsert_PinnedToOwnTeam(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	handler := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mine := fixtures.CreateTeam(ctx, "Al Falah")
	other := fixtures.CreateTeam(ctx, "An Noor")

	// The request names another team; the session wins.
	body := `{"name":"Amina","chest_number":"A1","category":"junior","team_id":"` + other.ID + `"}`
	req := teamSession(httptest.NewRequest("POST", "/api/students", strings.NewReader(body)), mine)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeUpsert(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp struct {
		ID    string `json:"id"`
		IsNew bool   `json:"is_new"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !resp.IsNew {
		t.Error("expected is_new=true")
	}

	st, err := studentstore.New(db).GetByID(ctx, resp.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if st.TeamID != mine.ID {
		t.Errorf("team: got %q, want the session's team %q", st.TeamID, mine.ID)
	}
}

func TestServeUpsert_DuplicateChest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	handler := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fixtures.CreateTeam(ctx, "Al Falah")
	fixtures.CreateStudent(ctx, "Amina", "A1", team.ID, models.CategoryJunior)

	body := `{"name":"Bilal","chest_number":"a1","category":"senior"}`
	req := teamSession(httptest.NewRequest("POST", "/api/students", strings.NewReader(body)), team)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeUpsert(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Amina") {
		t.Errorf("conflict message should name the holder, got %q", rec.Body.String())
	}
}

func TestServeUpsert_InvalidCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	handler := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fixtures.CreateTeam(ctx, "Al Falah")

	body := `{"name":"Amina","chest_number":"A1","category":"adult"}`
	req := teamSession(httptest.NewRequest("POST", "/api/students", strings.NewReader(body)), team)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeUpsert(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestServeDelete_OtherTeamsStudent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	handler := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mine := fixtures.CreateTeam(ctx, "Al Falah")
	other := fixtures.CreateTeam(ctx, "An Noor")
	victim := fixtures.CreateStudent(ctx, "Fatima", "C1", other.ID, models.CategoryJunior)

	req := teamSession(httptest.NewRequest("DELETE", "/api/students/"+victim.ID, nil), mine)
	req = testutil.WithChiURLParam(req, "id", victim.ID)
	rec := httptest.NewRecorder()
	handler.ServeDelete(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}

	if _, err := studentstore.New(db).GetByID(ctx, victim.ID); err != nil {
		t.Errorf("student should still exist, got err=%v", err)
	}
}

func TestServeList_TeamScoped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	handler := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mine := fixtures.CreateTeam(ctx, "Al Falah")
	other := fixtures.CreateTeam(ctx, "An Noor")
	fixtures.CreateStudent(ctx, "Amina", "A1", mine.ID, models.CategoryJunior)
	fixtures.CreateStudent(ctx, "Fatima", "C1", other.ID, models.CategoryJunior)

	req := teamSession(httptest.NewRequest("GET", "/api/students", nil), mine)
	rec := httptest.NewRecorder()
	handler.ServeList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var listed []models.Student
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(listed) != 1 || listed[0].TeamID != mine.ID {
		t.Errorf("expected only own team's students, got %+v", listed)
	}
}
