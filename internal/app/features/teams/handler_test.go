package teams_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/festhub/internal/app/features/teams"
	teamstore "github.com/dalemusser/festhub/internal/app/store/teams"
	"github.com/dalemusser/festhub/internal/domain/models"
	"github.com/dalemusser/festhub/internal/testutil"
	"go.uber.org/zap"
)

func TestServeSaveAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := teams.NewHandler(teamstore.New(db), zap.NewNop())

	body := `{"name":"Al Falah","leader":"Yusuf","color":"#ff0000","password":"open sesame"}`
	req := httptest.NewRequest("POST", "/api/teams", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeSave(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("save: expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var saved models.Team
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("failed to parse save response: %v", err)
	}
	if saved.ID == "" || saved.Name != "Al Falah" || saved.Color != "#ff0000" {
		t.Errorf("saved team: got %+v", saved)
	}
	if saved.PortalPassword != "" {
		t.Error("save response must not expose the password hash")
	}

	rec = httptest.NewRecorder()
	handler.ServeList(rec, httptest.NewRequest("GET", "/api/teams", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var listed []models.Team
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("failed to parse list response: %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("expected 1 team, got %d", len(listed))
	}
}

func TestServeSave_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := teams.NewHandler(teamstore.New(db), zap.NewNop())

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/api/teams", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeSave(rec, req)
		return rec
	}

	if rec := post(`{"name":"Al Falah"}`); rec.Code != http.StatusOK {
		t.Fatalf("first save: expected %d, got %d", http.StatusOK, rec.Code)
	}
	if rec := post(`{"name":"AL FALAH"}`); rec.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}
}

func TestServeDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	handler := teams.NewHandler(teamstore.New(db), zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fixtures.CreateTeam(ctx, "Al Falah")

	req := httptest.NewRequest("DELETE", "/api/teams/"+team.ID, nil)
	req = testutil.WithChiURLParam(req, "id", team.ID)
	rec := httptest.NewRecorder()
	handler.ServeDelete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	store := teamstore.New(db)
	if _, err := store.GetByID(ctx, team.ID); err != teamstore.ErrNotFound {
		t.Errorf("expected team to be gone, got err=%v", err)
	}
}
