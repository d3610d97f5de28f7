package heartbeat_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/festhub/internal/app/features/heartbeat"
	schedulestore "github.com/dalemusser/festhub/internal/app/store/schedule"
	"github.com/dalemusser/festhub/internal/testutil"
	"go.uber.org/zap"
)

func TestServeHeartbeat_WindowOpen(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	handler := heartbeat.NewHandler(schedulestore.New(db), zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.OpenSchedule(ctx)

	req := httptest.NewRequest("GET", "/api/heartbeat", nil)
	rec := httptest.NewRecorder()

	handler.ServeHeartbeat(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response struct {
		Status           string `json:"status"`
		RegistrationOpen bool   `json:"registration_open"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response.Status != "ok" {
		t.Errorf("status: got %q, want %q", response.Status, "ok")
	}
	if !response.RegistrationOpen {
		t.Error("expected registration_open=true inside the window")
	}
}

func TestServeHeartbeat_WindowClosed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	handler := heartbeat.NewHandler(schedulestore.New(db), zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.ClosedSchedule(ctx)

	req := httptest.NewRequest("GET", "/api/heartbeat", nil)
	rec := httptest.NewRecorder()

	handler.ServeHeartbeat(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response struct {
		RegistrationOpen bool `json:"registration_open"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response.RegistrationOpen {
		t.Error("expected registration_open=false outside the window")
	}
}
