package schedulestore_test

import (
	"testing"
	"time"

	schedulestore "github.com/dalemusser/festhub/internal/app/store/schedule"
	"github.com/dalemusser/festhub/internal/domain/models"
	"github.com/dalemusser/festhub/internal/testutil"
)

func newSchedule(start, end time.Time) models.RegistrationSchedule {
	return models.RegistrationSchedule{
		Key:           models.ScheduleKeyGlobal,
		StartDateTime: start,
		EndDateTime:   end,
	}
}

func TestStore_Get_BootstrapsDefault(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := schedulestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	before := time.Now().UTC()
	schedule, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	after := time.Now().UTC()

	if schedule.StartDateTime.Before(before.Add(-time.Second)) || schedule.StartDateTime.After(after.Add(time.Second)) {
		t.Errorf("default start should be about now, got %v", schedule.StartDateTime)
	}
	if got := schedule.EndDateTime.Sub(schedule.StartDateTime); got != time.Hour {
		t.Errorf("default window: got %v, want 1h", got)
	}

	// The default is persisted, so a second read returns the same window.
	again, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
	if !again.StartDateTime.Equal(schedule.StartDateTime.Truncate(time.Millisecond)) {
		t.Errorf("second Get start: got %v, want %v", again.StartDateTime, schedule.StartDateTime)
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := schedulestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	start := time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.September, 14, 18, 0, 0, 0, time.UTC)

	if err := store.Save(ctx, newSchedule(start, end)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.StartDateTime.Equal(start) || !got.EndDateTime.Equal(end) {
		t.Errorf("window: got %v..%v, want %v..%v", got.StartDateTime, got.EndDateTime, start, end)
	}

	// Saving again replaces the window instead of adding a second document.
	moved := end.Add(48 * time.Hour)
	if err := store.Save(ctx, newSchedule(start, moved)); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	got, err = store.Get(ctx)
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
	if !got.EndDateTime.Equal(moved) {
		t.Errorf("end after move: got %v, want %v", got.EndDateTime, moved)
	}
}
