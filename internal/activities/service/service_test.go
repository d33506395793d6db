package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mergington/activities/internal/activities/storage"
	"github.com/mergington/activities/internal/activities/storage/sqlite"
	apperrors "github.com/mergington/activities/internal/platform/errors"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "activities.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})

	now := time.Date(2026, time.August, 30, 9, 0, 0, 0, time.UTC)
	records := []struct {
		record storage.ActivityRecord
		roster []string
	}{
		{
			record: storage.ActivityRecord{
				Name:            "Chess Club",
				Description:     "Learn strategies and compete in chess tournaments",
				Schedule:        "Fridays, 3:30 PM - 5:00 PM",
				MaxParticipants: 12,
				CreatedAt:       now,
				UpdatedAt:       now,
			},
			roster: []string{"michael@mergington.edu", "daniel@mergington.edu"},
		},
		{
			record: storage.ActivityRecord{
				Name:            "Tennis Club",
				Description:     "Learn tennis techniques and participate in friendly matches",
				Schedule:        "Tuesdays and Thursdays, 3:30 PM - 5:00 PM",
				MaxParticipants: 2,
				CreatedAt:       now,
				UpdatedAt:       now,
			},
			roster: []string{"ryan@mergington.edu", "jessica@mergington.edu"},
		},
	}
	for _, entry := range records {
		if err := store.CreateActivity(context.Background(), entry.record, entry.roster); err != nil {
			t.Fatalf("seed %s: %v", entry.record.Name, err)
		}
	}
	return New(store)
}

func TestSnapshotReturnsAllActivities(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	activities, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(activities) != 2 {
		t.Fatalf("activity count = %d, want 2", len(activities))
	}
	for _, activity := range activities {
		if activity.MaxParticipants <= 0 {
			t.Fatalf("%s has non-positive capacity", activity.Name)
		}
		if len(activity.Participants) > activity.MaxParticipants {
			t.Fatalf("%s roster exceeds capacity", activity.Name)
		}
	}
}

func TestSignupAppendsToRoster(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	if err := svc.Signup(context.Background(), "Chess Club", "newstudent@mergington.edu"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	activity, err := svc.Get(context.Background(), "Chess Club")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !activity.HasParticipant("newstudent@mergington.edu") {
		t.Fatalf("roster = %v, want new student present", activity.Participants)
	}
	if activity.Participants[len(activity.Participants)-1] != "newstudent@mergington.edu" {
		t.Fatalf("roster = %v, want new student appended last", activity.Participants)
	}
}

func TestSignupUnknownActivity(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	err := svc.Signup(context.Background(), "Non-existent Activity", "student@mergington.edu")
	if !errors.Is(err, apperrors.New(apperrors.CodeActivityNotFound, "")) {
		t.Fatalf("error = %v, want code %s", err, apperrors.CodeActivityNotFound)
	}
}

func TestSignupDuplicateStudent(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	err := svc.Signup(context.Background(), "Chess Club", "michael@mergington.edu")
	if !errors.Is(err, apperrors.New(apperrors.CodeSignupDuplicate, "")) {
		t.Fatalf("error = %v, want code %s", err, apperrors.CodeSignupDuplicate)
	}
}

func TestSignupFullActivity(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	err := svc.Signup(context.Background(), "Tennis Club", "newplayer@mergington.edu")
	if !errors.Is(err, apperrors.New(apperrors.CodeActivityFull, "")) {
		t.Fatalf("error = %v, want code %s", err, apperrors.CodeActivityFull)
	}
}

func TestSignupDuplicateOnFullActivity(t *testing.T) {
	t.Parallel()

	// A student already on a full roster gets the duplicate error, not the
	// capacity one.
	svc := newTestService(t)
	err := svc.Signup(context.Background(), "Tennis Club", "ryan@mergington.edu")
	if !errors.Is(err, apperrors.New(apperrors.CodeSignupDuplicate, "")) {
		t.Fatalf("error = %v, want code %s", err, apperrors.CodeSignupDuplicate)
	}
}

func TestSignupInvalidEmail(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	err := svc.Signup(context.Background(), "Chess Club", "not an email")
	if !errors.Is(err, apperrors.New(apperrors.CodeSignupEmailInvalid, "")) {
		t.Fatalf("error = %v, want code %s", err, apperrors.CodeSignupEmailInvalid)
	}
}

func TestSignupMultipleActivities(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	email := "student@mergington.edu"
	if err := svc.Signup(context.Background(), "Chess Club", email); err != nil {
		t.Fatalf("first signup: %v", err)
	}

	activity, err := svc.Get(context.Background(), "Chess Club")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !activity.HasParticipant(email) {
		t.Fatalf("expected %s on Chess Club roster", email)
	}
}

func TestUnregisterRemovesFromRoster(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	if err := svc.Unregister(context.Background(), "Chess Club", "michael@mergington.edu"); err != nil {
		t.Fatalf("unregister: %v", err)
	}

	activity, err := svc.Get(context.Background(), "Chess Club")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if activity.HasParticipant("michael@mergington.edu") {
		t.Fatalf("roster = %v, want michael removed", activity.Participants)
	}

	err = svc.Unregister(context.Background(), "Chess Club", "michael@mergington.edu")
	if !errors.Is(err, apperrors.New(apperrors.CodeSignupNotRegistered, "")) {
		t.Fatalf("repeat unregister error = %v, want code %s", err, apperrors.CodeSignupNotRegistered)
	}
}

func TestUnregisterUnknownActivity(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	err := svc.Unregister(context.Background(), "Non-existent Activity", "student@mergington.edu")
	if !errors.Is(err, apperrors.New(apperrors.CodeActivityNotFound, "")) {
		t.Fatalf("error = %v, want code %s", err, apperrors.CodeActivityNotFound)
	}
}

func TestSignupFreesSpotAfterUnregister(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	if err := svc.Unregister(context.Background(), "Tennis Club", "ryan@mergington.edu"); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if err := svc.Signup(context.Background(), "Tennis Club", "newplayer@mergington.edu"); err != nil {
		t.Fatalf("signup after unregister: %v", err)
	}
}
