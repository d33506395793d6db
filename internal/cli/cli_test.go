package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mergington/activities/internal/activities/service"
	"github.com/mergington/activities/internal/activities/storage"
	"github.com/mergington/activities/internal/activities/storage/sqlite"
	"github.com/mergington/activities/internal/api"
	"github.com/mergington/activities/internal/staffauth"
)

// Commands share package-level cobra/viper state, so these tests run serially.

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "activities.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	record := storage.ActivityRecord{
		Name:            "Chess Club",
		Description:     "Learn strategies and compete in chess tournaments",
		Schedule:        "Fridays, 3:30 PM - 5:00 PM",
		MaxParticipants: 12,
	}
	if err := store.CreateActivity(ctx, record, []string{"michael@mergington.edu"}); err != nil {
		t.Fatalf("create activity: %v", err)
	}

	mux := http.NewServeMux()
	api.New(service.New(store), staffauth.Config{}).Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	args = append(args, "--config", filepath.Join(t.TempDir(), "activityctl.yaml"))
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	server := newAPIServer(t)
	out, err := runCommand(t, "list", "--server", server.URL)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{
		"Chess Club",
		"Schedule: Fridays, 3:30 PM - 5:00 PM",
		"Spots left: 11 of 12",
		"- michael@mergington.edu",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSignupCommand(t *testing.T) {
	server := newAPIServer(t)
	out, err := runCommand(t, "signup", "Chess Club", "--server", server.URL, "--email", "ava@mergington.edu")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if !strings.Contains(out, "Signed up ava@mergington.edu for Chess Club") {
		t.Errorf("output = %q", out)
	}
}

func TestSignupCommandDuplicate(t *testing.T) {
	server := newAPIServer(t)
	_, err := runCommand(t, "signup", "Chess Club", "--server", server.URL, "--email", "michael@mergington.edu")
	if err == nil || !strings.Contains(err.Error(), "Student is already signed up") {
		t.Errorf("expected duplicate signup error, got %v", err)
	}
}

func TestSignupCommandRequiresEmail(t *testing.T) {
	server := newAPIServer(t)
	_, err := runCommand(t, "signup", "Chess Club", "--server", server.URL, "--email", "")
	if err == nil || !strings.Contains(err.Error(), "email is required") {
		t.Errorf("expected missing email error, got %v", err)
	}
}

func TestUnregisterCommand(t *testing.T) {
	server := newAPIServer(t)
	out, err := runCommand(t, "unregister", "Chess Club", "--server", server.URL, "--email", "michael@mergington.edu")
	if err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if !strings.Contains(out, "Unregistered michael@mergington.edu from Chess Club") {
		t.Errorf("output = %q", out)
	}
}

func TestUnregisterCommandNotSignedUp(t *testing.T) {
	server := newAPIServer(t)
	_, err := runCommand(t, "unregister", "Chess Club", "--server", server.URL, "--email", "ghost@mergington.edu")
	if err == nil || !strings.Contains(err.Error(), "Student is not signed up for this activity") {
		t.Errorf("expected not signed up error, got %v", err)
	}
}
