package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func newFakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /activities", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]Activity{
			"Chess Club": {
				Description:     "Learn strategies and compete in chess tournaments",
				Schedule:        "Fridays, 3:30 PM - 5:00 PM",
				MaxParticipants: 12,
				Participants:    []string{"michael@mergington.edu"},
			},
		})
	})
	mux.HandleFunc("POST /activities/{name}/signup", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.PathValue("name") != "Chess Club" {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Activity not found"})
			return
		}
		email := r.URL.Query().Get("email")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Signed up " + email + " for Chess Club"})
	})
	mux.HandleFunc("POST /activities/{name}/unregister", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Staff session is required"})
			return
		}
		email := r.URL.Query().Get("email")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Unregistered " + email + " from Chess Club"})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	server := newFakeServer(t)
	api, err := New(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	snapshot, err := api.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	chess, ok := snapshot["Chess Club"]
	if !ok {
		t.Fatalf("missing Chess Club in %v", snapshot)
	}
	if chess.SpotsLeft() != 11 {
		t.Errorf("spots left = %d", chess.SpotsLeft())
	}
}

func TestSignup(t *testing.T) {
	t.Parallel()

	server := newFakeServer(t)
	api, err := New(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	message, err := api.Signup(context.Background(), "Chess Club", "ava@mergington.edu")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if message != "Signed up ava@mergington.edu for Chess Club" {
		t.Errorf("message = %q", message)
	}
}

func TestSignupUnknownActivity(t *testing.T) {
	t.Parallel()

	server := newFakeServer(t)
	api, err := New(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = api.Signup(context.Background(), "Underwater Basket Weaving", "ava@mergington.edu")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Detail != "Activity not found" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestUnregisterSendsStaffToken(t *testing.T) {
	t.Parallel()

	server := newFakeServer(t)

	bare, err := New(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = bare.Unregister(context.Background(), "Chess Club", "michael@mergington.edu")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized APIError, got %v", err)
	}

	authed, err := New(server.URL, WithStaffToken("session-token"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	message, err := authed.Unregister(context.Background(), "Chess Club", "michael@mergington.edu")
	if err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if message != "Unregistered michael@mergington.edu from Chess Club" {
		t.Errorf("message = %q", message)
	}
}

func TestActivityNameEscaping(t *testing.T) {
	t.Parallel()

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))
	t.Cleanup(server.Close)

	api, err := New(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := api.Signup(context.Background(), "Chess Club", "ava@mergington.edu"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	want := "/activities/" + url.PathEscape("Chess Club") + "/signup"
	if gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	t.Parallel()

	if _, err := New("not-a-url"); err == nil {
		t.Error("expected error for URL without scheme")
	}
}
