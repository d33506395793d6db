package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/mergington/activities/internal/platform/errors"
)

func TestChainAppliesInDeclarationOrder(t *testing.T) {
	t.Parallel()

	var order []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), tag("first"), nil, tag("second"))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := "first,second,handler"
	if got := strings.Join(order, ","); got != want {
		t.Fatalf("order = %q, want %q", got, want)
	}
}

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	t.Parallel()

	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected generated request id")
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Fatalf("X-Request-ID = %q, want %q", got, "req-42")
	}
}

func TestRecoverPanicWrites500(t *testing.T) {
	t.Parallel()

	handler := RecoverPanic()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/activities", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestWriteJSONDetailEnvelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	if err := WriteJSONDetail(rec, http.StatusNotFound, "Activity not found"); err != nil {
		t.Fatalf("write detail: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload["detail"] != "Activity not found" {
		t.Fatalf("detail = %q, want %q", payload["detail"], "Activity not found")
	}
}

func TestWriteErrorUsesDomainStatus(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteError(rec, apperrors.New(apperrors.CodeActivityNotFound, "Activity not found"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload["detail"] != "Activity not found" {
		t.Fatalf("detail = %q, want %q", payload["detail"], "Activity not found")
	}
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("dial tcp 127.0.0.1:5432: connection refused"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload["detail"] != "Internal server error" {
		t.Fatalf("detail = %q, want generic detail", payload["detail"])
	}
}

func TestWriteRedirectHonorsHTMX(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/signup", nil)
	req.Header.Set("HX-Request", "true")
	WriteRedirect(rec, req, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/" {
		t.Fatalf("HX-Redirect = %q, want %q", got, "/")
	}

	rec = httptest.NewRecorder()
	WriteRedirect(rec, httptest.NewRequest(http.MethodPost, "/signup", nil), "/")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
}
