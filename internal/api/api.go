// Package api serves the activities JSON contract.
package api

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/mergington/activities/internal/activities/domain"
	"github.com/mergington/activities/internal/activities/service"
	apperrors "github.com/mergington/activities/internal/platform/errors"
	"github.com/mergington/activities/internal/platform/httpx"
	"github.com/mergington/activities/internal/staffauth"
)

// PagePath is where the server-rendered signup page lives.
const PagePath = "/web"

// Handler serves the JSON API surface.
type Handler struct {
	service *service.Service
	staff   staffauth.Config
}

// New creates an API handler.
func New(svc *service.Service, staff staffauth.Config) *Handler {
	return &Handler{service: svc, staff: staff}
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.redirectToPage)
	mux.HandleFunc("GET /healthz", h.health)
	mux.HandleFunc("GET /activities", h.listActivities)
	mux.HandleFunc("POST /activities/{name}/signup", h.signup)
	mux.HandleFunc("POST /activities/{name}/unregister", h.unregister)
	mux.HandleFunc("POST /auth/login", h.login)
	mux.HandleFunc("POST /auth/logout", h.logout)
}

// activityPayload mirrors the original wire shape, keyed by activity name.
type activityPayload struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

func (h *Handler) redirectToPage(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, PagePath, http.StatusTemporaryRedirect)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.service.Snapshot(httpx.RequestContext(r))
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	payload := make(map[string]activityPayload, len(activities))
	for _, activity := range activities {
		payload[activity.Name] = toPayload(activity)
	}
	_ = httpx.WriteJSON(w, http.StatusOK, payload)
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if err := h.service.Signup(httpx.RequestContext(r), name, email); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Signed up %s for %s", strings.ToLower(email), name),
	})
}

func (h *Handler) unregister(w http.ResponseWriter, r *http.Request) {
	if err := h.requireStaff(r); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	name := r.PathValue("name")
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if err := h.service.Unregister(httpx.RequestContext(r), name, email); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Unregistered %s from %s", strings.ToLower(email), name),
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if !h.staff.Enabled() {
		_ = httpx.WriteJSONDetail(w, http.StatusNotFound, "Staff sessions are not enabled")
		return
	}
	if !h.staff.CheckPassword(r.FormValue("password")) {
		_ = httpx.WriteJSONDetail(w, http.StatusUnauthorized, "Invalid staff password")
		return
	}
	token, err := staffauth.IssueSession(h.staff, r.FormValue("subject"))
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	staffauth.WriteCookie(w, r, token, h.staff.SessionExpiry())
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Staff session started",
		"token":   token,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	staffauth.ClearCookie(w, r)
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Staff session ended"})
}

// requireStaff gates roster removals once staff sessions are configured.
// Without a configured key the endpoint stays open.
func (h *Handler) requireStaff(r *http.Request) error {
	if !h.staff.Enabled() {
		return nil
	}
	token := staffauth.ReadCookie(r)
	if token == "" {
		token = bearerToken(r)
	}
	_, err := staffauth.ValidateSession(token, h.staff)
	return err
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// writeFailure maps domain errors to the wire detail strings. The response
// status comes from the error code; unknown errors are logged and written
// through the generic error writer.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	detail, known := detailFor(err)
	if !known {
		log.Printf("request failed method=%s path=%s err=%v", r.Method, r.URL.Path, err)
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSONDetail(w, apperrors.HTTPStatus(err), detail)
}

func detailFor(err error) (string, bool) {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeActivityNotFound:
		return "Activity not found", true
	case apperrors.CodeSignupDuplicate:
		return "Student is already signed up", true
	case apperrors.CodeActivityFull:
		return "Activity is full", true
	case apperrors.CodeSignupNotRegistered:
		return "Student is not signed up for this activity", true
	case apperrors.CodeSignupEmailEmpty:
		return "Email is required", true
	case apperrors.CodeSignupEmailInvalid:
		return "Email is invalid", true
	case apperrors.CodeActivityNameEmpty:
		return "Activity name is required", true
	case apperrors.CodeStaffSessionRequired, apperrors.CodeStaffSessionInvalid, apperrors.CodeStaffSessionExpired:
		return "Staff session is required", true
	default:
		return "", false
	}
}

func toPayload(activity domain.Activity) activityPayload {
	participants := activity.Participants
	if participants == nil {
		participants = []string{}
	}
	return activityPayload{
		Description:     activity.Description,
		Schedule:        activity.Schedule,
		MaxParticipants: activity.MaxParticipants,
		Participants:    participants,
	}
}
