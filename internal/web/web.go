// Package web serves the server-rendered activity signup page.
package web

import (
	"embed"
	"log"
	"net/http"
	"strings"

	"github.com/mergington/activities/internal/activities/domain"
	"github.com/mergington/activities/internal/activities/service"
	apperrors "github.com/mergington/activities/internal/platform/errors"
	"github.com/mergington/activities/internal/platform/httpx"
	"github.com/mergington/activities/internal/platform/i18n"
	"github.com/mergington/activities/internal/staffauth"
	"github.com/mergington/activities/internal/web/templates"
)

//go:embed static
var staticFS embed.FS

// PagePath is where the signup page is mounted.
const PagePath = "/web"

// Handler serves the signup page and its form posts.
type Handler struct {
	service *service.Service
	staff   staffauth.Config
	bundle  *i18n.Bundle
}

// New creates a web handler using the embedded locale catalogs.
func New(svc *service.Service, staff staffauth.Config) *Handler {
	return &Handler{
		service: svc,
		staff:   staff,
		bundle:  i18n.Default(),
	}
}

// Register mounts the web routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+PagePath, h.page)
	mux.HandleFunc("POST "+PagePath+"/signup", h.signup)
	mux.HandleFunc("POST "+PagePath+"/unregister", h.unregister)
	mux.HandleFunc("POST "+PagePath+"/login", h.login)
	mux.HandleFunc("POST "+PagePath+"/logout", h.logout)
	mux.Handle("GET /static/", http.FileServerFS(staticFS))
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	loc := h.localizer(r)
	var banner templates.Banner
	if flash, ok := takeFlash(w, r); ok {
		banner = templates.Banner(flash)
	}
	h.render(w, r, loc, banner)
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	loc := h.localizer(r)
	activityName := strings.TrimSpace(r.FormValue("activity"))
	email := strings.TrimSpace(r.FormValue("email"))

	var banner templates.Banner
	if err := h.service.Signup(httpx.RequestContext(r), activityName, email); err != nil {
		banner = h.failureBanner(r, loc, err)
	} else {
		banner = templates.Banner{
			Level:   "success",
			Message: loc.T("flash.signup_success", strings.ToLower(email), activityName),
		}
	}
	h.finishMutation(w, r, loc, banner)
}

func (h *Handler) unregister(w http.ResponseWriter, r *http.Request) {
	loc := h.localizer(r)
	activityName := strings.TrimSpace(r.FormValue("activity"))
	email := strings.TrimSpace(r.FormValue("email"))

	var banner templates.Banner
	if err := h.requireStaff(r); err != nil {
		banner = h.failureBanner(r, loc, err)
	} else if err := h.service.Unregister(httpx.RequestContext(r), activityName, email); err != nil {
		banner = h.failureBanner(r, loc, err)
	} else {
		banner = templates.Banner{
			Level:   "success",
			Message: loc.T("flash.unregister_success", strings.ToLower(email), activityName),
		}
	}
	h.finishMutation(w, r, loc, banner)
}

// login handles the staff sign-in form. Failures surface as a banner on the
// page rather than a bare error response.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	loc := h.localizer(r)
	if !h.staff.Enabled() {
		http.NotFound(w, r)
		return
	}
	if !h.staff.CheckPassword(r.FormValue("password")) {
		h.finishMutation(w, r, loc, templates.Banner{
			Level:   "error",
			Message: loc.T("error.login_failed"),
		})
		return
	}
	token, err := staffauth.IssueSession(h.staff, r.FormValue("subject"))
	if err != nil {
		h.finishMutation(w, r, loc, h.failureBanner(r, loc, err))
		return
	}
	staffauth.WriteCookie(w, r, token, h.staff.SessionExpiry())
	h.finishMutation(w, r, loc, templates.Banner{
		Level:   "success",
		Message: loc.T("flash.login_success"),
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	loc := h.localizer(r)
	staffauth.ClearCookie(w, r)
	h.finishMutation(w, r, loc, templates.Banner{
		Level:   "success",
		Message: loc.T("flash.logout_success"),
	})
}

// finishMutation re-renders the page body for htmx posts and falls back to
// redirect-after-POST with a flash cookie for plain form submissions.
func (h *Handler) finishMutation(w http.ResponseWriter, r *http.Request, loc i18n.Localizer, banner templates.Banner) {
	if httpx.IsHTMXRequest(r) {
		h.render(w, r, loc, banner)
		return
	}
	writeFlash(w, r, banner.Level, banner.Message)
	httpx.WriteRedirect(w, r, PagePath)
}

// render draws the page from a fresh snapshot. A snapshot failure renders a
// generic error banner with no activities rather than a partial list.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, loc i18n.Localizer, banner templates.Banner) {
	var activities []domain.Activity
	snapshot, err := h.service.Snapshot(httpx.RequestContext(r))
	if err != nil {
		log.Printf("page snapshot failed path=%s err=%v", r.URL.Path, err)
		banner = templates.Banner{Level: "error", Message: loc.T("error.generic")}
	} else {
		activities = snapshot
	}
	renderPage(w, r, templates.Page(templates.PageProps{
		Loc:           loc,
		Activities:    activities,
		Banner:        banner,
		StaffEnabled:  h.staff.Enabled(),
		StaffSignedIn: h.staffSignedIn(r),
	}))
}

func (h *Handler) failureBanner(r *http.Request, loc i18n.Localizer, err error) templates.Banner {
	key, known := errorKey(err)
	if !known {
		log.Printf("mutation failed path=%s err=%v", r.URL.Path, err)
	}
	return templates.Banner{Level: "error", Message: loc.T(key)}
}

func (h *Handler) requireStaff(r *http.Request) error {
	if !h.staff.Enabled() {
		return nil
	}
	_, err := staffauth.ValidateSession(staffauth.ReadCookie(r), h.staff)
	return err
}

func (h *Handler) staffSignedIn(r *http.Request) bool {
	if !h.staff.Enabled() {
		return false
	}
	_, err := staffauth.ValidateSession(staffauth.ReadCookie(r), h.staff)
	return err == nil
}

func (h *Handler) localizer(r *http.Request) i18n.Localizer {
	tag := h.bundle.MatchAcceptLanguage(r.Header.Get("Accept-Language"))
	return h.bundle.Localizer(tag)
}

func errorKey(err error) (string, bool) {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeActivityNotFound:
		return "error.activity_not_found", true
	case apperrors.CodeSignupDuplicate:
		return "error.signup_duplicate", true
	case apperrors.CodeActivityFull:
		return "error.activity_full", true
	case apperrors.CodeSignupNotRegistered:
		return "error.not_registered", true
	case apperrors.CodeSignupEmailEmpty:
		return "error.email_required", true
	case apperrors.CodeSignupEmailInvalid:
		return "error.email_invalid", true
	case apperrors.CodeStaffSessionRequired, apperrors.CodeStaffSessionInvalid, apperrors.CodeStaffSessionExpired:
		return "error.staff_required", true
	default:
		return "error.generic", false
	}
}
