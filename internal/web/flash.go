package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// flashCookieName carries a one-shot banner across a redirect-after-POST.
const flashCookieName = "mergington_flash"

type flashPayload struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func writeFlash(w http.ResponseWriter, r *http.Request, level, message string) {
	encoded, err := json.Marshal(flashPayload{Level: level, Message: message})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(encoded),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   r != nil && r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash reads and clears the flash cookie.
func takeFlash(w http.ResponseWriter, r *http.Request) (flashPayload, bool) {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return flashPayload{}, false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	decoded, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return flashPayload{}, false
	}
	var payload flashPayload
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return flashPayload{}, false
	}
	return payload, payload.Message != ""
}
