package web

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/mergington/activities/internal/platform/httpx"
)

// responseBuffer captures component rendering for htmx partial responses.
type responseBuffer struct {
	header      http.Header
	statusCode  int
	body        bytes.Buffer
	headerWrote bool
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{
		header:     make(http.Header),
		statusCode: http.StatusOK,
	}
}

func (w *responseBuffer) Header() http.Header {
	return w.header
}

func (w *responseBuffer) WriteHeader(status int) {
	if w.headerWrote {
		return
	}
	w.headerWrote = true
	w.statusCode = status
}

func (w *responseBuffer) Write(body []byte) (int, error) {
	return w.body.Write(body)
}

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		if strings.EqualFold(key, "Set-Cookie") {
			for _, value := range values {
				dst.Add(key, value)
			}
			continue
		}
		for _, value := range values {
			dst.Set(key, value)
		}
	}
}

// renderPage renders full for normal requests and the <main> content of full
// for htmx ones, so form posts swap the page body without a reload.
func renderPage(w http.ResponseWriter, r *http.Request, full templ.Component) {
	if full == nil {
		return
	}
	if !httpx.IsHTMXRequest(r) {
		templ.Handler(full).ServeHTTP(w, r)
		return
	}

	capture := newResponseBuffer()
	templ.Handler(full).ServeHTTP(capture, r)

	body := capture.body.Bytes()
	if mainContent, ok := extractMainContent(body); ok {
		body = mainContent
	}

	copyHeaders(w.Header(), capture.Header())
	status := http.StatusOK
	if capture.headerWrote {
		status = capture.statusCode
	}
	_ = httpx.WriteHTML(w, status, string(body))
}

func extractMainContent(body []byte) ([]byte, bool) {
	start := bytes.Index(body, []byte("<main"))
	if start < 0 {
		return nil, false
	}
	openClose := bytes.Index(body[start:], []byte(">"))
	if openClose < 0 {
		return nil, false
	}
	contentStart := start + openClose + 1
	end := bytes.Index(body[contentStart:], []byte("</main>"))
	if end < 0 {
		return nil, false
	}
	return body[contentStart : contentStart+end], true
}
