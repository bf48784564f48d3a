package web

import (
	"bytes"
	"html/template"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"edusahasra/internal/adapters/http/middleware"
	sessionStore "edusahasra/internal/adapters/storage/sessionrecord"
	"edusahasra/internal/apiclient"
	"edusahasra/internal/application/forms"
	"edusahasra/internal/application/listutil"
	"edusahasra/internal/domain/session"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	appLog.Error().Err(err).Msg("internal_error")
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// templatesDir is relative to the working directory; package tests point
// it at the local templates directory.
var templatesDir = "internal/adapters/http/templates"

// sessions returns the session-record provider for the request's browser.
func sessions(r *http.Request) *sessionStore.Provider {
	return sessionStore.NewProvider(stores.SessionStore, middleware.BrowserID(r.Context()), appLog)
}

// bound returns the backend client scoped to this browser and page. The
// page path decides which role a 401 logs out.
func bound(r *http.Request) *apiclient.Bound {
	return backend.Bind(sessions(r), r.URL.Path)
}

// viewer summarises who is logged in for nav rendering. All three roles
// can be logged in at once in the same browser.
type viewer struct {
	Donor  *session.Record
	School *session.Record
	Admin  *session.Record
}

func currentViewer(r *http.Request) viewer {
	p := sessions(r)
	var v viewer
	if rec, ok := p.Get(r.Context(), session.RoleDonor); ok {
		v.Donor = &rec
	}
	if rec, ok := p.Get(r.Context(), session.RoleSchool); ok {
		v.School = &rec
	}
	if rec, ok := p.Get(r.Context(), session.RoleAdmin); ok {
		v.Admin = &rec
	}
	return v
}

const flashCookieName = "edusahasra_flash"

// setFlash stores a one-shot message shown on the next rendered page.
func setFlash(w http.ResponseWriter, kind, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(kind + "|" + message),
		HttpOnly: true,
		Secure:   middleware.SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   60,
	})
}

// popFlash reads and clears the pending flash message.
func popFlash(w http.ResponseWriter, r *http.Request) (kind, message string) {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return "", ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return "", ""
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] == '|' {
			return raw[:i], raw[i+1:]
		}
	}
	return "info", raw
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data map[string]any) {
	v := currentViewer(r)
	flashKind, flashMessage := popFlash(w, r)

	funcMap := template.FuncMap{
		"csrfToken": func() string { return csrf.Token(r) },
		"viewer":    func() viewer { return v },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"errFor": func(errs forms.Errors, key string) string { return errs[key] },
		"fileURL": func(path string) string {
			return backend.ResolveFileURL(path)
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"paginationQuery": func(page int, params listutil.ListParams) template.URL {
			q := url.Values{}
			q.Set("page", strconv.Itoa(page))
			if params.PerPage != listutil.DefaultPerPage {
				q.Set("per_page", strconv.Itoa(params.PerPage))
			}
			if params.SortBy != "" {
				q.Set("sortBy", params.SortBy)
			}
			if params.Search != "" {
				q.Set("search", params.Search)
			}
			for key, value := range params.Filters {
				q.Set(key, value)
			}
			return template.URL(q.Encode())
		},
	}

	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["FlashKind"]; !ok {
		data["FlashKind"] = flashKind
		data["FlashMessage"] = flashMessage
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}
