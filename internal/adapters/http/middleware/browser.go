package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"edusahasra/internal/adapters/storage/sessionrecord"
	"edusahasra/internal/domain/session"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const browserContextKey contextKey = "browser"

const browserCookieName = "edusahasra_browser"

// SecureCookies controls the Secure flag on issued cookies. Set true in
// production.
var SecureCookies bool

// BrowserSession returns middleware that assigns each browser an opaque
// id cookie. The id keys all stored session records and wizard drafts;
// it carries no authentication by itself.
// POST: every downstream request context carries a non-empty browser id
func BrowserSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if cookie, err := r.Cookie(browserCookieName); err == nil {
			id = cookie.Value
		}
		if !validBrowserID(id) {
			id = newBrowserID()
			http.SetCookie(w, &http.Cookie{
				Name:     browserCookieName,
				Value:    id,
				HttpOnly: true,
				Secure:   SecureCookies,
				SameSite: http.SameSiteStrictMode,
				Path:     "/",
				MaxAge:   180 * 24 * 60 * 60,
			})
		}
		ctx := context.WithValue(r.Context(), browserContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BrowserID returns the browser id set by BrowserSession, or "".
func BrowserID(ctx context.Context) string {
	id, _ := ctx.Value(browserContextKey).(string)
	return id
}

// ContextWithBrowserID returns a context with the given browser id set.
// Intended for use in tests.
func ContextWithBrowserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, browserContextKey, id)
}

// RequireRole returns middleware that blocks pages from browsers without a
// valid session record for the role, redirecting to the role's login page.
// Malformed or tokenless records are discarded by the store on read, so a
// broken record behaves exactly like a logged-out browser.
func RequireRole(store sessionrecord.Store, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			browserID := BrowserID(r.Context())
			if browserID == "" {
				http.Redirect(w, r, session.LoginRoute(role), http.StatusSeeOther)
				return
			}
			rec, ok, err := store.Get(r.Context(), browserID, role)
			if err != nil || !ok || rec.Token == "" {
				http.Redirect(w, r, session.LoginRoute(role), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func validBrowserID(id string) bool {
	if len(id) != 32 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}

func newBrowserID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is unrecoverable
		panic(err)
	}
	return hex.EncodeToString(b)
}
