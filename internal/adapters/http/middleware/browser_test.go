package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"edusahasra/internal/domain/session"
)

// fakeRecordStore implements sessionrecord.Store in memory.
type fakeRecordStore struct {
	records map[string]session.Record // key: browserID + "/" + role
}

func (f *fakeRecordStore) Get(_ context.Context, browserID, role string) (session.Record, bool, error) {
	rec, ok := f.records[browserID+"/"+role]
	return rec, ok, nil
}

func (f *fakeRecordStore) Set(_ context.Context, browserID string, rec session.Record) error {
	f.records[browserID+"/"+rec.Role] = rec
	return nil
}

func (f *fakeRecordStore) Clear(_ context.Context, browserID, role string) error {
	delete(f.records, browserID+"/"+role)
	return nil
}

func (f *fakeRecordStore) ClearAll(_ context.Context, browserID string) error {
	return nil
}

// TestBrowserSession_AssignsID verifies a cookie is issued and the id
// reaches the request context.
func TestBrowserSession_AssignsID(t *testing.T) {
	var seen string
	h := BrowserSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = BrowserID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !validBrowserID(seen) {
		t.Fatalf("expected a 32-hex browser id, got %q", seen)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != browserCookieName {
		t.Fatalf("expected one browser cookie, got %v", cookies)
	}
	if cookies[0].Value != seen {
		t.Error("cookie value and context id differ")
	}
	if !cookies[0].HttpOnly || cookies[0].SameSite != http.SameSiteStrictMode {
		t.Error("browser cookie must be HttpOnly and SameSite=Strict")
	}
}

// TestBrowserSession_ReusesValidCookie verifies an existing id sticks.
func TestBrowserSession_ReusesValidCookie(t *testing.T) {
	var seen string
	h := BrowserSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = BrowserID(r.Context())
	}))

	id := "0123456789abcdef0123456789abcdef"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: browserCookieName, Value: id})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != id {
		t.Errorf("expected existing id reused, got %q", seen)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("no new cookie should be issued for a valid id")
	}
}

// TestBrowserSession_ReplacesForgedCookie verifies a malformed id is
// replaced instead of trusted.
func TestBrowserSession_ReplacesForgedCookie(t *testing.T) {
	var seen string
	h := BrowserSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = BrowserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: browserCookieName, Value: "../../etc/passwd"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !validBrowserID(seen) {
		t.Fatalf("expected a fresh id, got %q", seen)
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Error("expected a replacement cookie")
	}
}

// TestRequireRole verifies the guard redirects logged-out browsers to the
// role's login page and admits browsers holding a token.
func TestRequireRole(t *testing.T) {
	store := &fakeRecordStore{records: map[string]session.Record{
		"b1/school": {Role: session.RoleSchool, Token: "tok"},
		"b2/school": {Role: session.RoleSchool}, // tokenless
	}}
	guard := RequireRole(store, session.RoleSchool)
	h := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		browserID  string
		wantStatus int
	}{
		{"withToken", "b1", http.StatusOK},
		{"tokenless", "b2", http.StatusSeeOther},
		{"unknownBrowser", "b3", http.StatusSeeOther},
		{"noBrowser", "", http.StatusSeeOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/school/dashboard", nil)
			if tt.browserID != "" {
				req = req.WithContext(ContextWithBrowserID(req.Context(), tt.browserID))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusSeeOther {
				if loc := rec.Header().Get("Location"); loc != "/school-login" {
					t.Errorf("redirect to %q, want /school-login", loc)
				}
			}
		})
	}
}
