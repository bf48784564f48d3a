package web

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"edusahasra/internal/adapters/email"
	"edusahasra/internal/adapters/http/perf"
	"edusahasra/internal/adapters/storage"
	contactStore "edusahasra/internal/adapters/storage/contact"
	draftStore "edusahasra/internal/adapters/storage/draft"
	sessionStore "edusahasra/internal/adapters/storage/sessionrecord"
	"edusahasra/internal/apiclient"
	"edusahasra/internal/domain/request"
	"edusahasra/internal/domain/session"
	"edusahasra/internal/domain/story"
)

// testBrowserID is a well-formed browser cookie value for seeding records.
const testBrowserID = "abababababababababababababababab"

func TestMain(m *testing.M) {
	// Handlers resolve templates relative to the repo root; tests run from
	// the package directory.
	templatesDir = "templates"
	RateLimitPerSecond = 1000
	os.Exit(m.Run())
}

// newTestApp builds the full middleware-wrapped mux against a stub backend
// and a throwaway sqlite database.
func newTestApp(t *testing.T, backendHandler http.Handler) (http.Handler, *Stores, *sql.DB) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("failed to init test DB: %v", err)
	}

	srv := httptest.NewServer(backendHandler)
	t.Cleanup(srv.Close)

	s := &Stores{
		SessionStore: sessionStore.NewSQLiteStore(db),
		DraftStore:   draftStore.NewSQLiteStore(db, t.TempDir()),
		ContactStore: contactStore.NewSQLiteStore(db),
	}
	SetEmailSender(email.NewNoopSender(zerolog.Nop()), "noreply@edusahasra.test", "team@edusahasra.test")
	h := NewMux(MuxConfig{
		StaticDir:     t.TempDir(),
		CSRFKey:       []byte(strings.Repeat("k", 32)),
		DefaultLocale: "en",
		Client:        apiclient.New(srv.URL, 5*time.Second, zerolog.Nop()),
		Log:           zerolog.Nop(),
	}, s, perf.NewCollector(perf.DefaultRingSize))
	return h, s, db
}

// stubRequests returns n active requests in the bare-array shape the
// backend serves.
func stubRequests(n int) []request.Request {
	reqs := make([]request.Request, n)
	for i := range reqs {
		reqs[i] = request.Request{
			ID:         fmt.Sprintf("req-%02d", i+1),
			SchoolID:   "sch-1",
			SchoolName: fmt.Sprintf("School %02d", i+1),
			District:   "Galle",
			Items:      []request.Item{{Category: "Books", Quantity: 10, Received: 4}},
			Status:     request.StatusActive,
			CreatedAt:  fmt.Sprintf("2026-08-%02dT10:00:00Z", i%28+1),
		}
	}
	return reqs
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// publicBackend stubs the endpoints the public pages read from.
func publicBackend(needs int) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/requests", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, stubRequests(needs))
	})
	mux.HandleFunc("/api/stories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []story.Story{{
			ID:         "sto-1",
			SchoolName: "Mahinda College",
			Title:      "New books arrived",
			Body:       "The donated books are in use.",
			Status:     story.StatusApproved,
			CreatedAt:  "2026-08-10T10:00:00Z",
		}})
	})
	return mux
}

func get(t *testing.T, h http.Handler, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func browserCookie() *http.Cookie {
	return &http.Cookie{Name: "edusahasra_browser", Value: testBrowserID}
}

func TestHomePageRenders(t *testing.T) {
	h, _, _ := newTestApp(t, publicBackend(2))

	w := get(t, h, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET / status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"School 01", "School 02", "New books arrived", "Mahinda College"} {
		if !strings.Contains(body, want) {
			t.Errorf("home page missing %q", want)
		}
	}
}

func TestHomePageShowsErrorPageOnBackendFailure(t *testing.T) {
	h, _, _ := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))

	w := get(t, h, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET / with backend down status = %d, want 200 error page", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Something went wrong") {
		t.Errorf("backend failure did not render the error page")
	}
}

func TestNeedsListPagination(t *testing.T) {
	h, _, _ := newTestApp(t, publicBackend(25))

	w := get(t, h, "/needs?page=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /needs?page=2 status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Showing 11 to 20 of 25 entries") {
		t.Errorf("page 2 range summary missing; body does not contain the expected range text")
	}
	if !strings.Contains(body, "School 01") && !strings.Contains(body, "School 11") {
		t.Errorf("page 2 rendered no request cards")
	}
}

func TestNeedsListSearchFilter(t *testing.T) {
	h, _, _ := newTestApp(t, publicBackend(25))

	w := get(t, h, "/needs?search=School+07", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /needs?search status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "School 07") {
		t.Errorf("filtered list missing the matching school")
	}
	if strings.Contains(body, "School 08") {
		t.Errorf("filtered list leaked a non-matching school")
	}
}

func TestGuardedPageRedirectsAnonymous(t *testing.T) {
	h, _, _ := newTestApp(t, publicBackend(0))

	cases := []struct{ path, login string }{
		{"/my-donations", "/donor-login"},
		{"/school/dashboard", "/school-login"},
		{"/admin/dashboard", "/admin-login"},
	}
	for _, tc := range cases {
		w := get(t, h, tc.path, nil)
		if w.Code != http.StatusSeeOther {
			t.Errorf("GET %s status = %d, want 303", tc.path, w.Code)
			continue
		}
		if loc := w.Header().Get("Location"); loc != tc.login {
			t.Errorf("GET %s redirects to %s, want %s", tc.path, loc, tc.login)
		}
	}
}

func TestExpiredSessionClearsRecordOnce(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/donations/mine", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"token expired"}`, http.StatusUnauthorized)
	})
	h, s, _ := newTestApp(t, mux)

	ctx := context.Background()
	rec, err := session.NewRecord(session.RoleDonor, []byte(`{"token":"stale","fullName":"Amal"}`))
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	if err := s.SessionStore.Set(ctx, testBrowserID, rec); err != nil {
		t.Fatalf("Set: %v", err)
	}

	w := get(t, h, "/my-donations", []*http.Cookie{browserCookie()})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("GET /my-donations status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/donor-login" {
		t.Errorf("redirects to %s, want /donor-login", loc)
	}
	if _, ok, _ := s.SessionStore.Get(ctx, testBrowserID, session.RoleDonor); ok {
		t.Errorf("stale donor record survived the 401")
	}
}

func TestViewerNavShowsLoggedInRole(t *testing.T) {
	h, s, _ := newTestApp(t, publicBackend(1))

	rec, err := session.NewRecord(session.RoleDonor, []byte(`{"token":"t1","fullName":"Nimali Perera"}`))
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	if err := s.SessionStore.Set(context.Background(), testBrowserID, rec); err != nil {
		t.Fatalf("Set: %v", err)
	}

	w := get(t, h, "/", []*http.Cookie{browserCookie()})
	if w.Code != http.StatusOK {
		t.Fatalf("GET / status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Nimali Perera") {
		t.Errorf("nav missing the logged-in donor's name")
	}
}

func TestUnknownPathNotFound(t *testing.T) {
	h, _, _ := newTestApp(t, publicBackend(0))

	for _, path := range []string{"/nope", "/needs/abc/def/ghi", "/school/unknown"} {
		if w := get(t, h, path, nil); w.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, w.Code)
		}
	}
}

var csrfTokenRe = regexp.MustCompile(`name="gorilla\.csrf\.Token" value="([^"]+)"`)

// fetchCSRF loads a form page and returns the embedded token plus the
// cookies the response issued.
func fetchCSRF(t *testing.T, h http.Handler, path string, cookies []*http.Cookie) (string, []*http.Cookie) {
	t.Helper()
	w := get(t, h, path, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("GET %s status = %d, want 200", path, w.Code)
	}
	m := csrfTokenRe.FindStringSubmatch(w.Body.String())
	if m == nil {
		t.Fatalf("no CSRF token in %s", path)
	}
	return m[1], append(cookies, w.Result().Cookies()...)
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestDonorLoginStoresVerbatimRecord(t *testing.T) {
	loginBody := `{"token":"tok-1","fullName":"Amal Perera","email":"amal@example.lk","donorId":"don-1"}`
	mux := http.NewServeMux()
	mux.HandleFunc("/api/donors/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var creds map[string]string
		json.NewDecoder(r.Body).Decode(&creds)
		if creds["email"] != "amal@example.lk" || creds["password"] != "secret12" {
			http.Error(w, `{"message":"invalid credentials"}`, http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, loginBody)
	})
	h, s, _ := newTestApp(t, mux)

	cookies := []*http.Cookie{browserCookie()}
	token, cookies := fetchCSRF(t, h, "/donor-login", cookies)

	w := postForm(t, h, "/donor-login", url.Values{
		"gorilla.csrf.Token": {token},
		"email":              {"amal@example.lk"},
		"password":           {"secret12"},
	}, cookies)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("POST /donor-login status = %d, want 303; body: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("login redirects to %s, want /", loc)
	}

	rec, ok, err := s.SessionStore.Get(context.Background(), testBrowserID, session.RoleDonor)
	if err != nil || !ok {
		t.Fatalf("donor record after login: ok=%v err=%v", ok, err)
	}
	if rec.Token != "tok-1" || rec.FullName != "Amal Perera" {
		t.Errorf("record fields wrong: %+v", rec)
	}
	if strings.TrimSpace(string(rec.Raw)) != loginBody {
		t.Errorf("login response not stored verbatim: %s", rec.Raw)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/donors/login", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid credentials"}`, http.StatusUnauthorized)
	})
	h, s, _ := newTestApp(t, mux)

	cookies := []*http.Cookie{browserCookie()}
	token, cookies := fetchCSRF(t, h, "/donor-login", cookies)

	w := postForm(t, h, "/donor-login", url.Values{
		"gorilla.csrf.Token": {token},
		"email":              {"amal@example.lk"},
		"password":           {"wrongpass"},
	}, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("failed login status = %d, want 200 re-render", w.Code)
	}
	if !strings.Contains(w.Body.String(), "amal@example.lk") {
		t.Errorf("re-rendered form lost the typed email")
	}
	if _, ok, _ := s.SessionStore.Get(context.Background(), testBrowserID, session.RoleDonor); ok {
		t.Errorf("failed login left a donor record behind")
	}
}

func TestLogoutClearsOnlyOneRole(t *testing.T) {
	h, s, _ := newTestApp(t, publicBackend(0))

	ctx := context.Background()
	for _, role := range []string{session.RoleDonor, session.RoleSchool} {
		rec, err := session.NewRecord(role, []byte(`{"token":"t-`+role+`","fullName":"X"}`))
		if err != nil {
			t.Fatalf("NewRecord(%s): %v", role, err)
		}
		if err := s.SessionStore.Set(ctx, testBrowserID, rec); err != nil {
			t.Fatalf("Set(%s): %v", role, err)
		}
	}

	cookies := []*http.Cookie{browserCookie()}
	token, cookies := fetchCSRF(t, h, "/", cookies)

	w := postForm(t, h, "/logout", url.Values{
		"gorilla.csrf.Token": {token},
		"role":               {session.RoleDonor},
	}, cookies)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("POST /logout status = %d, want 303", w.Code)
	}

	if _, ok, _ := s.SessionStore.Get(ctx, testBrowserID, session.RoleDonor); ok {
		t.Errorf("donor record survived logout")
	}
	if _, ok, _ := s.SessionStore.Get(ctx, testBrowserID, session.RoleSchool); !ok {
		t.Errorf("school record was cleared by a donor logout")
	}
}

func TestContactFormStoresMessage(t *testing.T) {
	h, _, db := newTestApp(t, publicBackend(0))

	cookies := []*http.Cookie{browserCookie()}
	token, cookies := fetchCSRF(t, h, "/contact", cookies)

	w := postForm(t, h, "/contact", url.Values{
		"gorilla.csrf.Token": {token},
		"name":               {"Kasun"},
		"email":              {"kasun@example.lk"},
		"message":            {"How do I donate to a school in Jaffna?"},
	}, cookies)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("POST /contact status = %d, want 303; body: %s", w.Code, w.Body.String())
	}

	var gotEmail, gotMessage string
	err := db.QueryRow("SELECT email, message FROM contact_message").Scan(&gotEmail, &gotMessage)
	if err != nil {
		t.Fatalf("reading stored message: %v", err)
	}
	if gotEmail != "kasun@example.lk" || !strings.Contains(gotMessage, "Jaffna") {
		t.Errorf("contact message stored wrong: %s / %s", gotEmail, gotMessage)
	}
}
