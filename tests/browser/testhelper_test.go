package browser_test

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"

	web "edusahasra/internal/adapters/http"
	"edusahasra/internal/adapters/http/middleware"
	"edusahasra/internal/adapters/http/perf"
	"edusahasra/internal/adapters/storage"
	contactStore "edusahasra/internal/adapters/storage/contact"
	draftStore "edusahasra/internal/adapters/storage/draft"
	sessionStore "edusahasra/internal/adapters/storage/sessionrecord"
	"edusahasra/internal/apiclient"
	"edusahasra/internal/domain/donation"
	"edusahasra/internal/domain/request"
	"edusahasra/internal/domain/story"
)

// Credentials the stub backend accepts.
const (
	donorEmail     = "donor@test.lk"
	schoolEmail    = "school@test.lk"
	testPassword   = "TestPass123!"
	donorToken     = "donor-token"
	schoolToken    = "school-token"
	donorFullName  = "Test Donor"
	schoolFullName = "Galle Central College"
)

// stubBackend fakes the REST API this frontend talks to. State is mutable
// so flows that create resources can read them back.
type stubBackend struct {
	mu             sync.Mutex
	needs          []request.Request
	stories        []story.Story
	schoolRequests []request.Request
	donations      map[string]donation.Donation
	nextID         int
}

func newStubBackend() *stubBackend {
	return &stubBackend{donations: map[string]donation.Donation{}, nextID: 1}
}

func (b *stubBackend) addNeed(n request.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.needs = append(b.needs, n)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (b *stubBackend) handler() http.Handler {
	mux := http.NewServeMux()

	login := func(token, fullName, email string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			var creds map[string]string
			json.NewDecoder(r.Body).Decode(&creds)
			if creds["email"] != email || creds["password"] != testPassword {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{
				"token": token, "fullName": fullName, "email": email,
			})
		}
	}
	mux.HandleFunc("/api/donors/login", login(donorToken, donorFullName, donorEmail))
	mux.HandleFunc("/api/schools/login", login(schoolToken, schoolFullName, schoolEmail))

	mux.HandleFunc("/api/requests", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if r.Method == http.MethodGet {
			writeJSON(w, http.StatusOK, b.needs)
			return
		}
		var input apiclient.NewRequestInput
		json.NewDecoder(r.Body).Decode(&input)
		req := request.Request{
			ID:         fmt.Sprintf("req-%d", b.nextID),
			SchoolID:   "sch-1",
			SchoolName: schoolFullName,
			District:   "Galle",
			Items:      input.Items,
			Notes:      input.Notes,
			Status:     request.StatusActive,
			CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		}
		b.nextID++
		b.needs = append(b.needs, req)
		b.schoolRequests = append(b.schoolRequests, req)
		writeJSON(w, http.StatusCreated, map[string]any{
			"request": req, "message": "Request published.",
		})
	})
	mux.HandleFunc("/api/requests/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/requests/")
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, n := range b.needs {
			if n.ID == id {
				writeJSON(w, http.StatusOK, n)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Request not found"})
	})

	mux.HandleFunc("/api/stories", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, b.stories)
	})

	mux.HandleFunc("/api/schools/me/requests", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, b.schoolRequests)
	})
	mux.HandleFunc("/api/schools/me/donations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"donations": []donation.Donation{}, "totalPages": 0, "totalDonations": 0,
		})
	})

	mux.HandleFunc("/api/donations", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+donorToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
			return
		}
		var input apiclient.NewDonationInput
		json.NewDecoder(r.Body).Decode(&input)
		b.mu.Lock()
		defer b.mu.Unlock()
		d := donation.Donation{
			ID:             fmt.Sprintf("don-%d", b.nextID),
			RequestID:      input.RequestID,
			DonorName:      donorFullName,
			SchoolName:     schoolFullName,
			Items:          input.Items,
			DeliveryMethod: input.DeliveryMethod,
			Status:         donation.StatusPlanned,
			CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		}
		b.nextID++
		b.donations[d.ID] = d
		writeJSON(w, http.StatusCreated, map[string]any{
			"donation": d, "message": "Thank you! Your donation has been recorded.",
		})
	})
	mux.HandleFunc("/api/donations/mine", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		rows := make([]donation.Donation, 0, len(b.donations))
		for _, d := range b.donations {
			rows = append(rows, d)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"donations": rows, "totalPages": 1, "totalDonations": len(rows),
		})
	})
	mux.HandleFunc("/api/donations/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/donations/")
		b.mu.Lock()
		defer b.mu.Unlock()
		if d, ok := b.donations[id]; ok {
			writeJSON(w, http.StatusOK, d)
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Donation not found"})
	})

	return mux
}

// testApp holds the running frontend, its stub backend, and Playwright
// handles.
type testApp struct {
	BaseURL string
	DB      *sql.DB
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
	Stores  *web.Stores
	Backend *stubBackend
}

// newTestApp wires the full app against a temp SQLite DB and a stub
// backend, and starts an HTTP server on a free port.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("failed to init test DB: %v", err)
	}

	backend := newStubBackend()
	backendSrv := httptest.NewServer(backend.handler())

	stores := &web.Stores{
		SessionStore: sessionStore.NewSQLiteStore(db),
		DraftStore:   draftStore.NewSQLiteStore(db, filepath.Join(tmpDir, "uploads")),
		ContactStore: contactStore.NewSQLiteStore(db),
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	// Change to project root so relative template/static paths work
	projectRoot := findProjectRoot(t)
	origDir, _ := os.Getwd()
	if err := os.Chdir(projectRoot); err != nil {
		t.Fatalf("failed to chdir to project root: %v", err)
	}
	t.Cleanup(func() { os.Chdir(origDir) })

	// Add test port to CSRF trusted origins before creating mux
	middleware.ExtraTrustedOrigins = append(middleware.ExtraTrustedOrigins,
		fmt.Sprintf("127.0.0.1:%d", port),
		fmt.Sprintf("localhost:%d", port),
	)

	web.RateLimitPerSecond = 1000
	mux := web.NewMux(web.MuxConfig{
		StaticDir:     "static",
		CSRFKey:       []byte(strings.Repeat("k", 32)),
		DefaultLocale: "en",
		Client:        apiclient.New(backendSrv.URL, 5*time.Second, zerolog.Nop()),
		Log:           zerolog.Nop(),
	}, stores, perf.NewCollector(perf.DefaultRingSize))
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/donor-login")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	// Start Playwright
	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL: baseURL,
		DB:      db,
		Server:  srv,
		PW:      pw,
		Browser: browser,
		Stores:  stores,
		Backend: backend,
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		backendSrv.Close()
		db.Close()
	})

	return app
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login fills one role's login form and waits for the post-login redirect.
func (a *testApp) login(t *testing.T, page playwright.Page, loginPath, email, home string) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + loginPath); err != nil {
		t.Fatalf("failed to navigate to %s: %v", loginPath, err)
	}
	if err := page.Locator("input[name=email]").Fill(email); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if err := page.Locator("input[name=password]").Fill(testPassword); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	if err := page.WaitForURL(a.BaseURL+home, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to %s: %v", home, err)
	}
}

func (a *testApp) loginDonor(t *testing.T, page playwright.Page) {
	a.login(t, page, "/donor-login", donorEmail, "/")
}

func (a *testApp) loginSchool(t *testing.T, page playwright.Page) {
	a.login(t, page, "/school-login", schoolEmail, "/school/dashboard")
}

// findProjectRoot walks up from the working directory to find the project root (contains go.mod).
func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find project root (go.mod) from working directory")
		}
		dir = parent
	}
}

// seedNeed adds one open request with a single category to the stub.
func (a *testApp) seedNeed(id, schoolName, district, category string, quantity, received int) {
	a.Backend.addNeed(request.Request{
		ID:         id,
		SchoolID:   "sch-" + id,
		SchoolName: schoolName,
		District:   district,
		Items:      []request.Item{{Category: category, Quantity: quantity, Received: received}},
		Status:     request.StatusActive,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	})
}
