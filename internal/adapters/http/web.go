package web

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"edusahasra/internal/adapters/email"
	"edusahasra/internal/adapters/http/middleware"
	"edusahasra/internal/adapters/http/perf"
	contactStore "edusahasra/internal/adapters/storage/contact"
	draftStore "edusahasra/internal/adapters/storage/draft"
	sessionStore "edusahasra/internal/adapters/storage/sessionrecord"
	"edusahasra/internal/apiclient"
)

// Stores holds all storage dependencies.
type Stores struct {
	SessionStore sessionStore.Store
	DraftStore   draftStore.Store
	ContactStore contactStore.Store
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global backend client (set by NewMux)
var backend *apiclient.Client

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global application logger (set by NewMux)
var appLog zerolog.Logger

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailFromAddress string
var contactInbox string

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from, inbox string) {
	emailSender = sender
	emailFromAddress = from
	contactInbox = inbox
}

// MuxConfig carries the wiring NewMux needs beyond the stores.
type MuxConfig struct {
	StaticDir     string
	CSRFKey       []byte
	DefaultLocale string
	Client        *apiclient.Client
	Log           zerolog.Logger
}

// NewMux wires HTTP handlers for the app.
func NewMux(cfg MuxConfig, s *Stores, collector *perf.Collector) http.Handler {
	stores = s
	backend = cfg.Client
	perfCollector = collector
	appLog = cfg.Log
	middleware.SecureCookies = os.Getenv("EDUSAHASRA_ENV") == "production"
	if collector != nil && backend != nil {
		backend.SetTimer(collector)
	}

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
	registerRoutes(mux)

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> RateLimit -> BrowserSession -> Locale -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(cfg.CSRFKey),
		middleware.Locale(cfg.DefaultLocale),
		middleware.BrowserSession,
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
