package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	emailPkg "edusahasra/internal/adapters/email"
	web "edusahasra/internal/adapters/http"
	"edusahasra/internal/adapters/http/perf"
	"edusahasra/internal/adapters/storage"
	contactStore "edusahasra/internal/adapters/storage/contact"
	draftStore "edusahasra/internal/adapters/storage/draft"
	sessionStore "edusahasra/internal/adapters/storage/sessionrecord"
	"edusahasra/internal/apiclient"
	"edusahasra/internal/config"
	"edusahasra/internal/logging"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config_load_failed")
	}

	logger := logging.New(cfg.Env)
	log.Logger = logger

	// Local state only: session records, wizard drafts, staged uploads and
	// contact copies. Donation and school data lives in the backend.
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("db_open_failed")
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("db_unreachable")
	}
	if err := storage.InitDB(db); err != nil {
		logger.Fatal().Err(err).Msg("db_init_failed")
	}

	collector := perf.NewCollector(perf.DefaultRingSize)

	client := apiclient.New(cfg.BackendBaseURL, cfg.BackendTimeout, logger)

	stores := &web.Stores{
		SessionStore: sessionStore.NewSQLiteStore(db),
		DraftStore:   draftStore.NewSQLiteStore(db, cfg.UploadDir),
		ContactStore: contactStore.NewSQLiteStore(db),
	}

	if cfg.ResendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom, logger), cfg.EmailFrom, cfg.ContactInbox)
		logger.Info().Msg("email_sender_resend")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(logger), cfg.EmailFrom, cfg.ContactInbox)
		if cfg.Env == "production" {
			logger.Warn().Msg("email_delivery_disabled")
		}
	}

	web.RateLimitPerSecond = cfg.RatePerSecond
	mux := web.NewMux(web.MuxConfig{
		StaticDir:     "static",
		CSRFKey:       cfg.CSRFKey,
		DefaultLocale: cfg.DefaultLocale,
		Client:        client,
		Log:           logger,
	}, stores, collector)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().
			Str("version", version).
			Str("addr", cfg.Addr).
			Str("env", cfg.Env).
			Str("backend", cfg.BackendBaseURL).
			Msg("server_starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server_failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown_failed")
	}
	logger.Info().Msg("server_stopped")
}
