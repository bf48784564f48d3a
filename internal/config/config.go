package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the server reads from the environment.
type Config struct {
	Env            string
	Addr           string
	BackendBaseURL string
	BackendTimeout time.Duration
	DBPath         string
	UploadDir      string
	CSRFKey        []byte
	ResendKey      string
	EmailFrom      string
	ContactInbox   string
	RatePerSecond  int
	DefaultLocale  string
}

// Load reads configuration from the environment, consulting .env files when
// present. Missing optional values fall back to development defaults; a
// missing CSRF key is fatal in production.
func Load() (Config, error) {
	_ = godotenv.Load(".env", ".env.local")

	c := Config{
		Env:            getenv("EDUSAHASRA_ENV", "development"),
		Addr:           getenv("EDUSAHASRA_ADDR", ":8080"),
		BackendBaseURL: getenv("EDUSAHASRA_BACKEND_URL", "http://localhost:5000"),
		DBPath:         getenv("EDUSAHASRA_DB", "edusahasra.db"),
		UploadDir:      getenv("EDUSAHASRA_UPLOAD_DIR", "uploads"),
		ResendKey:      os.Getenv("EDUSAHASRA_RESEND_KEY"),
		EmailFrom:      getenv("EDUSAHASRA_EMAIL_FROM", "Edusahasra <noreply@edusahasra.lk>"),
		ContactInbox:   getenv("EDUSAHASRA_CONTACT_INBOX", "hello@edusahasra.lk"),
		DefaultLocale:  getenv("EDUSAHASRA_DEFAULT_LOCALE", "en"),
	}

	timeoutSec, err := strconv.Atoi(getenv("EDUSAHASRA_BACKEND_TIMEOUT_SECONDS", "15"))
	if err != nil || timeoutSec <= 0 {
		return Config{}, fmt.Errorf("invalid EDUSAHASRA_BACKEND_TIMEOUT_SECONDS")
	}
	c.BackendTimeout = time.Duration(timeoutSec) * time.Second

	rate, err := strconv.Atoi(getenv("EDUSAHASRA_RATE_PER_SECOND", "10"))
	if err != nil || rate <= 0 {
		return Config{}, fmt.Errorf("invalid EDUSAHASRA_RATE_PER_SECOND")
	}
	c.RatePerSecond = rate

	key, err := loadCSRFKey(c.Env)
	if err != nil {
		return Config{}, err
	}
	c.CSRFKey = key

	return c, nil
}

// loadCSRFKey reads the CSRF secret from EDUSAHASRA_CSRF_KEY (hex-encoded,
// 32 bytes). In production the key MUST be set. In development a random key
// is generated per startup.
func loadCSRFKey(env string) ([]byte, error) {
	if keyHex := os.Getenv("EDUSAHASRA_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, fmt.Errorf("EDUSAHASRA_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key, nil
	}
	if env == "production" {
		return nil, fmt.Errorf("EDUSAHASRA_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate CSRF key: %w", err)
	}
	return key, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
