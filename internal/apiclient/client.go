package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"edusahasra/internal/domain/session"
)

// SessionProvider is the injected session-record service consulted for
// bearer tokens. Implementations must treat a stored record that fails to
// parse as absent, deleting it as a side effect of the read.
type SessionProvider interface {
	Get(ctx context.Context, role string) (session.Record, bool)
	Set(ctx context.Context, rec session.Record) error
	Clear(ctx context.Context, role string) error
}

// Timer receives per-call timings for upstream requests.
type Timer interface {
	RecordBackend(path string, status int, d time.Duration)
}

// Client talks to the Edusahasra REST backend. It is safe for concurrent
// use; per-browser state comes in through Bind.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
	timer   Timer
}

// SetTimer attaches a timing sink for backend calls. Call before serving.
func (c *Client) SetTimer(t Timer) {
	c.timer = t
}

// New creates a Client for the backend at baseURL. Every call is bounded by
// timeout — a hung backend surfaces as an error, never a forever-pending
// page.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Bound is a Client scoped to one browser's session records and the page
// path the request is made for. The page path only matters on 401, where it
// selects which role's session the failure invalidates.
type Bound struct {
	c        *Client
	sessions SessionProvider
	pagePath string
}

// Bind scopes the client to a browser session and current page path.
func (c *Client) Bind(sessions SessionProvider, pagePath string) *Bound {
	return &Bound{c: c, sessions: sessions, pagePath: pagePath}
}

// resolveToken walks the stored records in the fixed admin → school → donor
// priority and returns the first non-empty token. Malformed records are
// already discarded inside the provider's Get.
func (b *Bound) resolveToken(ctx context.Context) string {
	for _, role := range session.TokenPriority {
		if rec, ok := b.sessions.Get(ctx, role); ok && rec.Token != "" {
			return rec.Token
		}
	}
	return ""
}

// getJSON issues a GET and decodes the response into out.
func (b *Bound) getJSON(ctx context.Context, apiPath string, query url.Values, out any) error {
	return b.do(ctx, http.MethodGet, apiPath, query, nil, "", out)
}

// sendJSON issues method with a JSON-encoded body and decodes into out.
func (b *Bound) sendJSON(ctx context.Context, method, apiPath string, body any, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return &APIError{Err: fmt.Errorf("encode request: %w", err)}
	}
	return b.do(ctx, method, apiPath, nil, bytes.NewReader(encoded), "application/json", out)
}

// sendMultipart posts fields and files as one multipart request. The
// content type comes from the multipart writer so the boundary is correct;
// it is never set by hand.
func (b *Bound) sendMultipart(ctx context.Context, method, apiPath string, fields map[string]string, files []UploadFile, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return &APIError{Err: fmt.Errorf("write field %s: %w", name, err)}
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Name)
		if err != nil {
			return &APIError{Err: fmt.Errorf("create file part %s: %w", f.Name, err)}
		}
		if _, err := part.Write(f.Data); err != nil {
			return &APIError{Err: fmt.Errorf("write file %s: %w", f.Name, err)}
		}
	}
	if err := w.Close(); err != nil {
		return &APIError{Err: fmt.Errorf("close multipart body: %w", err)}
	}
	return b.do(ctx, method, apiPath, nil, &buf, w.FormDataContentType(), out)
}

// UploadFile is one file attached to a multipart submission.
type UploadFile struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// do performs one backend request. Exactly one Authorization header is
// attached when a token resolves; none otherwise. Errors are always
// *APIError; 401 carries the role classified from the bound page path.
// No retries are attempted.
func (b *Bound) do(ctx context.Context, method, apiPath string, query url.Values, body io.Reader, contentType string, out any) error {
	u := b.c.baseURL + apiPath
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return &APIError{Err: fmt.Errorf("build request: %w", err)}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := b.resolveToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if locale := LocaleFromContext(ctx); locale != "" {
		req.Header.Set("Accept-Language", locale)
	}

	start := time.Now()
	resp, err := b.c.http.Do(req)
	if err != nil {
		b.c.log.Error().Err(err).Str("method", method).Str("path", apiPath).Msg("backend_unreachable")
		return &APIError{Err: err}
	}
	defer resp.Body.Close()

	b.c.log.Debug().
		Str("method", method).
		Str("path", apiPath).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend_call")

	if b.c.timer != nil {
		b.c.timer.RecordBackend(method+" "+apiPath, resp.StatusCode, time.Since(start))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Status:  resp.StatusCode,
			Message: backendMessage(raw),
		}
		if resp.StatusCode == http.StatusUnauthorized {
			apiErr.Role = session.ClassifyPath(b.pagePath)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if rawOut, ok := out.(*json.RawMessage); ok {
		*rawOut = json.RawMessage(raw)
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// backendMessage extracts the backend's message field, when the error body
// carries one, for verbatim display in banners.
func backendMessage(raw []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

type localeKey struct{}

// WithLocale returns a context carrying the viewer's locale; it is sent as
// Accept-Language on backend calls.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey{}, locale)
}

// LocaleFromContext returns the locale set by WithLocale, or "".
func LocaleFromContext(ctx context.Context) string {
	locale, _ := ctx.Value(localeKey{}).(string)
	return locale
}
