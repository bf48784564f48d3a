package web

import (
	"net/http"

	"edusahasra/internal/adapters/http/middleware"
	"edusahasra/internal/apiclient"
	"edusahasra/internal/domain/session"
)

// handleExpiredSession clears the invalidated role's session record and
// redirects to that role's login page. This is the only place a backend
// 401 turns into state changes; the client itself is side-effect-free.
// POST: exactly one role's record is cleared
func handleExpiredSession(w http.ResponseWriter, r *http.Request, apiErr *apiclient.APIError) {
	role := apiErr.Role
	if !session.IsValidRole(role) {
		role = session.ClassifyPath(r.URL.Path)
	}
	browserID := middleware.BrowserID(r.Context())
	if browserID != "" {
		if err := stores.SessionStore.Clear(r.Context(), browserID, role); err != nil {
			appLog.Error().Err(err).Str("role", role).Msg("session_clear_failed")
		}
	}
	appLog.Info().Str("role", role).Str("path", r.URL.Path).Msg("session_expired")
	setFlash(w, "error", "Your session has expired. Please log in again.")
	http.Redirect(w, r, session.LoginRoute(role), http.StatusSeeOther)
}

// failPage handles a backend error on a GET page: 401 logs the classified
// role out, anything else renders the error page with the backend's
// message verbatim when one exists.
func failPage(w http.ResponseWriter, r *http.Request, err error) {
	if apiErr, ok := apiclient.AsAPIError(err); ok {
		if apiErr.Unauthorized() {
			handleExpiredSession(w, r, apiErr)
			return
		}
		msg := apiErr.Message
		if msg == "" {
			msg = "Something went wrong talking to the server. Please try again."
		}
		appLog.Error().Err(err).Str("path", r.URL.Path).Msg("backend_error")
		renderTemplate(w, r, "error.html", map[string]any{
			"Title":   "Something went wrong",
			"Message": msg,
		})
		return
	}
	internalError(w, err)
}

// failAction handles a backend error on a POST action: 401 logs the
// classified role out, anything else flashes the backend's message and
// sends the browser back to returnPath.
func failAction(w http.ResponseWriter, r *http.Request, err error, returnPath string) {
	if apiErr, ok := apiclient.AsAPIError(err); ok {
		if apiErr.Unauthorized() {
			handleExpiredSession(w, r, apiErr)
			return
		}
		msg := apiErr.Message
		if msg == "" {
			msg = "Something went wrong talking to the server. Please try again."
		}
		appLog.Error().Err(err).Str("path", r.URL.Path).Msg("backend_error")
		setFlash(w, "error", msg)
		http.Redirect(w, r, returnPath, http.StatusSeeOther)
		return
	}
	internalError(w, err)
}
