package web

import (
	"net/http"
	"strings"

	"edusahasra/internal/adapters/http/middleware"
	"edusahasra/internal/domain/session"
)

// registerRoutes wires every page and action. Public pages are open; the
// donor, school and admin areas sit behind RequireRole guards. Paths with
// an id segment share a subtree handler that dispatches on the suffix.
func registerRoutes(mux *http.ServeMux) {
	donorOnly := middleware.RequireRole(stores.SessionStore, session.RoleDonor)
	schoolOnly := middleware.RequireRole(stores.SessionStore, session.RoleSchool)
	adminOnly := middleware.RequireRole(stores.SessionStore, session.RoleAdmin)

	// Public pages
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		handleHome(w, r)
	})
	mux.HandleFunc("/needs", handleNeeds)
	mux.Handle("/needs/", dispatchSuffix(map[string]http.Handler{
		"/donate": donorOnly(http.HandlerFunc(handleDonate)),
		"":        http.HandlerFunc(handleNeedDetail),
	}))
	mux.HandleFunc("/schools", handleSchools)
	mux.HandleFunc("/schools/", handleSchoolDetail)
	mux.HandleFunc("/stories", handleStories)
	mux.HandleFunc("/stories/", handleStoryDetail)
	mux.HandleFunc("/contact", handleContact)
	mux.HandleFunc("/language", handleLanguage)

	// Auth
	mux.HandleFunc("/donor-login", handleLogin(session.RoleDonor))
	mux.HandleFunc("/school-login", handleLogin(session.RoleSchool))
	mux.HandleFunc("/admin-login", handleLogin(session.RoleAdmin))
	mux.HandleFunc("/donor-register", handleDonorRegister)
	mux.HandleFunc("/school-register", handleSchoolRegister)
	mux.HandleFunc("/logout", handleLogout)

	// Donor area
	mux.Handle("/my-donations", donorOnly(http.HandlerFunc(handleMyDonations)))
	mux.Handle("/donations/", donorOnly(dispatchSuffix(map[string]http.Handler{
		"/status": http.HandlerFunc(handleDonationStatus),
		"":        http.HandlerFunc(handleDonationDetail),
	})))

	// School area
	mux.Handle("/school/dashboard", schoolOnly(http.HandlerFunc(handleSchoolDashboard)))
	mux.Handle("/school/requests/new", schoolOnly(http.HandlerFunc(handleRequestNew)))
	mux.Handle("/school/requests/", schoolOnly(dispatchSuffix(map[string]http.Handler{
		"/cancel": http.HandlerFunc(handleRequestCancel),
	})))
	mux.Handle("/school/donations", schoolOnly(http.HandlerFunc(handleSchoolDonations)))
	mux.Handle("/school/donations/", schoolOnly(dispatchSuffix(map[string]http.Handler{
		"/confirm": http.HandlerFunc(handleConfirmReceipt),
	})))
	mux.Handle("/school/stories/new", schoolOnly(http.HandlerFunc(handleStoryNew)))

	// Admin area
	mux.Handle("/admin/dashboard", adminOnly(http.HandlerFunc(handleAdminDashboard)))
	mux.Handle("/admin/schools", adminOnly(http.HandlerFunc(handleAdminSchools)))
	mux.Handle("/admin/schools/", adminOnly(dispatchSuffix(map[string]http.Handler{
		"/verify": http.HandlerFunc(handleAdminVerify),
		"":        http.HandlerFunc(handleAdminSchoolReview),
	})))
	mux.Handle("/admin/stories", adminOnly(http.HandlerFunc(handleAdminStories)))
	mux.Handle("/admin/stories/", adminOnly(dispatchSuffix(map[string]http.Handler{
		"/moderate": http.HandlerFunc(handleAdminModerate),
	})))
	mux.Handle("/admin/donations", adminOnly(http.HandlerFunc(handleAdminDonations)))
	mux.Handle("/admin/perf", adminOnly(http.HandlerFunc(handleAdminPerf)))
}

// dispatchSuffix routes a subtree by known action suffixes. The "" entry,
// when present, handles plain /{prefix}/{id} paths; anything else is 404.
func dispatchSuffix(routes map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for suffix, h := range routes {
			if suffix != "" && strings.HasSuffix(r.URL.Path, suffix) {
				h.ServeHTTP(w, r)
				return
			}
		}
		if h, ok := routes[""]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}
