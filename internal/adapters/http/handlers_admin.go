package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"edusahasra/internal/apiclient"
	"edusahasra/internal/application/listutil"
	"edusahasra/internal/application/orchestrators"
	"edusahasra/internal/domain/donation"
	"edusahasra/internal/domain/school"
	"edusahasra/internal/domain/story"
)

// handleAdminDashboard handles GET /admin/dashboard.
func handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := bound(r).GetAdminStats(r.Context())
	if err != nil {
		failPage(w, r, err)
		return
	}
	renderTemplate(w, r, "admin_dashboard.html", map[string]any{
		"Title": "Admin Dashboard",
		"Stats": stats,
	})
}

// handleAdminSchools handles GET /admin/schools, the verification queue.
// Defaults to pending schools so new registrations surface first.
func handleAdminSchools(w http.ResponseWriter, r *http.Request) {
	lp := listutil.ParseListParams(r.URL.Query(), nil, []string{"status"})
	status := lp.Filters["status"]
	if status == "" && !r.URL.Query().Has("status") {
		status = school.StatusPending
	}

	page, err := bound(r).ListVerificationQueue(r.Context(), status, lp.Page, lp.PerPage)
	if err != nil {
		failPage(w, r, err)
		return
	}

	pageInfo := listutil.ServerPageInfo(lp.Page, lp.PerPage, page.TotalPages, page.TotalSchools)
	renderTemplate(w, r, "admin_schools.html", map[string]any{
		"Title":    "School Verification",
		"Schools":  page.Schools,
		"PageInfo": pageInfo,
		"Params":   lp,
		"Status":   status,
		"Statuses": []string{school.StatusPending, school.StatusApproved, school.StatusRejected},
	})
}

// handleAdminSchoolReview handles GET /admin/schools/{id}: one school with
// its registration documents, plus the approve/reject form when pending.
func handleAdminSchoolReview(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/admin/schools/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	s, err := bound(r).GetSchoolForReview(r.Context(), id)
	if err != nil {
		failPage(w, r, err)
		return
	}

	renderTemplate(w, r, "admin_school_review.html", map[string]any{
		"Title":  s.SchoolName,
		"School": s,
	})
}

// handleAdminVerify handles POST /admin/schools/{id}/verify.
func handleAdminVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/admin/schools/"), "/verify")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	returnPath := "/admin/schools/" + id

	var status string
	switch r.FormValue("decision") {
	case "approve":
		status = school.StatusApproved
	case "reject":
		status = school.StatusRejected
	}

	_, msg, err := orchestrators.ExecuteVerifySchool(r.Context(), orchestrators.VerifySchoolInput{
		SchoolID: id,
		Status:   status,
		Reason:   r.FormValue("reason"),
	}, orchestrators.VerifySchoolDeps{API: bound(r), Log: appLog})

	switch {
	case errors.Is(err, orchestrators.ErrBadDecision),
		errors.Is(err, orchestrators.ErrReasonRequired),
		errors.Is(err, orchestrators.ErrNotPending):
		setFlash(w, "error", err.Error())
		http.Redirect(w, r, returnPath, http.StatusSeeOther)
		return
	case err != nil:
		failAction(w, r, err, returnPath)
		return
	}

	if msg == "" {
		msg = "Decision recorded."
	}
	setFlash(w, "success", msg)
	http.Redirect(w, r, "/admin/schools", http.StatusSeeOther)
}

// handleAdminStories handles GET /admin/stories, the moderation queue.
func handleAdminStories(w http.ResponseWriter, r *http.Request) {
	stories, err := bound(r).ListPendingStories(r.Context())
	if err != nil {
		failPage(w, r, err)
		return
	}
	renderTemplate(w, r, "admin_stories.html", map[string]any{
		"Title":   "Story Moderation",
		"Stories": stories,
	})
}

// handleAdminModerate handles POST /admin/stories/{id}/moderate.
func handleAdminModerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/admin/stories/"), "/moderate")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	var status string
	switch r.FormValue("decision") {
	case "approve":
		status = story.StatusApproved
	case "reject":
		status = story.StatusRejected
	}

	_, msg, err := orchestrators.ExecuteModerateStory(r.Context(), orchestrators.ModerateStoryInput{
		StoryID: id,
		Status:  status,
	}, orchestrators.SubmitStoryDeps{API: bound(r), Log: appLog})

	switch {
	case errors.Is(err, orchestrators.ErrBadDecision), errors.Is(err, orchestrators.ErrNotModeratable):
		setFlash(w, "error", err.Error())
		http.Redirect(w, r, "/admin/stories", http.StatusSeeOther)
		return
	case err != nil:
		failAction(w, r, err, "/admin/stories")
		return
	}

	if msg == "" {
		msg = "Story moderated."
	}
	setFlash(w, "success", msg)
	http.Redirect(w, r, "/admin/stories", http.StatusSeeOther)
}

// handleAdminDonations handles GET /admin/donations, every donation on the
// platform regardless of donor or school.
func handleAdminDonations(w http.ResponseWriter, r *http.Request) {
	lp := listutil.ParseListParams(r.URL.Query(), nil, []string{"status"})

	page, err := bound(r).ListAllDonations(r.Context(), apiclient.DonationListQuery{
		Page:   lp.Page,
		Limit:  lp.PerPage,
		Status: lp.Filters["status"],
	})
	if err != nil {
		failPage(w, r, err)
		return
	}

	pageInfo := listutil.ServerPageInfo(lp.Page, lp.PerPage, page.TotalPages, page.TotalDonations)
	renderTemplate(w, r, "admin_donations.html", map[string]any{
		"Title":          "All Donations",
		"Donations":      page.Donations,
		"PageInfo":       pageInfo,
		"Params":         lp,
		"Statuses":       donation.Statuses,
		"PerPageOptions": listutil.PerPageOptions,
	})
}

// handleAdminPerf handles GET /admin/perf, a plain snapshot of page render
// and backend call timings from the in-process collector.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	snap := perfCollector.Snapshot(timeNow().Add(-time.Hour), 10)
	renderTemplate(w, r, "admin_perf.html", map[string]any{
		"Title":    "Performance",
		"Snapshot": snap,
	})
}
