package web

import (
	"net/http"
	"strings"

	"edusahasra/internal/adapters/http/middleware"
	"edusahasra/internal/apiclient"
	"edusahasra/internal/application/listutil"
	"edusahasra/internal/application/orchestrators"
	"edusahasra/internal/domain/request"
	"edusahasra/internal/domain/school"
)

// handleHome handles GET /. Shows featured open needs and recent stories.
func handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	client := bound(r)

	needs, err := client.ListNeeds(r.Context(), 6)
	if err != nil {
		failPage(w, r, err)
		return
	}
	stories, err := client.ListStories(r.Context(), 3)
	if err != nil {
		failPage(w, r, err)
		return
	}

	renderTemplate(w, r, "home.html", map[string]any{
		"Title":   "Edusahasra",
		"Needs":   needs,
		"Stories": stories,
	})
}

// needSortOrders maps sort keys to comparison functions over requests.
var needSortOrders = map[string]func(a, b request.Request) bool{
	"newest":  func(a, b request.Request) bool { return a.CreatedAt > b.CreatedAt },
	"lowest":  func(a, b request.Request) bool { return a.ProgressPercent() < b.ProgressPercent() },
	"highest": func(a, b request.Request) bool { return a.ProgressPercent() > b.ProgressPercent() },
}

// handleNeeds handles GET /needs. The backend returns the whole open-needs
// snapshot; search, category filter, sort, and paging all happen here, so
// typing in the search box never refetches.
func handleNeeds(w http.ResponseWriter, r *http.Request) {
	client := bound(r)

	snapshot, err := client.ListNeeds(r.Context(), 0)
	if err != nil {
		failPage(w, r, err)
		return
	}

	lp := listutil.ParseListParams(r.URL.Query(),
		[]string{"newest", "lowest", "highest"},
		[]string{"category", "district"},
	)

	var matches []func(request.Request) bool
	if cat := lp.Filters["category"]; cat != "" {
		matches = append(matches, func(n request.Request) bool { return n.HasCategory(cat) })
	}
	if district := lp.Filters["district"]; district != "" {
		matches = append(matches, func(n request.Request) bool { return n.District == district })
	}

	rows, pageInfo := listutil.ApplyLocal(snapshot, listutil.LocalQuery[request.Request]{
		Search:       lp.Search,
		SearchFields: func(n request.Request) []string { return []string{n.SchoolName, n.District} },
		Matches:      matches,
		Less:         needSortOrders[lp.SortBy],
		Page:         lp.Page,
		PerPage:      lp.PerPage,
	})

	renderTemplate(w, r, "needs_list.html", map[string]any{
		"Title":          "Schools in Need",
		"Needs":          rows,
		"PageInfo":       pageInfo,
		"Params":         lp,
		"Categories":     request.Categories,
		"Districts":      school.Districts,
		"PerPageOptions": listutil.PerPageOptions,
	})
}

// handleNeedDetail handles GET /needs/{id}. Shows one request with a
// donation form for logged-in donors.
func handleNeedDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/needs/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	client := bound(r)

	need, err := client.GetNeed(r.Context(), id)
	if err != nil {
		failPage(w, r, err)
		return
	}

	renderTemplate(w, r, "need_detail.html", map[string]any{
		"Title": need.SchoolName,
		"Need":  need,
	})
}

// handleSchools handles GET /schools. Unlike /needs, the backend does the
// filtering here: every filter or page change is a fresh backend query.
func handleSchools(w http.ResponseWriter, r *http.Request) {
	client := bound(r)

	lp := listutil.ParseListParams(r.URL.Query(),
		[]string{"newest", "name"},
		[]string{"district"},
	)

	page, err := client.ListSchools(r.Context(), apiclient.SchoolListQuery{
		Page:     lp.Page,
		Limit:    lp.PerPage,
		Status:   school.StatusApproved,
		Search:   lp.Search,
		SortBy:   lp.SortBy,
		District: lp.Filters["district"],
	})
	if err != nil {
		failPage(w, r, err)
		return
	}

	pageInfo := listutil.ServerPageInfo(lp.Page, lp.PerPage, page.TotalPages, page.TotalSchools)
	renderTemplate(w, r, "schools_list.html", map[string]any{
		"Title":          "Registered Schools",
		"Schools":        page.Schools,
		"PageInfo":       pageInfo,
		"Params":         lp,
		"Districts":      school.Districts,
		"PerPageOptions": listutil.PerPageOptions,
	})
}

// handleSchoolDetail handles GET /schools/{id}. A public profile page for
// one approved school.
func handleSchoolDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/schools/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	client := bound(r)

	s, err := client.GetSchool(r.Context(), id)
	if err != nil {
		failPage(w, r, err)
		return
	}

	renderTemplate(w, r, "school_detail.html", map[string]any{
		"Title":  s.SchoolName,
		"School": s,
	})
}

// handleStories handles GET /stories.
func handleStories(w http.ResponseWriter, r *http.Request) {
	client := bound(r)

	stories, err := client.ListStories(r.Context(), 0)
	if err != nil {
		failPage(w, r, err)
		return
	}

	renderTemplate(w, r, "stories_list.html", map[string]any{
		"Title":   "Impact Stories",
		"Stories": stories,
	})
}

// handleStoryDetail handles GET /stories/{id}. The body is markdown,
// rendered through the safe renderer in the template.
func handleStoryDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/stories/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	client := bound(r)

	s, err := client.GetStory(r.Context(), id)
	if err != nil {
		failPage(w, r, err)
		return
	}

	renderTemplate(w, r, "story_detail.html", map[string]any{
		"Title": s.Title,
		"Story": s,
	})
}

// handleContact handles GET and POST /contact.
func handleContact(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "contact.html", map[string]any{
			"Title":  "Contact Us",
			"Fields": map[string]string{},
		})
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.ContactInput{
		Name:    strings.TrimSpace(r.FormValue("name")),
		Email:   strings.TrimSpace(r.FormValue("email")),
		Message: strings.TrimSpace(r.FormValue("message")),
	}

	errs, err := orchestrators.ExecuteContact(r.Context(), input, orchestrators.ContactDeps{
		Store:  stores.ContactStore,
		Sender: emailSender,
		Inbox:  contactInbox,
		From:   emailFromAddress,
		Log:    appLog,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	if errs != nil {
		renderTemplate(w, r, "contact.html", map[string]any{
			"Title":  "Contact Us",
			"Errors": errs,
			"Fields": map[string]string{
				"name":    input.Name,
				"email":   input.Email,
				"message": input.Message,
			},
		})
		return
	}

	setFlash(w, "success", "Thanks for reaching out. We'll get back to you soon.")
	http.Redirect(w, r, "/contact", http.StatusSeeOther)
}

// handleLanguage handles POST /language. Persists the viewer's language
// choice and returns to the page they came from.
func handleLanguage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	locale := r.FormValue("locale")
	switch locale {
	case "en", "si", "ta":
		middleware.SetLocaleCookie(w, locale)
	}

	returnTo := r.FormValue("return")
	if returnTo == "" || !strings.HasPrefix(returnTo, "/") || strings.HasPrefix(returnTo, "//") {
		returnTo = "/"
	}
	http.Redirect(w, r, returnTo, http.StatusSeeOther)
}
