package web

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"edusahasra/internal/adapters/http/middleware"
	"edusahasra/internal/adapters/storage/draft"
	"edusahasra/internal/apiclient"
	"edusahasra/internal/application/forms"
	"edusahasra/internal/application/listutil"
	"edusahasra/internal/application/orchestrators"
	"edusahasra/internal/domain/donation"
	"edusahasra/internal/domain/request"
	"edusahasra/internal/domain/upload"
)

// handleSchoolDashboard handles GET /school/dashboard. One page showing
// the school's open requests and incoming donations.
func handleSchoolDashboard(w http.ResponseWriter, r *http.Request) {
	client := bound(r)

	requests, err := client.ListSchoolRequests(r.Context(), "")
	if err != nil {
		failPage(w, r, err)
		return
	}
	donations, err := client.ListSchoolDonations(r.Context(), apiclient.DonationListQuery{Page: 1, Limit: 5})
	if err != nil {
		failPage(w, r, err)
		return
	}

	open := 0
	for i := range requests {
		if requests[i].IsOpen() {
			open++
		}
	}

	renderTemplate(w, r, "school_dashboard.html", map[string]any{
		"Title":        "School Dashboard",
		"Requests":     requests,
		"OpenRequests": open,
		"Donations":    donations.Donations,
	})
}

// handleRequestNew drives the three-step needs-request wizard.
func handleRequestNew(w http.ResponseWriter, r *http.Request) {
	wiz := forms.DonationRequest()
	browserID := middleware.BrowserID(r.Context())
	ctx := r.Context()

	d, ok, err := stores.DraftStore.GetDraft(ctx, browserID, draft.KindDonationRequest)
	if err != nil {
		internalError(w, err)
		return
	}
	if !ok {
		d = draft.Draft{BrowserID: browserID, Kind: draft.KindDonationRequest, Step: 1, Fields: map[string]string{}}
	}
	if d.Fields == nil {
		d.Fields = map[string]string{}
	}

	if r.Method == http.MethodGet {
		renderRequestStep(w, r, wiz, d, nil)
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

	step, stepNum := wiz.StepAt(d.Step)
	submitted := map[string]string{}
	for key := range r.Form {
		submitted[key] = strings.TrimSpace(r.FormValue(key))
	}

	switch r.FormValue("action") {
	case "back":
		d.Fields = wiz.Merge(d.Fields, step, submitted)
		d.Step = wiz.Back(stepNum)
		if err := stores.DraftStore.SaveDraft(ctx, d); err != nil {
			internalError(w, err)
			return
		}
		http.Redirect(w, r, "/school/requests/new", http.StatusSeeOther)

	case "next":
		d.Fields = wiz.Merge(d.Fields, step, submitted)
		next, errs := wiz.Advance(d.Fields, stepNum)
		d.Step = next
		if err := stores.DraftStore.SaveDraft(ctx, d); err != nil {
			internalError(w, err)
			return
		}
		if errs != nil {
			renderRequestStep(w, r, wiz, d, errs)
			return
		}
		http.Redirect(w, r, "/school/requests/new", http.StatusSeeOther)

	case "submit":
		created, msg, errs, err := orchestrators.ExecuteCreateRequest(ctx,
			orchestrators.CreateRequestInput{BrowserID: browserID},
			orchestrators.CreateRequestDeps{API: bound(r), Drafts: stores.DraftStore, Log: appLog})
		if errors.Is(err, orchestrators.ErrNoDraft) {
			http.Redirect(w, r, "/school/requests/new", http.StatusSeeOther)
			return
		}
		if err != nil {
			failAction(w, r, err, "/school/requests/new")
			return
		}
		if errs != nil {
			renderRequestStep(w, r, wiz, d, errs)
			return
		}
		if msg == "" {
			msg = "Your request is live. Donors can now see it."
		}
		_ = created
		setFlash(w, "success", msg)
		http.Redirect(w, r, "/school/dashboard", http.StatusSeeOther)

	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

func renderRequestStep(w http.ResponseWriter, r *http.Request, wiz *forms.Wizard, d draft.Draft, errs forms.Errors) {
	step, stepNum := wiz.StepAt(d.Step)
	renderTemplate(w, r, "request_new.html", map[string]any{
		"Title":      "Request Donations",
		"Step":       step,
		"StepNum":    stepNum,
		"StepCount":  wiz.StepCount(),
		"Fields":     d.Fields,
		"Quantities": forms.RequestQuantities(d.Fields),
		"Errors":     errs,
		"Categories": request.Categories,
	})
}

// handleRequestCancel handles POST /school/requests/{id}/cancel.
func handleRequestCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/school/requests/"), "/cancel")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	msg, err := orchestrators.ExecuteCancelRequest(r.Context(), id,
		orchestrators.CancelRequestDeps{API: bound(r), Log: appLog})
	if err != nil {
		failAction(w, r, err, "/school/dashboard")
		return
	}
	if msg == "" {
		msg = "Request cancelled."
	}
	setFlash(w, "success", msg)
	http.Redirect(w, r, "/school/dashboard", http.StatusSeeOther)
}

// handleSchoolDonations handles GET /school/donations: everything pledged
// to this school, with receipt confirmation for delivered entries.
func handleSchoolDonations(w http.ResponseWriter, r *http.Request) {
	client := bound(r)

	lp := listutil.ParseListParams(r.URL.Query(), nil, []string{"status"})

	page, err := client.ListSchoolDonations(r.Context(), apiclient.DonationListQuery{
		Page:   lp.Page,
		Limit:  lp.PerPage,
		Status: lp.Filters["status"],
	})
	if err != nil {
		failPage(w, r, err)
		return
	}

	pageInfo := listutil.ServerPageInfo(lp.Page, lp.PerPage, page.TotalPages, page.TotalDonations)
	renderTemplate(w, r, "school_donations.html", map[string]any{
		"Title":          "Incoming Donations",
		"Donations":      page.Donations,
		"PageInfo":       pageInfo,
		"Params":         lp,
		"Statuses":       donation.Statuses,
		"PerPageOptions": listutil.PerPageOptions,
	})
}

// handleConfirmReceipt handles POST /school/donations/{id}/confirm.
func handleConfirmReceipt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/school/donations/"), "/confirm")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	_, msg, err := orchestrators.ExecuteConfirmReceipt(r.Context(), id,
		orchestrators.DonateDeps{API: bound(r), Log: appLog})
	if errors.Is(err, orchestrators.ErrBadTransition) {
		setFlash(w, "error", "Only delivered donations can be confirmed.")
		http.Redirect(w, r, "/school/donations", http.StatusSeeOther)
		return
	}
	if err != nil {
		failAction(w, r, err, "/school/donations")
		return
	}
	if msg == "" {
		msg = "Receipt confirmed. Thank you!"
	}
	setFlash(w, "success", msg)
	http.Redirect(w, r, "/school/donations", http.StatusSeeOther)
}

// handleStoryNew handles GET and POST /school/stories/new.
func handleStoryNew(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "story_new.html", map[string]any{
			"Title":  "Share Your Story",
			"Fields": map[string]string{},
		})
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxWizardUpload); err != nil {
		setFlash(w, "error", "Images must be under 5 MB.")
		http.Redirect(w, r, "/school/stories/new", http.StatusSeeOther)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	body := strings.TrimSpace(r.FormValue("body"))

	var images []apiclient.UploadFile
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["images"] {
			file, err := header.Open()
			if err != nil {
				internalError(w, err)
				return
			}
			data, err := io.ReadAll(io.LimitReader(file, upload.MaxFileSize))
			file.Close()
			if err != nil {
				internalError(w, err)
				return
			}
			images = append(images, apiclient.UploadFile{
				Field:       "images",
				Name:        header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}

	msg, err := orchestrators.ExecuteSubmitStory(r.Context(), orchestrators.SubmitStoryInput{
		Title:  title,
		Body:   body,
		Images: images,
	}, orchestrators.SubmitStoryDeps{API: bound(r), Log: appLog})

	switch {
	case errors.Is(err, orchestrators.ErrStoryIncomplete):
		renderTemplate(w, r, "story_new.html", map[string]any{
			"Title":        "Share Your Story",
			"FlashKind":    "error",
			"FlashMessage": err.Error(),
			"Fields":       map[string]string{"title": title, "body": body},
		})
		return
	case errors.Is(err, upload.ErrTooLarge), errors.Is(err, upload.ErrBadType):
		setFlash(w, "error", uploadErrorMessage(err))
		http.Redirect(w, r, "/school/stories/new", http.StatusSeeOther)
		return
	case err != nil:
		failAction(w, r, err, "/school/stories/new")
		return
	}

	if msg == "" {
		msg = "Story submitted. It will appear once approved."
	}
	setFlash(w, "success", msg)
	http.Redirect(w, r, "/school/dashboard", http.StatusSeeOther)
}
