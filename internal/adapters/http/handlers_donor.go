package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"edusahasra/internal/apiclient"
	"edusahasra/internal/application/listutil"
	"edusahasra/internal/application/orchestrators"
	"edusahasra/internal/domain/donation"
	"edusahasra/internal/domain/request"
)

// handleDonate handles POST /needs/{id}/donate. Quantities come in as
// qty_<category> fields alongside the delivery method.
func handleDonate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/needs/"), "/donate")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	quantities := map[string]int{}
	for _, cat := range request.Categories {
		if v := r.FormValue("qty_" + cat); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				quantities[cat] = n
			}
		}
	}

	created, msg, err := orchestrators.ExecuteDonate(r.Context(), orchestrators.DonateInput{
		RequestID:      id,
		Quantities:     quantities,
		DeliveryMethod: r.FormValue("deliveryMethod"),
	}, orchestrators.DonateDeps{API: bound(r), Log: appLog})

	switch {
	case errors.Is(err, orchestrators.ErrRequestClosed),
		errors.Is(err, orchestrators.ErrNothingPledged),
		errors.Is(err, orchestrators.ErrOverPledge),
		errors.Is(err, orchestrators.ErrBadDelivery):
		setFlash(w, "error", err.Error())
		http.Redirect(w, r, "/needs/"+id, http.StatusSeeOther)
		return
	case err != nil:
		failAction(w, r, err, "/needs/"+id)
		return
	}

	if msg == "" {
		msg = "Thank you! Your donation has been recorded."
	}
	setFlash(w, "success", msg)
	http.Redirect(w, r, "/donations/"+created.ID, http.StatusSeeOther)
}

// handleMyDonations handles GET /my-donations. The backend pages this
// list; status filtering is a fresh query too.
func handleMyDonations(w http.ResponseWriter, r *http.Request) {
	client := bound(r)

	lp := listutil.ParseListParams(r.URL.Query(), nil, []string{"status"})

	page, err := client.ListMyDonations(r.Context(), apiclient.DonationListQuery{
		Page:   lp.Page,
		Limit:  lp.PerPage,
		Status: lp.Filters["status"],
	})
	if err != nil {
		failPage(w, r, err)
		return
	}

	pageInfo := listutil.ServerPageInfo(lp.Page, lp.PerPage, page.TotalPages, page.TotalDonations)
	renderTemplate(w, r, "my_donations.html", map[string]any{
		"Title":          "My Donations",
		"Donations":      page.Donations,
		"PageInfo":       pageInfo,
		"Params":         lp,
		"Statuses":       donation.Statuses,
		"PerPageOptions": listutil.PerPageOptions,
	})
}

// handleDonationDetail handles GET /donations/{id}. Offers the donor the
// status updates valid from the donation's current state.
func handleDonationDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/donations/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	client := bound(r)

	d, err := client.GetDonation(r.Context(), id)
	if err != nil {
		failPage(w, r, err)
		return
	}

	renderTemplate(w, r, "donation_detail.html", map[string]any{
		"Title":        "Donation to " + d.SchoolName,
		"Donation":     d,
		"NextStatuses": d.DonorNextStatuses(),
	})
}

// handleDonationStatus handles POST /donations/{id}/status.
func handleDonationStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/donations/"), "/status")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	_, msg, err := orchestrators.ExecuteUpdateDonationStatus(r.Context(), orchestrators.UpdateDonationStatusInput{
		DonationID:   id,
		Status:       r.FormValue("status"),
		TrackingNote: strings.TrimSpace(r.FormValue("trackingNote")),
	}, orchestrators.DonateDeps{API: bound(r), Log: appLog})

	if errors.Is(err, orchestrators.ErrBadTransition) {
		setFlash(w, "error", err.Error())
		http.Redirect(w, r, "/donations/"+id, http.StatusSeeOther)
		return
	}
	if err != nil {
		failAction(w, r, err, "/donations/"+id)
		return
	}

	if msg == "" {
		msg = "Status updated."
	}
	setFlash(w, "success", msg)
	http.Redirect(w, r, "/donations/"+id, http.StatusSeeOther)
}
