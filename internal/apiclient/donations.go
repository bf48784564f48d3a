package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"edusahasra/internal/domain/donation"
)

// DonationListQuery is the server-side filter state for donation lists.
type DonationListQuery struct {
	Page   int
	Limit  int
	Status string
	Search string
	SortBy string
}

// DonationPage is one server-filtered page of donations plus totals.
type DonationPage struct {
	Donations      []donation.Donation `json:"donations"`
	TotalPages     int                 `json:"totalPages"`
	TotalDonations int                 `json:"totalDonations"`
}

func donationListParams(q DonationListQuery) url.Values {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	return params
}

// ListMyDonations fetches the authenticated donor's donations.
func (b *Bound) ListMyDonations(ctx context.Context, q DonationListQuery) (DonationPage, error) {
	var page DonationPage
	if err := b.getJSON(ctx, "/api/donations/mine", donationListParams(q), &page); err != nil {
		return DonationPage{}, err
	}
	return page, nil
}

// ListSchoolDonations fetches donations addressed to the authenticated
// school.
func (b *Bound) ListSchoolDonations(ctx context.Context, q DonationListQuery) (DonationPage, error) {
	var page DonationPage
	if err := b.getJSON(ctx, "/api/schools/me/donations", donationListParams(q), &page); err != nil {
		return DonationPage{}, err
	}
	return page, nil
}

// ListAllDonations fetches donations across the platform (admin).
func (b *Bound) ListAllDonations(ctx context.Context, q DonationListQuery) (DonationPage, error) {
	var page DonationPage
	if err := b.getJSON(ctx, "/api/admin/donations", donationListParams(q), &page); err != nil {
		return DonationPage{}, err
	}
	return page, nil
}

// GetDonation fetches one donation by id.
func (b *Bound) GetDonation(ctx context.Context, id string) (donation.Donation, error) {
	var d donation.Donation
	if err := b.getJSON(ctx, "/api/donations/"+url.PathEscape(id), nil, &d); err != nil {
		return donation.Donation{}, err
	}
	return d, nil
}

// NewDonationInput carries a donor's pledge against a request.
type NewDonationInput struct {
	RequestID      string          `json:"requestId"`
	Items          []donation.Item `json:"items"`
	DeliveryMethod string          `json:"deliveryMethod"`
}

// CreateDonation pledges a donation against an open request.
func (b *Bound) CreateDonation(ctx context.Context, input NewDonationInput) (donation.Donation, string, error) {
	var resp struct {
		Donation donation.Donation `json:"donation"`
		Message  string            `json:"message"`
	}
	if err := b.sendJSON(ctx, http.MethodPost, "/api/donations", input, &resp); err != nil {
		return donation.Donation{}, "", err
	}
	return resp.Donation, resp.Message, nil
}

// UpdateDonationStatus moves a donation along its lifecycle. The backend
// is the authority on legal transitions and replies with the updated
// resource.
func (b *Bound) UpdateDonationStatus(ctx context.Context, id, status, trackingNote string) (donation.Donation, string, error) {
	body := map[string]string{"status": status}
	if trackingNote != "" {
		body["trackingNote"] = trackingNote
	}
	var resp struct {
		Donation donation.Donation `json:"donation"`
		Message  string            `json:"message"`
	}
	err := b.sendJSON(ctx, http.MethodPatch, "/api/donations/"+url.PathEscape(id)+"/status", body, &resp)
	if err != nil {
		return donation.Donation{}, "", err
	}
	return resp.Donation, resp.Message, nil
}

// ConfirmReceipt records the school's confirmation that a delivered
// donation arrived.
func (b *Bound) ConfirmReceipt(ctx context.Context, id string) (donation.Donation, string, error) {
	var resp struct {
		Donation donation.Donation `json:"donation"`
		Message  string            `json:"message"`
	}
	err := b.sendJSON(ctx, http.MethodPost, "/api/donations/"+url.PathEscape(id)+"/confirm", struct{}{}, &resp)
	if err != nil {
		return donation.Donation{}, "", err
	}
	return resp.Donation, resp.Message, nil
}
