package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"edusahasra/internal/domain/request"
)

// ListNeeds fetches a fixed-size leading slice of open donation requests as
// a bare array. The needs browser filters, sorts and paginates this
// snapshot locally.
func (b *Bound) ListNeeds(ctx context.Context, limit int) ([]request.Request, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var needs []request.Request
	if err := b.getJSON(ctx, "/api/requests", params, &needs); err != nil {
		return nil, err
	}
	return needs, nil
}

// ListSchoolRequests fetches the authenticated school's own requests.
func (b *Bound) ListSchoolRequests(ctx context.Context, status string) ([]request.Request, error) {
	params := url.Values{}
	if status != "" {
		params.Set("status", status)
	}
	var requests []request.Request
	if err := b.getJSON(ctx, "/api/schools/me/requests", params, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// GetNeed fetches one donation request by id.
func (b *Bound) GetNeed(ctx context.Context, id string) (request.Request, error) {
	var r request.Request
	if err := b.getJSON(ctx, "/api/requests/"+url.PathEscape(id), nil, &r); err != nil {
		return request.Request{}, err
	}
	return r, nil
}

// NewRequestInput carries the donation-request wizard's final submission.
type NewRequestInput struct {
	Items []request.Item `json:"items"`
	Notes string         `json:"notes"`
}

// CreateRequest submits a school's new donation request.
func (b *Bound) CreateRequest(ctx context.Context, input NewRequestInput) (request.Request, string, error) {
	var resp struct {
		Request request.Request `json:"request"`
		Message string          `json:"message"`
	}
	if err := b.sendJSON(ctx, http.MethodPost, "/api/requests", input, &resp); err != nil {
		return request.Request{}, "", err
	}
	return resp.Request, resp.Message, nil
}

// CancelRequest withdraws a school's open request.
func (b *Bound) CancelRequest(ctx context.Context, id string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	err := b.sendJSON(ctx, http.MethodPatch, "/api/requests/"+url.PathEscape(id)+"/cancel", struct{}{}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}
