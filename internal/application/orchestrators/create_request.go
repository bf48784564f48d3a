package orchestrators

import (
	"context"

	"github.com/rs/zerolog"

	"edusahasra/internal/adapters/storage/draft"
	"edusahasra/internal/apiclient"
	"edusahasra/internal/application/forms"
	"edusahasra/internal/domain/request"
)

// RequestAPI defines the backend calls needed by CreateRequest and
// CancelRequest.
type RequestAPI interface {
	CreateRequest(ctx context.Context, input apiclient.NewRequestInput) (request.Request, string, error)
	CancelRequest(ctx context.Context, id string) (string, error)
}

// CreateRequestInput identifies the browser whose draft is submitted.
type CreateRequestInput struct {
	BrowserID string
}

// CreateRequestDeps holds dependencies for CreateRequest.
type CreateRequestDeps struct {
	API    RequestAPI
	Drafts DraftReader
	Log    zerolog.Logger
}

// ExecuteCreateRequest re-validates the needs-request draft, submits it,
// and clears the draft on success.
// POST: on success the draft is gone and the created request is returned
func ExecuteCreateRequest(ctx context.Context, input CreateRequestInput, deps CreateRequestDeps) (request.Request, string, forms.Errors, error) {
	d, ok, err := deps.Drafts.GetDraft(ctx, input.BrowserID, draft.KindDonationRequest)
	if err != nil {
		return request.Request{}, "", nil, err
	}
	if !ok {
		return request.Request{}, "", nil, ErrNoDraft
	}

	if errs := forms.DonationRequest().CheckAll(d.Fields); errs != nil {
		return request.Request{}, "", errs, nil
	}

	quantities := forms.RequestQuantities(d.Fields)
	items := make([]request.Item, 0, len(quantities))
	for _, cat := range request.Categories {
		if qty, ok := quantities[cat]; ok {
			items = append(items, request.Item{Category: cat, Quantity: qty})
		}
	}

	created, msg, err := deps.API.CreateRequest(ctx, apiclient.NewRequestInput{
		Items: items,
		Notes: d.Fields["notes"],
	})
	if err != nil {
		return request.Request{}, "", nil, err
	}

	if err := deps.Drafts.DeleteDraft(ctx, input.BrowserID, draft.KindDonationRequest); err != nil {
		deps.Log.Error().Err(err).Msg("draft_cleanup_failed")
	}
	deps.Log.Info().Str("request_id", created.ID).Int("items", len(items)).Msg("request_created")
	return created, msg, nil, nil
}

// CancelRequestDeps holds dependencies for CancelRequest.
type CancelRequestDeps struct {
	API RequestAPI
	Log zerolog.Logger
}

// ExecuteCancelRequest cancels one of the school's open requests.
func ExecuteCancelRequest(ctx context.Context, id string, deps CancelRequestDeps) (string, error) {
	msg, err := deps.API.CancelRequest(ctx, id)
	if err != nil {
		return "", err
	}
	deps.Log.Info().Str("request_id", id).Msg("request_cancelled")
	return msg, nil
}
