package orchestrators

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"edusahasra/internal/apiclient"
	"edusahasra/internal/domain/donation"
	"edusahasra/internal/domain/request"
)

// DonationAPI defines the backend calls needed by the donation orchestrators.
type DonationAPI interface {
	GetNeed(ctx context.Context, id string) (request.Request, error)
	CreateDonation(ctx context.Context, input apiclient.NewDonationInput) (donation.Donation, string, error)
	UpdateDonationStatus(ctx context.Context, id, status, trackingNote string) (donation.Donation, string, error)
	ConfirmReceipt(ctx context.Context, id string) (donation.Donation, string, error)
	GetDonation(ctx context.Context, id string) (donation.Donation, error)
}

// DonateInput carries the donor's pledge against an open request.
type DonateInput struct {
	RequestID      string
	Quantities     map[string]int // category -> pledged quantity
	DeliveryMethod string
}

// DonateDeps holds dependencies for Donate.
type DonateDeps struct {
	API DonationAPI
	Log zerolog.Logger
}

var (
	ErrRequestClosed  = errors.New("this request is no longer accepting donations")
	ErrNothingPledged = errors.New("select at least one item to donate")
	ErrOverPledge     = errors.New("pledged quantity exceeds what the school still needs")
	ErrBadDelivery    = errors.New("choose a delivery method")
	ErrBadTransition  = errors.New("that status update is not available")
)

// ExecuteDonate validates a pledge against the request's remaining needs
// and creates the donation.
// PRE: the request exists and is open
// POST: pledged quantities never exceed any item's remaining need
func ExecuteDonate(ctx context.Context, input DonateInput, deps DonateDeps) (donation.Donation, string, error) {
	if input.DeliveryMethod != donation.DeliverySelf && input.DeliveryMethod != donation.DeliveryCourier {
		return donation.Donation{}, "", ErrBadDelivery
	}

	req, err := deps.API.GetNeed(ctx, input.RequestID)
	if err != nil {
		return donation.Donation{}, "", err
	}
	if !req.IsOpen() {
		return donation.Donation{}, "", ErrRequestClosed
	}

	remaining := make(map[string]int, len(req.Items))
	for _, it := range req.Items {
		remaining[it.Category] = it.Remaining()
	}

	items := make([]donation.Item, 0, len(input.Quantities))
	for _, it := range req.Items {
		qty := input.Quantities[it.Category]
		if qty < 1 {
			continue
		}
		if qty > remaining[it.Category] {
			return donation.Donation{}, "", ErrOverPledge
		}
		items = append(items, donation.Item{Category: it.Category, Quantity: qty})
	}
	if len(items) == 0 {
		return donation.Donation{}, "", ErrNothingPledged
	}

	created, msg, err := deps.API.CreateDonation(ctx, apiclient.NewDonationInput{
		RequestID:      input.RequestID,
		Items:          items,
		DeliveryMethod: input.DeliveryMethod,
	})
	if err != nil {
		return donation.Donation{}, "", err
	}

	deps.Log.Info().
		Str("donation_id", created.ID).
		Str("request_id", input.RequestID).
		Str("delivery", input.DeliveryMethod).
		Msg("donation_created")
	return created, msg, nil
}

// UpdateDonationStatusInput carries a donor's delivery status update.
type UpdateDonationStatusInput struct {
	DonationID   string
	Status       string
	TrackingNote string
}

// ExecuteUpdateDonationStatus applies a donor's status update after
// checking it is one of the offered transitions.
// INVARIANT: only transitions the detail view offers are submitted
func ExecuteUpdateDonationStatus(ctx context.Context, input UpdateDonationStatusInput, deps DonateDeps) (donation.Donation, string, error) {
	current, err := deps.API.GetDonation(ctx, input.DonationID)
	if err != nil {
		return donation.Donation{}, "", err
	}

	allowed := false
	for _, s := range current.DonorNextStatuses() {
		if s == input.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		return donation.Donation{}, "", ErrBadTransition
	}

	updated, msg, err := deps.API.UpdateDonationStatus(ctx, input.DonationID, input.Status, input.TrackingNote)
	if err != nil {
		return donation.Donation{}, "", err
	}
	deps.Log.Info().Str("donation_id", input.DonationID).Str("status", input.Status).Msg("donation_status_updated")
	return updated, msg, nil
}

// ExecuteConfirmReceipt records the school's confirmation that a delivered
// donation arrived.
// PRE: the donation's status is delivered
func ExecuteConfirmReceipt(ctx context.Context, donationID string, deps DonateDeps) (donation.Donation, string, error) {
	current, err := deps.API.GetDonation(ctx, donationID)
	if err != nil {
		return donation.Donation{}, "", err
	}
	if !current.CanConfirmReceipt() {
		return donation.Donation{}, "", ErrBadTransition
	}

	updated, msg, err := deps.API.ConfirmReceipt(ctx, donationID)
	if err != nil {
		return donation.Donation{}, "", err
	}
	deps.Log.Info().Str("donation_id", donationID).Msg("donation_receipt_confirmed")
	return updated, msg, nil
}
