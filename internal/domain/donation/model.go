package donation

// Donation statuses reported by the backend, in lifecycle order.
const (
	StatusPlanned   = "planned"
	StatusPreparing = "preparing"
	StatusInTransit = "in-transit"
	StatusDelivered = "delivered"
	StatusReceived  = "received"
	StatusCancelled = "cancelled"
)

// Statuses lists every status in lifecycle order, for filter dropdowns.
var Statuses = []string{
	StatusPlanned,
	StatusPreparing,
	StatusInTransit,
	StatusDelivered,
	StatusReceived,
	StatusCancelled,
}

// Delivery methods a donor can choose.
const (
	DeliverySelf    = "self-delivery"
	DeliveryCourier = "courier"
)

// Item is one donated supply line.
type Item struct {
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}

// Donation mirrors the backend's donation resource.
type Donation struct {
	ID             string `json:"id"`
	RequestID      string `json:"requestId"`
	DonorID        string `json:"donorId"`
	DonorName      string `json:"donorName"`
	SchoolID       string `json:"schoolId"`
	SchoolName     string `json:"schoolName"`
	Items          []Item `json:"items"`
	DeliveryMethod string `json:"deliveryMethod"`
	TrackingNote   string `json:"trackingNote"`
	Status         string `json:"status"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

// donorTransitions are the status updates a donor may attempt from each
// current status. The backend still validates every update.
var donorTransitions = map[string][]string{
	StatusPlanned:   {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusInTransit, StatusCancelled},
	StatusInTransit: {StatusDelivered},
}

// DonorNextStatuses returns the updates a donor's detail view should offer.
func (d *Donation) DonorNextStatuses() []string {
	return donorTransitions[d.Status]
}

// CanConfirmReceipt reports whether the school's confirm-receipt action
// applies: only a delivered donation can be confirmed.
func (d *Donation) CanConfirmReceipt() bool {
	return d.Status == StatusDelivered
}

// IsFinal reports whether the donation has reached a terminal status.
func (d *Donation) IsFinal() bool {
	return d.Status == StatusReceived || d.Status == StatusCancelled
}

// TotalQuantity sums the donated units across item lines.
func (d *Donation) TotalQuantity() int {
	total := 0
	for _, it := range d.Items {
		total += it.Quantity
	}
	return total
}
