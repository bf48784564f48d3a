package request

// Donation request statuses reported by the backend.
const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusFulfilled = "fulfilled"
	StatusCancelled = "cancelled"
)

// Categories of educational supplies a school may request.
var Categories = []string{
	"Stationery", "Textbooks", "Exercise Books", "School Bags",
	"Uniforms", "Shoes", "Sports Equipment", "Science Equipment",
	"Library Books", "Technology",
}

// Item is one requested supply line.
type Item struct {
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	Received int    `json:"received"`
}

// Remaining returns how many units are still needed.
func (i Item) Remaining() int {
	if i.Received >= i.Quantity {
		return 0
	}
	return i.Quantity - i.Received
}

// Request mirrors the backend's donation-request resource.
type Request struct {
	ID         string `json:"id"`
	SchoolID   string `json:"schoolId"`
	SchoolName string `json:"schoolName"`
	District   string `json:"district"`
	Items      []Item `json:"items"`
	Notes      string `json:"notes"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
}

// IsOpen reports whether donors can still donate against this request.
func (r *Request) IsOpen() bool {
	return r.Status == StatusActive
}

// ProgressPercent returns fulfilment progress as 0..100.
// POST: returns 0 when the request has no items
func (r *Request) ProgressPercent() int {
	var want, got int
	for _, it := range r.Items {
		want += it.Quantity
		got += it.Received
	}
	if want == 0 {
		return 0
	}
	if got > want {
		got = want
	}
	return got * 100 / want
}

// HasCategory reports whether any item line matches the category.
func (r *Request) HasCategory(category string) bool {
	for _, it := range r.Items {
		if it.Category == category {
			return true
		}
	}
	return false
}

// IsValidCategory reports whether c names a known supply category.
func IsValidCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}
