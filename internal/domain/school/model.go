package school

import "strings"

// Verification statuses reported by the backend. The backend is the
// authority on legal transitions; these constants only drive which actions
// a page offers.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Districts lists the Sri Lankan districts offered by location filters and
// the registration wizard.
var Districts = []string{
	"Ampara", "Anuradhapura", "Badulla", "Batticaloa", "Colombo", "Galle",
	"Gampaha", "Hambantota", "Jaffna", "Kalutara", "Kandy", "Kegalle",
	"Kilinochchi", "Kurunegala", "Mannar", "Matale", "Matara", "Monaragala",
	"Mullaitivu", "Nuwara Eliya", "Polonnaruwa", "Puttalam", "Ratnapura",
	"Trincomalee", "Vavuniya",
}

// School mirrors the backend's school resource.
type School struct {
	ID           string   `json:"id"`
	SchoolName   string   `json:"schoolName"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	District     string   `json:"district"`
	City         string   `json:"city"`
	Address      string   `json:"address"`
	Description  string   `json:"description"`
	StudentCount int      `json:"studentCount"`
	Status       string   `json:"status"`
	Images       []string `json:"images"`
	DocumentURLs []string `json:"documents"`
	RejectReason string   `json:"rejectReason"`
	CreatedAt    string   `json:"createdAt"`
}

// IsPending reports whether the school is awaiting verification.
func (s *School) IsPending() bool {
	return s.Status == StatusPending
}

// CanApprove reports whether the approve action applies.
func (s *School) CanApprove() bool {
	return s.Status == StatusPending
}

// CanReject reports whether the reject action applies.
func (s *School) CanReject() bool {
	return s.Status == StatusPending
}

// IsValidDistrict reports whether d names a known district.
func IsValidDistrict(d string) bool {
	for _, known := range Districts {
		if strings.EqualFold(known, d) {
			return true
		}
	}
	return false
}
