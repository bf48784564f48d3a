package story

// Impact story statuses reported by the backend.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Story mirrors the backend's impact-story resource. Body is markdown and
// is rendered to HTML at display time.
type Story struct {
	ID         string   `json:"id"`
	SchoolID   string   `json:"schoolId"`
	SchoolName string   `json:"schoolName"`
	DonationID string   `json:"donationId"`
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Quote      string   `json:"quote"`
	Images     []string `json:"images"`
	Status     string   `json:"status"`
	CreatedAt  string   `json:"createdAt"`
}

// IsPublished reports whether the story is visible to the public pages.
func (s *Story) IsPublished() bool {
	return s.Status == StatusApproved
}

// CanApprove reports whether the admin approve action applies.
func (s *Story) CanApprove() bool {
	return s.Status == StatusPending
}

// CanReject reports whether the admin reject action applies.
func (s *Story) CanReject() bool {
	return s.Status == StatusPending
}
