package apiclient

import (
	"context"
	"net/url"
	"strconv"

	"edusahasra/internal/domain/school"
)

// AdminStats is the dashboard summary the backend reports.
type AdminStats struct {
	TotalSchools    int `json:"totalSchools"`
	PendingSchools  int `json:"pendingSchools"`
	TotalDonations  int `json:"totalDonations"`
	ActiveRequests  int `json:"activeRequests"`
	PendingStories  int `json:"pendingStories"`
	RegisteredUsers int `json:"registeredUsers"`
}

// GetAdminStats fetches the admin dashboard summary.
func (b *Bound) GetAdminStats(ctx context.Context) (AdminStats, error) {
	var stats AdminStats
	if err := b.getJSON(ctx, "/api/admin/stats", nil, &stats); err != nil {
		return AdminStats{}, err
	}
	return stats, nil
}

// ListVerificationQueue fetches schools by verification status for the
// admin review pages.
func (b *Bound) ListVerificationQueue(ctx context.Context, status string, page, limit int) (SchoolPage, error) {
	params := url.Values{}
	if status != "" {
		params.Set("status", status)
	}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var result SchoolPage
	if err := b.getJSON(ctx, "/api/admin/schools", params, &result); err != nil {
		return SchoolPage{}, err
	}
	return result, nil
}

// GetSchoolForReview fetches one school, including its verification
// documents, for the admin detail page.
func (b *Bound) GetSchoolForReview(ctx context.Context, id string) (school.School, error) {
	var s school.School
	if err := b.getJSON(ctx, "/api/admin/schools/"+url.PathEscape(id), nil, &s); err != nil {
		return school.School{}, err
	}
	return s, nil
}
