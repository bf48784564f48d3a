package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"edusahasra/internal/domain/school"
)

// SchoolListQuery is the server-side filter state serialised into query
// parameters. Zero values are omitted from the request.
type SchoolListQuery struct {
	Page     int
	Limit    int
	Status   string
	Search   string
	SortBy   string
	District string
}

// SchoolPage is one server-filtered page plus the totals the backend
// reports for pagination controls.
type SchoolPage struct {
	Schools      []school.School `json:"schools"`
	TotalPages   int             `json:"totalPages"`
	TotalSchools int             `json:"totalSchools"`
}

// ListSchools fetches one page of schools, filtered server-side.
func (b *Bound) ListSchools(ctx context.Context, q SchoolListQuery) (SchoolPage, error) {
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
	if q.District != "" {
		params.Set("district", q.District)
	}

	var page SchoolPage
	if err := b.getJSON(ctx, "/api/schools", params, &page); err != nil {
		return SchoolPage{}, err
	}
	return page, nil
}

// GetSchool fetches one school by id.
func (b *Bound) GetSchool(ctx context.Context, id string) (school.School, error) {
	var s school.School
	if err := b.getJSON(ctx, "/api/schools/"+url.PathEscape(id), nil, &s); err != nil {
		return school.School{}, err
	}
	return s, nil
}

// VerifySchool applies the admin approve/reject decision. Reason is only
// meaningful for rejections and is surfaced to the school verbatim.
func (b *Bound) VerifySchool(ctx context.Context, id, status, reason string) (school.School, string, error) {
	body := map[string]string{"status": status}
	if reason != "" {
		body["reason"] = reason
	}
	var resp struct {
		School  school.School `json:"school"`
		Message string        `json:"message"`
	}
	err := b.sendJSON(ctx, http.MethodPatch, "/api/admin/schools/"+url.PathEscape(id)+"/verify", body, &resp)
	if err != nil {
		return school.School{}, "", err
	}
	return resp.School, resp.Message, nil
}
