package listutil

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// PageParams carries pagination parameters parsed from a request.
type PageParams struct {
	Page    int // 1-indexed page number
	PerPage int // rows per page
}

// SortParams carries the sort key parsed from a request.
type SortParams struct {
	SortBy string // sort key, e.g. "newest", "lowest"
}

// FilterParams carries search and filter parameters.
type FilterParams struct {
	Search  string            // free-text search query
	Filters map[string]string // exact-match filters (e.g. district=Galle)
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int // current page (1-indexed)
	PerPage    int // rows per page
	Total      int // total matching rows
	TotalPages int // ceil(Total / PerPage)
}

// ListParams combines all list view parameters.
type ListParams struct {
	PageParams
	SortParams
	FilterParams
}

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = 10

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{10, 20, 50}

// ParsePageParams extracts page and per_page from URL query values.
// PRE: none
// POST: returns valid PageParams with defaults applied
func ParsePageParams(q url.Values) PageParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if !isValidPerPage(perPage) {
		perPage = DefaultPerPage
	}
	return PageParams{Page: page, PerPage: perPage}
}

// ParseSortParams extracts sortBy from URL query values.
// POST: SortBy is one of allowedKeys or ""
func ParseSortParams(q url.Values, allowedKeys []string) SortParams {
	sortBy := q.Get("sortBy")
	if !isAllowedKey(sortBy, allowedKeys) {
		sortBy = ""
	}
	return SortParams{SortBy: sortBy}
}

// ParseFilterParams extracts search and named filters from URL query values.
// PRE: filterKeys lists the allowed filter parameter names
// POST: returns FilterParams with only recognised keys
func ParseFilterParams(q url.Values, filterKeys []string) FilterParams {
	fp := FilterParams{
		Search:  q.Get("search"),
		Filters: make(map[string]string),
	}
	for _, key := range filterKeys {
		if v := q.Get(key); v != "" {
			fp.Filters[key] = v
		}
	}
	return fp
}

// ParseListParams parses all list parameters from URL query values.
func ParseListParams(q url.Values, allowedSortKeys []string, filterKeys []string) ListParams {
	return ListParams{
		PageParams:   ParsePageParams(q),
		SortParams:   ParseSortParams(q, allowedSortKeys),
		FilterParams: ParseFilterParams(q, filterKeys),
	}
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0, perPage > 0, page >= 1
// POST: returns PageInfo with TotalPages computed; Page clamped to valid range
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// ServerPageInfo builds PageInfo from backend-reported totals, for list
// views whose filtering and paging happened server-side.
// PRE: totalPages and total come from the backend response
func ServerPageInfo(page, perPage, totalPages, total int) PageInfo {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if totalPages < 1 {
		totalPages = 1
	}
	return PageInfo{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Offset returns the slice offset for the current page.
// PRE: PageInfo is valid
// POST: Returns (Page-1) * PerPage
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow returns the 1-indexed first row number on the current page.
// PRE: PageInfo is valid
// POST: Returns 0 if Total is 0, otherwise Offset+1
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last row number on the current page.
// PRE: PageInfo is valid
// POST: Returns min(Offset+PerPage, Total)
func (p PageInfo) EndRow() int {
	end := p.Offset() + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return end
}

// RangeText renders the displayed-range summary,
// e.g. "Showing 11 to 20 of 25 entries".
func (p PageInfo) RangeText() string {
	if p.Total == 0 {
		return "Showing 0 entries"
	}
	return fmt.Sprintf("Showing %d to %d of %d entries", p.StartRow(), p.EndRow(), p.Total)
}

// PageNumbers returns the page numbers to display in pagination controls.
// Shows at most 5 pages centered around the current page.
// PRE: PageInfo is valid
// POST: Returns slice of at most 5 page numbers centered on current page
func (p PageInfo) PageNumbers() []int {
	const maxButtons = 5
	start := p.Page - maxButtons/2
	if start < 1 {
		start = 1
	}
	end := start + maxButtons - 1
	if end > p.TotalPages {
		end = p.TotalPages
		start = end - maxButtons + 1
		if start < 1 {
			start = 1
		}
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// HasPrev reports whether a previous page exists.
func (p PageInfo) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p PageInfo) HasNext() bool { return p.Page < p.TotalPages }

// ShowPagination returns true if pagination controls should be displayed.
// PRE: PageInfo is valid
// POST: Returns true if Total > PerPage
func (p PageInfo) ShowPagination() bool {
	return p.Total > p.PerPage
}

// LocalQuery describes the in-process pipeline over a fetched snapshot:
// case-insensitive substring search over declared fields, then exact-match
// predicates, then an optional stable sort, then the page slice. The same
// snapshot and query always produce the same rows and page count.
type LocalQuery[T any] struct {
	Search       string
	SearchFields func(T) []string  // fields matched by Search; nil disables search
	Matches      []func(T) bool    // exact-match filters, all must pass
	Less         func(a, b T) bool // stable sort order; nil keeps snapshot order
	Page         int
	PerPage      int
}

// ApplyLocal runs the pipeline and returns the visible page plus
// pagination metadata. The input slice is never mutated.
// POST: len(rows) <= PerPage; TotalPages == ceil(filtered/PerPage)
func ApplyLocal[T any](items []T, q LocalQuery[T]) ([]T, PageInfo) {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if search != "" && q.SearchFields != nil && !matchesSearch(q.SearchFields(item), search) {
			continue
		}
		if !matchesAll(item, q.Matches) {
			continue
		}
		filtered = append(filtered, item)
	}

	if q.Less != nil {
		sort.SliceStable(filtered, func(i, j int) bool { return q.Less(filtered[i], filtered[j]) })
	}

	info := NewPageInfo(q.Page, q.PerPage, len(filtered))
	start := info.Offset()
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + info.PerPage
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], info
}

func matchesSearch(fields []string, search string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func matchesAll[T any](item T, preds []func(T) bool) bool {
	for _, pred := range preds {
		if !pred(item) {
			return false
		}
	}
	return true
}

func isValidPerPage(n int) bool {
	for _, opt := range PerPageOptions {
		if n == opt {
			return true
		}
	}
	return false
}

func isAllowedKey(key string, allowed []string) bool {
	for _, a := range allowed {
		if key == a {
			return true
		}
	}
	return false
}
