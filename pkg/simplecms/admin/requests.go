package admin

import (
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// ListPagesRequest contains parameters for admin page listing
type ListPagesRequest struct {
	Filters PageFilters `json:"filters"`
}

// ListPagesResponse contains the paginated list of pages
type ListPagesResponse struct {
	Pages      []*simplecms.Page `json:"pages"`
	TotalCount int64             `json:"total_count"`
	Limit      int               `json:"limit"`
	Offset     int               `json:"offset"`
	HasMore    bool              `json:"has_more"`
}

// CountRequest contains parameters for counting pages
type CountRequest struct {
	Filters PageFilters `json:"filters"`
}

// CountResponse contains the count result
type CountResponse struct {
	Count int64 `json:"count"`
}

// StatisticsRequest contains parameters for retrieving page statistics
type StatisticsRequest struct {
	Filters PageFilters       `json:"filters"`
	Options StatisticsOptions `json:"options"`
}

// StatisticsResponse contains the statistics result
type StatisticsResponse struct {
	Statistics PageStatistics `json:"statistics"`
	ComputedAt time.Time      `json:"computed_at"`
}

// PermissionsResponse contains all permission rows granted to a user
type PermissionsResponse struct {
	UserID            uuid.UUID                         `json:"user_id"`
	PagePermissions   []*simplecms.PagePermission       `json:"page_permissions"`
	GlobalPermissions []*simplecms.GlobalPagePermission `json:"global_permissions"`
}

// ListPagesOption provides functional options for building page filters
type ListPagesOption func(*PageFilters)

// NewFilters builds a PageFilters value from the given options
func NewFilters(opts ...ListPagesOption) PageFilters {
	filters := PageFilters{}
	for _, opt := range opts {
		opt(&filters)
	}
	return filters
}

// WithSiteID filters by site ID
func WithSiteID(siteID uuid.UUID) ListPagesOption {
	return func(f *PageFilters) {
		f.SiteID = &siteID
	}
}

// WithSiteIDs filters by multiple site IDs
func WithSiteIDs(siteIDs ...uuid.UUID) ListPagesOption {
	return func(f *PageFilters) {
		f.SiteIDs = siteIDs
	}
}

// WithDrafts restricts results to draft pages
func WithDrafts() ListPagesOption {
	return func(f *PageFilters) {
		isDraft := true
		f.IsDraft = &isDraft
	}
}

// WithPublic restricts results to public pages
func WithPublic() ListPagesOption {
	return func(f *PageFilters) {
		isDraft := false
		f.IsDraft = &isDraft
	}
}

// WithPublished filters by whether a page has a published title
func WithPublished(published bool) ListPagesOption {
	return func(f *PageFilters) {
		f.Published = &published
	}
}

// WithReverseID filters by reverse ID
func WithReverseID(reverseID string) ListPagesOption {
	return func(f *PageFilters) {
		f.ReverseID = &reverseID
	}
}

// WithLanguage restricts results to pages with a title in the language
func WithLanguage(language string) ListPagesOption {
	return func(f *PageFilters) {
		f.Language = &language
	}
}

// WithTemplate filters by template name
func WithTemplate(template string) ListPagesOption {
	return func(f *PageFilters) {
		f.Template = &template
	}
}

// WithTemplates filters by multiple template names
func WithTemplates(templates ...string) ListPagesOption {
	return func(f *PageFilters) {
		f.Templates = templates
	}
}

// WithInNavigation filters by navigation visibility
func WithInNavigation(inNavigation bool) ListPagesOption {
	return func(f *PageFilters) {
		f.InNavigation = &inNavigation
	}
}

// WithTitleContains restricts results to pages whose title in any
// language contains the given text, case-insensitively
func WithTitleContains(text string) ListPagesOption {
	return func(f *PageFilters) {
		f.TitleContains = &text
	}
}

// WithCreatedAfter filters by created after time
func WithCreatedAfter(t time.Time) ListPagesOption {
	return func(f *PageFilters) {
		f.CreatedAfter = &t
	}
}

// WithCreatedBefore filters by created before time
func WithCreatedBefore(t time.Time) ListPagesOption {
	return func(f *PageFilters) {
		f.CreatedBefore = &t
	}
}

// WithUpdatedAfter filters by updated after time
func WithUpdatedAfter(t time.Time) ListPagesOption {
	return func(f *PageFilters) {
		f.UpdatedAfter = &t
	}
}

// WithUpdatedBefore filters by updated before time
func WithUpdatedBefore(t time.Time) ListPagesOption {
	return func(f *PageFilters) {
		f.UpdatedBefore = &t
	}
}

// WithLimit sets the pagination limit
func WithLimit(limit int) ListPagesOption {
	return func(f *PageFilters) {
		f.Limit = &limit
	}
}

// WithOffset sets the pagination offset
func WithOffset(offset int) ListPagesOption {
	return func(f *PageFilters) {
		f.Offset = &offset
	}
}

// WithPagination sets both limit and offset
func WithPagination(limit, offset int) ListPagesOption {
	return func(f *PageFilters) {
		f.Limit = &limit
		f.Offset = &offset
	}
}

// WithSortBy sets the sort field
func WithSortBy(sortBy string) ListPagesOption {
	return func(f *PageFilters) {
		f.SortBy = &sortBy
	}
}

// WithSortOrder sets the sort order
func WithSortOrder(sortOrder string) ListPagesOption {
	return func(f *PageFilters) {
		f.SortOrder = &sortOrder
	}
}
