package admin

import (
	"time"

	"github.com/google/uuid"
)

// Page state keys used in the ByState statistics breakdown.
const (
	StateDraft           = "draft"
	StatePublic          = "public"
	StatePublishedDrafts = "published_drafts"
)

// PageStatistics provides aggregated statistics about pages
type PageStatistics struct {
	TotalCount int64            `json:"total_count"`
	ByState    map[string]int64 `json:"by_state,omitempty"`
	BySite     map[string]int64 `json:"by_site,omitempty"`
	ByTemplate map[string]int64 `json:"by_template,omitempty"`
	ByLanguage map[string]int64 `json:"by_language,omitempty"`
	OldestPage *time.Time       `json:"oldest_page,omitempty"`
	NewestPage *time.Time       `json:"newest_page,omitempty"`
}

// PageFilters defines flexible filtering options for admin operations
type PageFilters struct {
	// Site filters
	SiteID  *uuid.UUID  `json:"site_id,omitempty"`
	SiteIDs []uuid.UUID `json:"site_ids,omitempty"`

	// State filters
	IsDraft   *bool `json:"is_draft,omitempty"`
	Published *bool `json:"published,omitempty"`

	// Attribute filters
	ReverseID     *string  `json:"reverse_id,omitempty"`
	Language      *string  `json:"language,omitempty"`
	Template      *string  `json:"template,omitempty"`
	Templates     []string `json:"templates,omitempty"`
	InNavigation  *bool    `json:"in_navigation,omitempty"`
	TitleContains *string  `json:"title_contains,omitempty"`

	// Time range filters
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
	UpdatedAfter  *time.Time `json:"updated_after,omitempty"`
	UpdatedBefore *time.Time `json:"updated_before,omitempty"`

	// Pagination
	Limit  *int `json:"limit,omitempty"`
	Offset *int `json:"offset,omitempty"`

	// Sorting
	SortBy    *string `json:"sort_by,omitempty"`    // created_at, updated_at, position
	SortOrder *string `json:"sort_order,omitempty"` // asc, desc
}

// StatisticsOptions defines what statistics to compute
type StatisticsOptions struct {
	IncludeStateBreakdown    bool `json:"include_state_breakdown"`
	IncludeSiteBreakdown     bool `json:"include_site_breakdown"`
	IncludeTemplateBreakdown bool `json:"include_template_breakdown"`
	IncludeLanguageBreakdown bool `json:"include_language_breakdown"`
	IncludeTimeRange         bool `json:"include_time_range"`
}

// DefaultStatisticsOptions returns statistics options with all breakdowns enabled
func DefaultStatisticsOptions() StatisticsOptions {
	return StatisticsOptions{
		IncludeStateBreakdown:    true,
		IncludeSiteBreakdown:     true,
		IncludeTemplateBreakdown: true,
		IncludeLanguageBreakdown: true,
		IncludeTimeRange:         true,
	}
}
