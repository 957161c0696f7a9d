package admin

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// adminService implements the AdminService interface
type adminService struct {
	repo simplecms.Repository
}

// Ensure adminService implements AdminService
var _ AdminService = (*adminService)(nil)

// defaultLimit caps a listing when the request does not set one.
const defaultLimit = 100

// ListAllPages returns a paginated list of pages with optional filtering
func (s *adminService) ListAllPages(ctx context.Context, req ListPagesRequest) (*ListPagesResponse, error) {
	pages, err := s.collectPages(ctx, req.Filters)
	if err != nil {
		return nil, err
	}

	limit := defaultLimit
	if req.Filters.Limit != nil {
		limit = *req.Filters.Limit
	}
	offset := 0
	if req.Filters.Offset != nil {
		offset = *req.Filters.Offset
	}

	total := int64(len(pages))
	start := offset
	if start > len(pages) {
		start = len(pages)
	}
	end := start + limit
	if end > len(pages) {
		end = len(pages)
	}

	response := &ListPagesResponse{
		Pages:      pages[start:end],
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    end < len(pages),
	}

	return response, nil
}

// CountPages returns the count of pages matching the given filters
func (s *adminService) CountPages(ctx context.Context, req CountRequest) (*CountResponse, error) {
	pages, err := s.collectPages(ctx, req.Filters)
	if err != nil {
		return nil, err
	}

	response := &CountResponse{
		Count: int64(len(pages)),
	}

	return response, nil
}

// GetStatistics returns aggregated statistics about pages
func (s *adminService) GetStatistics(ctx context.Context, req StatisticsRequest) (*StatisticsResponse, error) {
	pages, err := s.collectPages(ctx, req.Filters)
	if err != nil {
		return nil, err
	}

	stats := PageStatistics{
		TotalCount: int64(len(pages)),
	}

	if req.Options.IncludeStateBreakdown {
		stats.ByState = make(map[string]int64)
		for _, page := range pages {
			if page.IsDraft {
				stats.ByState[StateDraft]++
				if page.PublicID != nil {
					stats.ByState[StatePublishedDrafts]++
				}
			} else {
				stats.ByState[StatePublic]++
			}
		}
	}

	if req.Options.IncludeSiteBreakdown {
		names, err := s.siteNames(ctx)
		if err != nil {
			return nil, err
		}
		stats.BySite = make(map[string]int64)
		for _, page := range pages {
			name, ok := names[page.SiteID]
			if !ok {
				name = page.SiteID.String()
			}
			stats.BySite[name]++
		}
	}

	if req.Options.IncludeTemplateBreakdown {
		stats.ByTemplate = make(map[string]int64)
		for _, page := range pages {
			stats.ByTemplate[page.TemplateName]++
		}
	}

	if req.Options.IncludeLanguageBreakdown {
		stats.ByLanguage = make(map[string]int64)
		for _, page := range pages {
			titles, err := s.repo.ListTitles(ctx, page.ID)
			if err != nil {
				return nil, err
			}
			for _, title := range titles {
				stats.ByLanguage[title.Language]++
			}
		}
	}

	if req.Options.IncludeTimeRange {
		for _, page := range pages {
			createdAt := page.CreatedAt
			if stats.OldestPage == nil || createdAt.Before(*stats.OldestPage) {
				oldest := createdAt
				stats.OldestPage = &oldest
			}
			if stats.NewestPage == nil || createdAt.After(*stats.NewestPage) {
				newest := createdAt
				stats.NewestPage = &newest
			}
		}
	}

	response := &StatisticsResponse{
		Statistics: stats,
		ComputedAt: time.Now(),
	}

	return response, nil
}

// ListPermissions returns every permission row granted to the given user
func (s *adminService) ListPermissions(ctx context.Context, userID uuid.UUID) (*PermissionsResponse, error) {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	pagePerms, err := s.repo.ListPagePermissions(ctx, userID)
	if err != nil {
		return nil, err
	}

	globalPerms, err := s.repo.ListGlobalPagePermissions(ctx, userID)
	if err != nil {
		return nil, err
	}

	response := &PermissionsResponse{
		UserID:            userID,
		PagePermissions:   pagePerms,
		GlobalPermissions: globalPerms,
	}

	return response, nil
}

// collectPages loads pages through the repository filter and applies the
// admin-only filters and sorting the repository does not know about.
func (s *adminService) collectPages(ctx context.Context, filters PageFilters) ([]*simplecms.Page, error) {
	pages, err := s.repo.ListPages(ctx, convertToRepoFilter(filters))
	if err != nil {
		return nil, err
	}
	pages = applyLocalFilters(pages, filters)
	if filters.TitleContains != nil {
		pages, err = s.filterByTitle(ctx, pages, *filters.TitleContains)
		if err != nil {
			return nil, err
		}
	}
	sortResult(pages, filters)
	return pages, nil
}

// filterByTitle keeps pages whose title in any language contains the
// given text, case-insensitively.
func (s *adminService) filterByTitle(ctx context.Context, pages []*simplecms.Page, text string) ([]*simplecms.Page, error) {
	needle := strings.ToLower(text)
	result := pages[:0]
	for _, page := range pages {
		titles, err := s.repo.ListTitles(ctx, page.ID)
		if err != nil {
			return nil, err
		}
		for _, title := range titles {
			if strings.Contains(strings.ToLower(title.Title), needle) {
				result = append(result, page)
				break
			}
		}
	}
	return result, nil
}

// convertToRepoFilter converts admin PageFilters to the repository PageFilter
func convertToRepoFilter(filters PageFilters) simplecms.PageFilter {
	return simplecms.PageFilter{
		SiteID:    filters.SiteID,
		IsDraft:   filters.IsDraft,
		Published: filters.Published,
		ReverseID: filters.ReverseID,
		Language:  filters.Language,
	}
}

// applyLocalFilters narrows the listing by the filters the repository
// filter cannot express.
func applyLocalFilters(pages []*simplecms.Page, filters PageFilters) []*simplecms.Page {
	result := pages[:0]
	for _, page := range pages {
		if len(filters.SiteIDs) > 0 && !containsUUID(filters.SiteIDs, page.SiteID) {
			continue
		}
		if filters.Template != nil && page.TemplateName != *filters.Template {
			continue
		}
		if len(filters.Templates) > 0 && !containsString(filters.Templates, page.TemplateName) {
			continue
		}
		if filters.InNavigation != nil && page.InNavigation != *filters.InNavigation {
			continue
		}
		if filters.CreatedAfter != nil && page.CreatedAt.Before(*filters.CreatedAfter) {
			continue
		}
		if filters.CreatedBefore != nil && page.CreatedAt.After(*filters.CreatedBefore) {
			continue
		}
		if filters.UpdatedAfter != nil && page.UpdatedAt.Before(*filters.UpdatedAfter) {
			continue
		}
		if filters.UpdatedBefore != nil && page.UpdatedAt.After(*filters.UpdatedBefore) {
			continue
		}
		result = append(result, page)
	}
	return result
}

// sortResult reorders the listing when a sort field is requested. Without
// one the repository's tree order is kept.
func sortResult(pages []*simplecms.Page, filters PageFilters) {
	if filters.SortBy == nil {
		return
	}

	less := func(a, b *simplecms.Page) bool { return a.CreatedAt.Before(b.CreatedAt) }
	switch *filters.SortBy {
	case "updated_at":
		less = func(a, b *simplecms.Page) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case "position":
		less = func(a, b *simplecms.Page) bool { return a.Position < b.Position }
	}

	descending := filters.SortOrder != nil && *filters.SortOrder == "desc"
	sort.SliceStable(pages, func(i, j int) bool {
		if descending {
			return less(pages[j], pages[i])
		}
		return less(pages[i], pages[j])
	})
}

func (s *adminService) siteNames(ctx context.Context) (map[uuid.UUID]string, error) {
	sites, err := s.repo.ListSites(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(sites))
	for _, site := range sites {
		names[site.ID] = site.Name
	}
	return names, nil
}

func containsUUID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func containsString(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}
