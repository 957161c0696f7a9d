package simplecms

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// StandardChecker is the default PermissionChecker. It walks superuser
// standing, site-wide grants, then page-subtree grants along the page's
// ancestor chain, honoring each grant's access scope.
type StandardChecker struct {
	repository Repository
}

// NewStandardChecker creates a checker backed by the given repository.
func NewStandardChecker(repo Repository) *StandardChecker {
	return &StandardChecker{repository: repo}
}

var _ PermissionChecker = (*StandardChecker)(nil)

// CanChangePage reports whether the user may change the page. A nil page
// restricts the check to site-wide capability.
func (c *StandardChecker) CanChangePage(ctx context.Context, user *User, page *Page) (bool, error) {
	return c.hasCapability(ctx, user, page, func(f PermissionFlags) bool { return f.CanChange })
}

// CanPublishPage reports whether the user may publish the page.
func (c *StandardChecker) CanPublishPage(ctx context.Context, user *User, page *Page) (bool, error) {
	return c.hasCapability(ctx, user, page, func(f PermissionFlags) bool { return f.CanPublish })
}

func (c *StandardChecker) hasCapability(ctx context.Context, user *User, page *Page, selected func(PermissionFlags) bool) (bool, error) {
	if user == nil {
		return false, nil
	}
	if user.IsSuperuser {
		return true, nil
	}

	globals, err := c.repository.ListGlobalPagePermissions(ctx, user.ID)
	if err != nil {
		return false, fmt.Errorf("failed to list global permissions: %w", err)
	}
	for _, grant := range globals {
		if page != nil && !grant.AppliesToSite(page.SiteID) {
			continue
		}
		if selected(grant.Flags) {
			return true, nil
		}
	}

	if page == nil {
		return false, nil
	}

	grants, err := c.repository.ListPagePermissions(ctx, user.ID)
	if err != nil {
		return false, fmt.Errorf("failed to list page permissions: %w", err)
	}
	if len(grants) == 0 {
		return false, nil
	}

	// Depth of the page below each potential grant anchor: 0 for the page
	// itself, 1 for its parent, and so on up the chain.
	ancestors, err := c.repository.ListAncestors(ctx, page.ID)
	if err != nil {
		return false, fmt.Errorf("failed to list ancestors: %w", err)
	}
	depth := make(map[uuid.UUID]int, len(ancestors)+1)
	depth[page.ID] = 0
	for i, ancestor := range ancestors {
		depth[ancestor.ID] = i + 1
	}

	for _, grant := range grants {
		d, anchored := depth[grant.PageID]
		if !anchored || !selected(grant.Flags) {
			continue
		}
		if d == 0 && grant.GrantOn.IncludesPage() {
			return true, nil
		}
		if d > 0 && grant.GrantOn.IncludesDescendant(d) {
			return true, nil
		}
	}
	return false, nil
}
