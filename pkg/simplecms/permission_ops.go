package simplecms

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreatePageUser promotes an existing user to a CMS editor with the
// requested capability set, marking the account staff and active. A nil
// Permissions grants the full default set; GrantAll forces it.
func (s *service) CreatePageUser(ctx context.Context, req CreatePageUserRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	creator, err := s.repository.GetUser(ctx, req.CreatedByID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creating user: %w", err)
	}
	user, err := s.repository.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	permissions := AllPageUserPermissions()
	if !req.GrantAll && req.Permissions != nil {
		permissions = *req.Permissions
	}

	user.IsStaff = true
	user.IsActive = true
	if err := s.repository.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	pageUser := &PageUser{
		ID:          uuid.New(),
		UserID:      user.ID,
		CreatedBy:   creator.Username,
		Permissions: permissions,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repository.CreatePageUser(ctx, pageUser); err != nil {
		return nil, fmt.Errorf("failed to create page user: %w", err)
	}

	return user, nil
}

// AssignUserToPage grants a user capabilities on a page subtree and,
// when requested, site-wide. GrantAll expands the page grant to every
// capability but is ignored for site-wide grants, which must be narrowed
// explicitly. The site-wide grant is bound to the service's current site,
// falling back to the page's site.
func (s *service) AssignUserToPage(ctx context.Context, req AssignUserToPageRequest) (*PagePermission, *GlobalPagePermission, error) {
	if req.GrantOn == "" {
		req.GrantOn = AccessPageAndDescendants
	}
	if err := req.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	page, err := s.repository.GetPage(ctx, req.PageID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load page: %w", err)
	}
	user, err := s.repository.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}

	flags := req.Flags
	if req.GrantAll && !req.GlobalPermission {
		flags = AllPermissionFlags()
	}

	now := time.Now().UTC()
	pagePermission := &PagePermission{
		ID:        uuid.New(),
		PageID:    page.ID,
		UserID:    user.ID,
		GrantOn:   req.GrantOn,
		Flags:     flags,
		CreatedAt: now,
	}
	if err := s.repository.CreatePagePermission(ctx, pagePermission); err != nil {
		return nil, nil, &PageError{PageID: page.ID, Op: "assign_user", Err: err}
	}

	var globalPermission *GlobalPagePermission
	if req.GlobalPermission {
		canRecover := true
		if req.CanRecoverPage != nil {
			canRecover = *req.CanRecoverPage
		}
		siteID := s.currentSiteID
		if siteID == uuid.Nil {
			siteID = page.SiteID
		}

		globalPermission = &GlobalPagePermission{
			ID:             uuid.New(),
			UserID:         user.ID,
			SiteIDs:        []uuid.UUID{siteID},
			Flags:          flags,
			CanRecoverPage: canRecover,
			CreatedAt:      now,
		}
		if err := s.repository.CreateGlobalPagePermission(ctx, globalPermission); err != nil {
			return nil, nil, &PageError{PageID: page.ID, Op: "assign_user_global", Err: err}
		}
	}

	return pagePermission, globalPermission, nil
}

// CanChangePage reports whether the user may change the page, checking
// superuser standing, site-wide grants, then page-subtree grants. A nil
// page ID checks site-wide capability only. With permission checking
// disabled, staff standing is enough.
func (s *service) CanChangePage(ctx context.Context, userID, pageID uuid.UUID) (bool, error) {
	user, err := s.repository.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}

	if !s.permissionsEnabled {
		return user.IsStaff || user.IsSuperuser, nil
	}

	var page *Page
	if pageID != uuid.Nil {
		page, err = s.repository.GetPage(ctx, pageID)
		if err != nil {
			return false, err
		}
	}

	return s.permissions.CanChangePage(ctx, user, page)
}
