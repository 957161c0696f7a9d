package simplecms

import (
	"time"

	"github.com/google/uuid"
)

// TemplateInherit is the sentinel template name meaning "inherit the
// template from the nearest ancestor page". It is accepted anywhere a
// template name is validated, without a registry lookup.
const TemplateInherit = "INHERIT"

// RevisionInitialComment is the comment recorded on the revision snapshot
// taken when a page is created with an initial revision.
const RevisionInitialComment = "Initial version."

// MenuVisibility limits who sees a page in navigation menus.
type MenuVisibility string

// Menu visibility constants (typed).
const (
	VisibilityAll       MenuVisibility = "all"
	VisibilityUsers     MenuVisibility = "users"
	VisibilityAnonymous MenuVisibility = "anonymous"
)

// Valid reports whether v is one of the accepted visibility literals.
func (v MenuVisibility) Valid() bool {
	switch v {
	case VisibilityAll, VisibilityUsers, VisibilityAnonymous:
		return true
	}
	return false
}

// TreePosition selects where a node is inserted relative to a parent or
// target node.
type TreePosition string

// Tree position constants (typed).
const (
	PositionLastChild  TreePosition = "last-child"
	PositionFirstChild TreePosition = "first-child"
	PositionLeft       TreePosition = "left"
	PositionRight      TreePosition = "right"
)

// Valid reports whether p is one of the accepted position literals.
func (p TreePosition) Valid() bool {
	switch p {
	case PositionLastChild, PositionFirstChild, PositionLeft, PositionRight:
		return true
	}
	return false
}

// AccessScope selects which part of a page subtree a permission grant
// applies to.
type AccessScope string

// Access scope constants (typed).
const (
	AccessPage               AccessScope = "page"
	AccessChildren           AccessScope = "children"
	AccessDescendants        AccessScope = "descendants"
	AccessPageAndChildren    AccessScope = "page-and-children"
	AccessPageAndDescendants AccessScope = "page-and-descendants"
)

// Valid reports whether s is one of the accepted access scopes.
func (s AccessScope) Valid() bool {
	switch s {
	case AccessPage, AccessChildren, AccessDescendants,
		AccessPageAndChildren, AccessPageAndDescendants:
		return true
	}
	return false
}

// IncludesPage reports whether the scope covers the granted page itself.
func (s AccessScope) IncludesPage() bool {
	switch s {
	case AccessPage, AccessPageAndChildren, AccessPageAndDescendants:
		return true
	}
	return false
}

// IncludesDescendant reports whether the scope covers a page depth levels
// below the granted page (depth >= 1).
func (s AccessScope) IncludesDescendant(depth int) bool {
	if depth < 1 {
		return false
	}
	switch s {
	case AccessChildren, AccessPageAndChildren:
		return depth == 1
	case AccessDescendants, AccessPageAndDescendants:
		return true
	}
	return false
}

// XFrameOptions controls the X-Frame-Options behavior of a rendered page.
type XFrameOptions string

// X-Frame-Options constants (typed).
const (
	XFrameInherit    XFrameOptions = "inherit"
	XFrameDeny       XFrameOptions = "deny"
	XFrameSameOrigin XFrameOptions = "sameorigin"
	XFrameAllow      XFrameOptions = "allow"
)

// Valid reports whether x is one of the accepted X-Frame-Options literals.
func (x XFrameOptions) Valid() bool {
	switch x {
	case XFrameInherit, XFrameDeny, XFrameSameOrigin, XFrameAllow:
		return true
	}
	return false
}

// Page represents a node in the draft/public dual-tree hierarchy.
//
// Draft and public versions are paired: the draft carries PublicID once
// published, the public copy carries DraftID. Sibling order under a parent
// is tracked by Position.
type Page struct {
	ID                    uuid.UUID      `json:"id"`
	SiteID                uuid.UUID      `json:"site_id"`
	ParentID              *uuid.UUID     `json:"parent_id,omitempty"`
	Position              int            `json:"position"`
	IsDraft               bool           `json:"is_draft"`
	DraftID               *uuid.UUID     `json:"draft_id,omitempty"`
	PublicID              *uuid.UUID     `json:"public_id,omitempty"`
	CreatedBy             string         `json:"created_by,omitempty"`
	ChangedBy             string         `json:"changed_by,omitempty"`
	TemplateName          string         `json:"template_name"`
	PublicationDate       *time.Time     `json:"publication_date,omitempty"`
	PublicationEndDate    *time.Time     `json:"publication_end_date,omitempty"`
	InNavigation          bool           `json:"in_navigation"`
	SoftRoot              bool           `json:"soft_root"`
	ReverseID             string         `json:"reverse_id,omitempty"`
	NavigationExtenders   string         `json:"navigation_extenders,omitempty"`
	ApplicationURLs       string         `json:"application_urls,omitempty"`
	ApplicationNamespace  string         `json:"application_namespace,omitempty"`
	LoginRequired         bool           `json:"login_required"`
	LimitVisibilityInMenu MenuVisibility `json:"limit_visibility_in_menu"`
	XFrameOptions         XFrameOptions  `json:"xframe_options"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

// Title represents the localized title, slug and URL path of a page for
// one language. A page has at most one title per language.
type Title struct {
	ID              uuid.UUID `json:"id"`
	PageID          uuid.UUID `json:"page_id"`
	Language        string    `json:"language"`
	Title           string    `json:"title"`
	MenuTitle       string    `json:"menu_title,omitempty"`
	Slug            string    `json:"slug"`
	Path            string    `json:"path"`
	HasURLOverwrite bool      `json:"has_url_overwrite"`
	Redirect        string    `json:"redirect,omitempty"`
	MetaDescription string    `json:"meta_description,omitempty"`
	Published       bool      `json:"published"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Placeholder represents a named content region attached to a page.
type Placeholder struct {
	ID        uuid.UUID `json:"id"`
	PageID    uuid.UUID `json:"page_id"`
	Slot      string    `json:"slot"`
	CreatedAt time.Time `json:"created_at"`
}

// Plugin represents a typed content block attached to a placeholder,
// positioned within an ordered tree per language. Type-specific field
// values are stored separately and attached as Data when loaded through
// the service.
type Plugin struct {
	ID            uuid.UUID  `json:"id"`
	PlaceholderID uuid.UUID  `json:"placeholder_id"`
	ParentID      *uuid.UUID `json:"parent_id,omitempty"`
	Position      int        `json:"position"`
	Language      string     `json:"language"`
	PluginType    string     `json:"plugin_type"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Data carries the type-specific field values (not always populated).
	Data map[string]interface{} `json:"data,omitempty"`
}

// Site represents a site a page tree belongs to, with its enabled
// language codes.
type Site struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain"`
	Languages []string  `json:"languages"`
	CreatedAt time.Time `json:"created_at"`
}

// LanguageEnabled reports whether the language code is enabled for the site.
func (s *Site) LanguageEnabled(language string) bool {
	for _, l := range s.Languages {
		if l == language {
			return true
		}
	}
	return false
}

// User represents an account that can own grants and author changes.
type User struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	IsStaff     bool      `json:"is_staff"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
}

// PageUserPermissions is the capability-flag set of a page user: what the
// user may do with pages, page users and permission records.
type PageUserPermissions struct {
	CanAddPage              bool `json:"can_add_page"`
	CanViewPage             bool `json:"can_view_page"`
	CanChangePage           bool `json:"can_change_page"`
	CanDeletePage           bool `json:"can_delete_page"`
	CanRecoverPage          bool `json:"can_recover_page"`
	CanAddPageUser          bool `json:"can_add_pageuser"`
	CanChangePageUser       bool `json:"can_change_pageuser"`
	CanDeletePageUser       bool `json:"can_delete_pageuser"`
	CanAddPagePermission    bool `json:"can_add_pagepermission"`
	CanChangePagePermission bool `json:"can_change_pagepermission"`
	CanDeletePagePermission bool `json:"can_delete_pagepermission"`
}

// AllPageUserPermissions returns a flag set with every capability granted.
func AllPageUserPermissions() PageUserPermissions {
	return PageUserPermissions{
		CanAddPage:              true,
		CanViewPage:             true,
		CanChangePage:           true,
		CanDeletePage:           true,
		CanRecoverPage:          true,
		CanAddPageUser:          true,
		CanChangePageUser:       true,
		CanDeletePageUser:       true,
		CanAddPagePermission:    true,
		CanChangePagePermission: true,
		CanDeletePagePermission: true,
	}
}

// PageUser represents a user promoted to CMS editor by another user.
type PageUser struct {
	ID          uuid.UUID           `json:"id"`
	UserID      uuid.UUID           `json:"user_id"`
	CreatedBy   string              `json:"created_by"`
	Permissions PageUserPermissions `json:"permissions"`
	CreatedAt   time.Time           `json:"created_at"`
}

// PermissionFlags is the capability-flag set shared by page-scoped and
// site-wide permission grants.
type PermissionFlags struct {
	CanAdd                    bool `json:"can_add"`
	CanChange                 bool `json:"can_change"`
	CanDelete                 bool `json:"can_delete"`
	CanChangeAdvancedSettings bool `json:"can_change_advanced_settings"`
	CanPublish                bool `json:"can_publish"`
	CanChangePermissions      bool `json:"can_change_permissions"`
	CanMovePage               bool `json:"can_move_page"`
	CanView                   bool `json:"can_view"`
}

// AllPermissionFlags returns a flag set with every capability granted.
func AllPermissionFlags() PermissionFlags {
	return PermissionFlags{
		CanAdd:                    true,
		CanChange:                 true,
		CanDelete:                 true,
		CanChangeAdvancedSettings: true,
		CanPublish:                true,
		CanChangePermissions:      true,
		CanMovePage:               true,
		CanView:                   true,
	}
}

// PagePermission represents a capability grant scoped to a page subtree.
type PagePermission struct {
	ID        uuid.UUID       `json:"id"`
	PageID    uuid.UUID       `json:"page_id"`
	UserID    uuid.UUID       `json:"user_id"`
	GrantOn   AccessScope     `json:"grant_on"`
	Flags     PermissionFlags `json:"flags"`
	CreatedAt time.Time       `json:"created_at"`
}

// GlobalPagePermission represents a site-wide capability grant. It carries
// the recovery flag, which has no page-scoped equivalent.
type GlobalPagePermission struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	SiteIDs        []uuid.UUID     `json:"site_ids"`
	Flags          PermissionFlags `json:"flags"`
	CanRecoverPage bool            `json:"can_recover_page"`
	CreatedAt      time.Time       `json:"created_at"`
}

// AppliesToSite reports whether the grant covers the site. A grant bound
// to no sites covers all of them.
func (g *GlobalPagePermission) AppliesToSite(siteID uuid.UUID) bool {
	if len(g.SiteIDs) == 0 {
		return true
	}
	for _, id := range g.SiteIDs {
		if id == siteID {
			return true
		}
	}
	return false
}

// Revision represents a point-in-time snapshot of a page recorded by the
// revisions collaborator.
type Revision struct {
	ID        uuid.UUID `json:"id"`
	PageID    uuid.UUID `json:"page_id"`
	UserName  string    `json:"user_name,omitempty"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PageFilter defines filtering options for listing pages.
type PageFilter struct {
	SiteID    *uuid.UUID
	ParentID  *uuid.UUID
	IsDraft   *bool
	Published *bool
	ReverseID *string
	Language  *string
}

// PluginFilter defines filtering options for listing plugins within a
// placeholder. RootsOnly restricts the result to plugins without a parent;
// ParentID restricts it to children of one plugin.
type PluginFilter struct {
	PlaceholderID uuid.UUID
	Language      string
	ParentID      *uuid.UUID
	RootsOnly     bool
}
