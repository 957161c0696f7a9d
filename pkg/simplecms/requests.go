package simplecms

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// DefaultCreatedBy is recorded as the page author when a request does not
// name an acting user.
const DefaultCreatedBy = "api"

// CreatePageRequest contains parameters for creating a page together with
// its primary-language title. Zero values fall back to defaults: position
// "last-child", visibility "all", X-Frame-Options "inherit", author
// DefaultCreatedBy, and the service's current site.
type CreatePageRequest struct {
	Title    string
	Template string
	Language string

	MenuTitle        string
	Slug             string
	Apphook          string
	ApphookNamespace string
	Redirect         string
	MetaDescription  string

	// CreatedBy is the acting user name recorded as page author.
	CreatedBy string

	ParentID           *uuid.UUID
	SiteID             *uuid.UUID
	PublicationDate    *time.Time
	PublicationEndDate *time.Time

	InNavigation        bool
	SoftRoot            bool
	ReverseID           string
	NavigationExtenders string
	Published           bool
	LoginRequired       bool

	LimitVisibilityInMenu MenuVisibility
	Position              TreePosition
	XFrameOptions         XFrameOptions

	// OverwriteURL replaces the derived URL path of the primary title.
	OverwriteURL string

	// WithRevision snapshots the page after creation. Requires the
	// revisions collaborator.
	WithRevision bool
}

// Validate checks required fields and literal sets. Empty literals pass;
// the service fills in their defaults before validating.
func (r CreatePageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Template, validation.Required),
		validation.Field(&r.Language, validation.Required),
		validation.Field(&r.Position, validation.In(
			PositionLastChild, PositionFirstChild, PositionLeft, PositionRight)),
		validation.Field(&r.LimitVisibilityInMenu, validation.In(
			VisibilityAll, VisibilityUsers, VisibilityAnonymous)),
		validation.Field(&r.XFrameOptions, validation.In(
			XFrameInherit, XFrameDeny, XFrameSameOrigin, XFrameAllow)),
	)
}

// CreateTitleRequest contains parameters for attaching a localized title
// to an existing page. ParentID participates only in slug derivation when
// Slug is empty.
type CreateTitleRequest struct {
	PageID   uuid.UUID
	Language string
	Title    string

	MenuTitle       string
	Slug            string
	Redirect        string
	MetaDescription string
	ParentID        *uuid.UUID

	// OverwriteURL replaces the derived URL path and marks the title as
	// manually overridden.
	OverwriteURL string

	WithRevision bool
}

// Validate checks required fields.
func (r CreateTitleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PageID, validation.Required),
		validation.Field(&r.Language, validation.Required),
		validation.Field(&r.Title, validation.Required),
	)
}

// AddPluginRequest contains parameters for placing a content block into a
// placeholder. Position defaults to "last-child". TargetID, when set,
// positions the plugin relative to an existing plugin instead of the
// placeholder's root level.
type AddPluginRequest struct {
	PlaceholderID uuid.UUID
	PluginType    string
	Language      string
	Position      TreePosition
	TargetID      *uuid.UUID

	// Data carries the type-specific field values of the plugin.
	Data map[string]interface{}
}

// Validate checks required fields and the position literal.
func (r AddPluginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PlaceholderID, validation.Required),
		validation.Field(&r.PluginType, validation.Required),
		validation.Field(&r.Language, validation.Required),
		validation.Field(&r.Position, validation.In(
			PositionLastChild, PositionFirstChild, PositionLeft, PositionRight)),
	)
}

// CreatePageUserRequest contains parameters for promoting a user to a CMS
// editor. A nil Permissions grants the full default set, matching the
// behavior of granting every capability unless narrowed explicitly.
type CreatePageUserRequest struct {
	// CreatedByID is the acting user performing the promotion.
	CreatedByID uuid.UUID
	UserID      uuid.UUID

	Permissions *PageUserPermissions

	// GrantAll grants every capability regardless of Permissions.
	GrantAll bool
}

// Validate checks required fields.
func (r CreatePageUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CreatedByID, validation.Required),
		validation.Field(&r.UserID, validation.Required),
	)
}

// AssignUserToPageRequest contains parameters for granting a user
// capabilities on a page subtree, and optionally site-wide. GrantOn
// defaults to "page-and-descendants". CanRecoverPage applies to the
// site-wide grant only and defaults to true when nil.
type AssignUserToPageRequest struct {
	PageID  uuid.UUID
	UserID  uuid.UUID
	GrantOn AccessScope

	Flags          PermissionFlags
	CanRecoverPage *bool

	// GrantAll grants every capability. Ignored when GlobalPermission is
	// set, so site-wide grants are always narrowed explicitly.
	GrantAll bool

	// GlobalPermission additionally creates a site-wide grant bound to the
	// service's current site.
	GlobalPermission bool
}

// Validate checks required fields and the access scope literal.
func (r AssignUserToPageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PageID, validation.Required),
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.GrantOn, validation.In(
			AccessPage, AccessChildren, AccessDescendants,
			AccessPageAndChildren, AccessPageAndDescendants)),
	)
}

// PublishPagesRequest contains parameters for bulk publishing drafts.
// The zero value publishes every language of every draft that is already
// published somewhere, across all sites.
type PublishPagesRequest struct {
	// IncludeUnpublished widens the set to drafts never published before.
	IncludeUnpublished bool

	// Language restricts publishing to one language. Empty means every
	// language a draft has a title for.
	Language string

	// SiteID restricts the set to one site's drafts.
	SiteID *uuid.UUID
}

// CreateSiteRequest contains parameters for registering a site.
type CreateSiteRequest struct {
	Name      string
	Domain    string
	Languages []string
}

// Validate checks required fields.
func (r CreateSiteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Languages, validation.Required, validation.Length(1, 0)),
	)
}

// CreateUserRequest contains parameters for registering a user account.
type CreateUserRequest struct {
	Username    string
	Email       string
	IsStaff     bool
	IsActive    bool
	IsSuperuser bool
}

// Validate checks required fields.
func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
	)
}
