package simplecms

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for content-tree persistence: pages,
// titles, placeholders, plugins, sites, users, permission grants and
// revision records. The publish operation lives here because it is a
// store-level duplication of draft rows into their public counterparts.
type Repository interface {
	// Page operations. CreatePage appends the page to the end of its
	// sibling set and records the assigned position on the struct.
	CreatePage(ctx context.Context, page *Page) error
	GetPage(ctx context.Context, id uuid.UUID) (*Page, error)
	UpdatePage(ctx context.Context, page *Page) error
	ListPages(ctx context.Context, filter PageFilter) ([]*Page, error)
	CountPages(ctx context.Context, filter PageFilter) (int64, error)
	// MovePage relocates a page relative to a target page. Sibling
	// positions in both the old and new parent sets stay contiguous.
	MovePage(ctx context.Context, pageID, targetID uuid.UUID, position TreePosition) error
	// ListAncestors returns the chain of ancestor pages, nearest parent first.
	ListAncestors(ctx context.Context, pageID uuid.UUID) ([]*Page, error)

	// Title operations. ListTitles returns the page's titles in creation
	// order, which bulk publishing relies on for language selection.
	CreateTitle(ctx context.Context, title *Title) error
	GetTitle(ctx context.Context, pageID uuid.UUID, language string) (*Title, error)
	UpdateTitle(ctx context.Context, title *Title) error
	ListTitles(ctx context.Context, pageID uuid.UUID) ([]*Title, error)
	// ListSiblingSlugs returns the slugs used by titles in the given
	// language on draft pages sharing the parent (nil for root pages).
	ListSiblingSlugs(ctx context.Context, parentID *uuid.UUID, language string) ([]string, error)

	// Placeholder operations
	CreatePlaceholder(ctx context.Context, placeholder *Placeholder) error
	GetPlaceholder(ctx context.Context, id uuid.UUID) (*Placeholder, error)
	ListPlaceholders(ctx context.Context, pageID uuid.UUID) ([]*Placeholder, error)

	// Plugin operations. CreatePlugin inserts a plugin at its stated
	// position without touching siblings (used by copies and publishing).
	// InsertPluginAt shifts every sibling at or after the stated position
	// by one and inserts, atomically with respect to other inserts.
	// ListPlugins returns plugins in tree order: parents before children,
	// siblings by position.
	CreatePlugin(ctx context.Context, plugin *Plugin) error
	GetPlugin(ctx context.Context, id uuid.UUID) (*Plugin, error)
	InsertPluginAt(ctx context.Context, plugin *Plugin) error
	ListPlugins(ctx context.Context, filter PluginFilter) ([]*Plugin, error)
	CountPlugins(ctx context.Context, filter PluginFilter) (int, error)
	SetPluginData(ctx context.Context, pluginID uuid.UUID, data map[string]interface{}) error
	// GetPluginData returns an empty map, not an error, for a plugin
	// that exists but has no stored field values.
	GetPluginData(ctx context.Context, pluginID uuid.UUID) (map[string]interface{}, error)

	// Site operations
	CreateSite(ctx context.Context, site *Site) error
	GetSite(ctx context.Context, id uuid.UUID) (*Site, error)
	ListSites(ctx context.Context) ([]*Site, error)

	// User operations
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
	CreatePageUser(ctx context.Context, pageUser *PageUser) error
	GetPageUser(ctx context.Context, userID uuid.UUID) (*PageUser, error)

	// Permission operations
	CreatePagePermission(ctx context.Context, permission *PagePermission) error
	CreateGlobalPagePermission(ctx context.Context, permission *GlobalPagePermission) error
	ListPagePermissions(ctx context.Context, userID uuid.UUID) ([]*PagePermission, error)
	ListGlobalPagePermissions(ctx context.Context, userID uuid.UUID) ([]*GlobalPagePermission, error)

	// PublishPage promotes one language of a draft page into its public
	// counterpart: pairs the pages, copies the title and the language's
	// placeholder content, and marks both titles published. It reports
	// false without error when the language cannot be published (no title
	// in that language, or an unpublished ancestor). A non-empty changedBy
	// is recorded on both pages for authorship attribution.
	PublishPage(ctx context.Context, pageID uuid.UUID, language, changedBy string) (bool, error)

	// Revision operations
	CreateRevision(ctx context.Context, revision *Revision) error
	ListRevisions(ctx context.Context, pageID uuid.UUID) ([]*Revision, error)
}

// EventSink defines the interface for event handling
type EventSink interface {
	// PageCreated is fired when a page is created
	PageCreated(ctx context.Context, page *Page) error

	// PagePublished is fired when a page language is published
	PagePublished(ctx context.Context, page *Page, language string) error

	// PluginAdded is fired when a plugin is placed into a placeholder
	PluginAdded(ctx context.Context, plugin *Plugin) error

	// PluginsCopied is fired when plugins are copied to another language
	PluginsCopied(ctx context.Context, pageID uuid.UUID, targetLanguage string, count int) error
}

// PermissionChecker evaluates whether a user holds a capability on a page.
// The default implementation walks superuser status, global grants, then
// page-subtree grants honoring their access scopes.
type PermissionChecker interface {
	CanChangePage(ctx context.Context, user *User, page *Page) (bool, error)
	CanPublishPage(ctx context.Context, user *User, page *Page) (bool, error)
}

// LocaleActivator receives the language a bulk publish run settles on, so
// dependent rendering can switch to a consistent locale context. The
// default implementation does nothing.
type LocaleActivator interface {
	Activate(ctx context.Context, language string)
}

// Revisions defines the optional snapshot collaborator. Operations that
// request a snapshot fail fast with ErrRevisionsNotConfigured when the
// service has no Revisions configured.
type Revisions interface {
	Snapshot(ctx context.Context, pageID uuid.UUID, userName, comment string) (*Revision, error)
}
