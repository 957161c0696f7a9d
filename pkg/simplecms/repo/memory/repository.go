package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Repository implements simplecms.Repository using in-memory storage
type Repository struct {
	mu                 sync.RWMutex
	pages              map[uuid.UUID]*simplecms.Page
	titles             map[uuid.UUID]*simplecms.Title
	titlesByPage       map[uuid.UUID][]uuid.UUID // page_id -> []title_id, creation order
	placeholders       map[uuid.UUID]*simplecms.Placeholder
	placeholdersByPage map[uuid.UUID][]uuid.UUID // page_id -> []placeholder_id, creation order
	plugins            map[uuid.UUID]*simplecms.Plugin
	pluginData         map[uuid.UUID]map[string]interface{}
	sites              map[uuid.UUID]*simplecms.Site
	users              map[uuid.UUID]*simplecms.User
	pageUsers          map[uuid.UUID]*simplecms.PageUser // user_id -> page user record
	pagePermissions    []*simplecms.PagePermission
	globalPermissions  []*simplecms.GlobalPagePermission
	revisions          map[uuid.UUID][]*simplecms.Revision
}

// New creates a new in-memory repository
func New() simplecms.Repository {
	return &Repository{
		pages:              make(map[uuid.UUID]*simplecms.Page),
		titles:             make(map[uuid.UUID]*simplecms.Title),
		titlesByPage:       make(map[uuid.UUID][]uuid.UUID),
		placeholders:       make(map[uuid.UUID]*simplecms.Placeholder),
		placeholdersByPage: make(map[uuid.UUID][]uuid.UUID),
		plugins:            make(map[uuid.UUID]*simplecms.Plugin),
		pluginData:         make(map[uuid.UUID]map[string]interface{}),
		sites:              make(map[uuid.UUID]*simplecms.Site),
		users:              make(map[uuid.UUID]*simplecms.User),
		pageUsers:          make(map[uuid.UUID]*simplecms.PageUser),
		revisions:          make(map[uuid.UUID][]*simplecms.Revision),
	}
}

// Page operations

func (r *Repository) CreatePage(ctx context.Context, page *simplecms.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pageCopy := clonePage(page)
	// New pages join the end of their sibling set.
	pageCopy.Position = len(r.siblingsLocked(pageCopy.SiteID, pageCopy.IsDraft, pageCopy.ParentID))
	r.pages[page.ID] = pageCopy
	page.Position = pageCopy.Position

	return nil
}

func (r *Repository) GetPage(ctx context.Context, id uuid.UUID) (*simplecms.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	page, exists := r.pages[id]
	if !exists {
		return nil, simplecms.ErrPageNotFound
	}
	return clonePage(page), nil
}

func (r *Repository) UpdatePage(ctx context.Context, page *simplecms.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pages[page.ID]; !exists {
		return simplecms.ErrPageNotFound
	}
	r.pages[page.ID] = clonePage(page)

	return nil
}

func (r *Repository) ListPages(ctx context.Context, filter simplecms.PageFilter) ([]*simplecms.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*simplecms.Page
	for _, page := range r.treeOrderedPagesLocked() {
		if r.matchesPageLocked(page, filter) {
			result = append(result, clonePage(page))
		}
	}
	return result, nil
}

func (r *Repository) CountPages(ctx context.Context, filter simplecms.PageFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, page := range r.pages {
		if r.matchesPageLocked(page, filter) {
			count++
		}
	}
	return count, nil
}

func (r *Repository) MovePage(ctx context.Context, pageID, targetID uuid.UUID, position simplecms.TreePosition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	page, exists := r.pages[pageID]
	if !exists {
		return simplecms.ErrPageNotFound
	}
	target, exists := r.pages[targetID]
	if !exists {
		return simplecms.ErrPageNotFound
	}
	if !position.Valid() {
		return fmt.Errorf("invalid tree position %q", position)
	}
	for t := target; t != nil; t = r.parentLocked(t) {
		if t.ID == page.ID {
			return fmt.Errorf("cannot move page %s below itself", pageID)
		}
	}

	// Close the gap in the old sibling set.
	old := r.siblingsLocked(page.SiteID, page.IsDraft, page.ParentID)
	renumber(removePage(old, page.ID))

	var newParent *uuid.UUID
	switch position {
	case simplecms.PositionLastChild, simplecms.PositionFirstChild:
		newParent = uuidPtr(target.ID)
	case simplecms.PositionLeft, simplecms.PositionRight:
		newParent = cloneUUIDPtr(target.ParentID)
	}

	siblings := removePage(r.siblingsLocked(target.SiteID, page.IsDraft, newParent), page.ID)
	idx := len(siblings)
	switch position {
	case simplecms.PositionFirstChild:
		idx = 0
	case simplecms.PositionLeft:
		idx = indexOfPage(siblings, target.ID)
	case simplecms.PositionRight:
		idx = indexOfPage(siblings, target.ID) + 1
	}

	siblings = append(siblings, nil)
	copy(siblings[idx+1:], siblings[idx:])
	siblings[idx] = page
	renumber(siblings)

	page.ParentID = newParent
	page.SiteID = target.SiteID
	page.UpdatedAt = time.Now().UTC()

	return nil
}

func (r *Repository) ListAncestors(ctx context.Context, pageID uuid.UUID) ([]*simplecms.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	page, exists := r.pages[pageID]
	if !exists {
		return nil, simplecms.ErrPageNotFound
	}

	var result []*simplecms.Page
	for p := r.parentLocked(page); p != nil; p = r.parentLocked(p) {
		result = append(result, clonePage(p))
	}
	return result, nil
}

// Title operations

func (r *Repository) CreateTitle(ctx context.Context, title *simplecms.Title) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pages[title.PageID]; !exists {
		return simplecms.ErrPageNotFound
	}
	for _, id := range r.titlesByPage[title.PageID] {
		if r.titles[id].Language == title.Language {
			return fmt.Errorf("page %s already has a title in language %q", title.PageID, title.Language)
		}
	}

	titleCopy := *title
	r.titles[title.ID] = &titleCopy
	r.titlesByPage[title.PageID] = append(r.titlesByPage[title.PageID], title.ID)

	return nil
}

func (r *Repository) GetTitle(ctx context.Context, pageID uuid.UUID, language string) (*simplecms.Title, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	title := r.titleLocked(pageID, language)
	if title == nil {
		return nil, simplecms.ErrTitleNotFound
	}
	titleCopy := *title
	return &titleCopy, nil
}

func (r *Repository) UpdateTitle(ctx context.Context, title *simplecms.Title) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.titles[title.ID]; !exists {
		return simplecms.ErrTitleNotFound
	}
	titleCopy := *title
	r.titles[title.ID] = &titleCopy

	return nil
}

func (r *Repository) ListTitles(ctx context.Context, pageID uuid.UUID) ([]*simplecms.Title, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids, exists := r.titlesByPage[pageID]
	if !exists {
		return []*simplecms.Title{}, nil
	}

	result := make([]*simplecms.Title, 0, len(ids))
	for _, id := range ids {
		titleCopy := *r.titles[id]
		result = append(result, &titleCopy)
	}
	return result, nil
}

func (r *Repository) ListSiblingSlugs(ctx context.Context, parentID *uuid.UUID, language string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []string
	for _, page := range r.pages {
		if !page.IsDraft || !sameParent(page.ParentID, parentID) {
			continue
		}
		if title := r.titleLocked(page.ID, language); title != nil {
			result = append(result, title.Slug)
		}
	}
	sort.Strings(result)
	return result, nil
}

// Placeholder operations

func (r *Repository) CreatePlaceholder(ctx context.Context, placeholder *simplecms.Placeholder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pages[placeholder.PageID]; !exists {
		return simplecms.ErrPageNotFound
	}

	placeholderCopy := *placeholder
	r.placeholders[placeholder.ID] = &placeholderCopy
	r.placeholdersByPage[placeholder.PageID] = append(r.placeholdersByPage[placeholder.PageID], placeholder.ID)

	return nil
}

func (r *Repository) GetPlaceholder(ctx context.Context, id uuid.UUID) (*simplecms.Placeholder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	placeholder, exists := r.placeholders[id]
	if !exists {
		return nil, simplecms.ErrPlaceholderNotFound
	}
	placeholderCopy := *placeholder
	return &placeholderCopy, nil
}

func (r *Repository) ListPlaceholders(ctx context.Context, pageID uuid.UUID) ([]*simplecms.Placeholder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids, exists := r.placeholdersByPage[pageID]
	if !exists {
		return []*simplecms.Placeholder{}, nil
	}

	result := make([]*simplecms.Placeholder, 0, len(ids))
	for _, id := range ids {
		placeholderCopy := *r.placeholders[id]
		result = append(result, &placeholderCopy)
	}
	return result, nil
}

// Plugin operations

func (r *Repository) CreatePlugin(ctx context.Context, plugin *simplecms.Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.storePluginLocked(plugin)
}

func (r *Repository) GetPlugin(ctx context.Context, id uuid.UUID) (*simplecms.Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plugin, exists := r.plugins[id]
	if !exists {
		return nil, simplecms.ErrPluginNotFound
	}
	return clonePlugin(plugin), nil
}

func (r *Repository) InsertPluginAt(ctx context.Context, plugin *simplecms.Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Shift and insert under one lock so concurrent inserts cannot
	// interleave and leave duplicate positions behind.
	for _, sibling := range r.plugins {
		if sibling.PlaceholderID != plugin.PlaceholderID || sibling.Language != plugin.Language {
			continue
		}
		if !sameParent(sibling.ParentID, plugin.ParentID) {
			continue
		}
		if sibling.Position >= plugin.Position {
			sibling.Position++
		}
	}
	return r.storePluginLocked(plugin)
}

func (r *Repository) ListPlugins(ctx context.Context, filter simplecms.PluginFilter) ([]*simplecms.Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := r.listPluginsLocked(filter)
	clones := make([]*simplecms.Plugin, 0, len(result))
	for _, plugin := range result {
		clones = append(clones, clonePlugin(plugin))
	}
	return clones, nil
}

func (r *Repository) CountPlugins(ctx context.Context, filter simplecms.PluginFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.listPluginsLocked(filter)), nil
}

func (r *Repository) SetPluginData(ctx context.Context, pluginID uuid.UUID, data map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[pluginID]; !exists {
		return simplecms.ErrPluginNotFound
	}
	r.pluginData[pluginID] = cloneData(data)

	return nil
}

func (r *Repository) GetPluginData(ctx context.Context, pluginID uuid.UUID) (map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.plugins[pluginID]; !exists {
		return nil, simplecms.ErrPluginNotFound
	}
	data, exists := r.pluginData[pluginID]
	if !exists {
		return map[string]interface{}{}, nil
	}
	return cloneData(data), nil
}

// Site operations

func (r *Repository) CreateSite(ctx context.Context, site *simplecms.Site) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	siteCopy := *site
	siteCopy.Languages = append([]string(nil), site.Languages...)
	r.sites[site.ID] = &siteCopy

	return nil
}

func (r *Repository) GetSite(ctx context.Context, id uuid.UUID) (*simplecms.Site, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	site, exists := r.sites[id]
	if !exists {
		return nil, simplecms.ErrSiteNotFound
	}
	siteCopy := *site
	siteCopy.Languages = append([]string(nil), site.Languages...)
	return &siteCopy, nil
}

func (r *Repository) ListSites(ctx context.Context) ([]*simplecms.Site, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*simplecms.Site, 0, len(r.sites))
	for _, site := range r.sites {
		siteCopy := *site
		siteCopy.Languages = append([]string(nil), site.Languages...)
		result = append(result, &siteCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *simplecms.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	userCopy := *user
	r.users[user.ID] = &userCopy

	return nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*simplecms.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, simplecms.ErrUserNotFound
	}
	userCopy := *user
	return &userCopy, nil
}

func (r *Repository) UpdateUser(ctx context.Context, user *simplecms.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID]; !exists {
		return simplecms.ErrUserNotFound
	}
	userCopy := *user
	r.users[user.ID] = &userCopy

	return nil
}

func (r *Repository) CreatePageUser(ctx context.Context, pageUser *simplecms.PageUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[pageUser.UserID]; !exists {
		return simplecms.ErrUserNotFound
	}
	pageUserCopy := *pageUser
	r.pageUsers[pageUser.UserID] = &pageUserCopy

	return nil
}

func (r *Repository) GetPageUser(ctx context.Context, userID uuid.UUID) (*simplecms.PageUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pageUser, exists := r.pageUsers[userID]
	if !exists {
		return nil, simplecms.ErrUserNotFound
	}
	pageUserCopy := *pageUser
	return &pageUserCopy, nil
}

// Permission operations

func (r *Repository) CreatePagePermission(ctx context.Context, permission *simplecms.PagePermission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pages[permission.PageID]; !exists {
		return simplecms.ErrPageNotFound
	}
	if _, exists := r.users[permission.UserID]; !exists {
		return simplecms.ErrUserNotFound
	}
	permissionCopy := *permission
	r.pagePermissions = append(r.pagePermissions, &permissionCopy)

	return nil
}

func (r *Repository) CreateGlobalPagePermission(ctx context.Context, permission *simplecms.GlobalPagePermission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[permission.UserID]; !exists {
		return simplecms.ErrUserNotFound
	}
	permissionCopy := *permission
	permissionCopy.SiteIDs = append([]uuid.UUID(nil), permission.SiteIDs...)
	r.globalPermissions = append(r.globalPermissions, &permissionCopy)

	return nil
}

func (r *Repository) ListPagePermissions(ctx context.Context, userID uuid.UUID) ([]*simplecms.PagePermission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*simplecms.PagePermission
	for _, permission := range r.pagePermissions {
		if permission.UserID == userID {
			permissionCopy := *permission
			result = append(result, &permissionCopy)
		}
	}
	return result, nil
}

func (r *Repository) ListGlobalPagePermissions(ctx context.Context, userID uuid.UUID) ([]*simplecms.GlobalPagePermission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*simplecms.GlobalPagePermission
	for _, permission := range r.globalPermissions {
		if permission.UserID == userID {
			permissionCopy := *permission
			permissionCopy.SiteIDs = append([]uuid.UUID(nil), permission.SiteIDs...)
			result = append(result, &permissionCopy)
		}
	}
	return result, nil
}

// Publishing

func (r *Repository) PublishPage(ctx context.Context, pageID uuid.UUID, language, changedBy string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	draft, exists := r.pages[pageID]
	if !exists {
		return false, simplecms.ErrPageNotFound
	}
	if !draft.IsDraft {
		return false, fmt.Errorf("page %s is not a draft", pageID)
	}

	draftTitle := r.titleLocked(draft.ID, language)
	if draftTitle == nil {
		return false, nil
	}
	// A page cannot go public below an unpublished ancestor.
	for p := r.parentLocked(draft); p != nil; p = r.parentLocked(p) {
		if p.PublicID == nil {
			return false, nil
		}
	}

	now := time.Now().UTC()

	var public *simplecms.Page
	if draft.PublicID != nil {
		public = r.pages[*draft.PublicID]
	}
	if public == nil {
		public = &simplecms.Page{
			ID:        uuid.New(),
			IsDraft:   false,
			DraftID:   uuidPtr(draft.ID),
			CreatedBy: draft.CreatedBy,
			CreatedAt: draft.CreatedAt,
		}
		r.pages[public.ID] = public
		draft.PublicID = uuidPtr(public.ID)
	}

	if draft.PublicationDate == nil {
		draft.PublicationDate = &now
	}
	if changedBy != "" {
		draft.ChangedBy = changedBy
	}
	draft.UpdatedAt = now

	public.SiteID = draft.SiteID
	public.ParentID = r.publicParentLocked(draft)
	public.Position = draft.Position
	public.ChangedBy = draft.ChangedBy
	public.TemplateName = draft.TemplateName
	public.PublicationDate = cloneTimePtr(draft.PublicationDate)
	public.PublicationEndDate = cloneTimePtr(draft.PublicationEndDate)
	public.InNavigation = draft.InNavigation
	public.SoftRoot = draft.SoftRoot
	public.ReverseID = draft.ReverseID
	public.NavigationExtenders = draft.NavigationExtenders
	public.ApplicationURLs = draft.ApplicationURLs
	public.ApplicationNamespace = draft.ApplicationNamespace
	public.LoginRequired = draft.LoginRequired
	public.LimitVisibilityInMenu = draft.LimitVisibilityInMenu
	public.XFrameOptions = draft.XFrameOptions
	public.UpdatedAt = now

	draftTitle.Published = true
	draftTitle.UpdatedAt = now
	r.copyTitleLocked(draftTitle, public.ID, now)
	r.copyLanguageContentLocked(draft.ID, public.ID, language, now)

	return true, nil
}

// Revision operations

func (r *Repository) CreateRevision(ctx context.Context, revision *simplecms.Revision) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pages[revision.PageID]; !exists {
		return simplecms.ErrPageNotFound
	}
	revisionCopy := *revision
	r.revisions[revision.PageID] = append(r.revisions[revision.PageID], &revisionCopy)

	return nil
}

func (r *Repository) ListRevisions(ctx context.Context, pageID uuid.UUID) ([]*simplecms.Revision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records, exists := r.revisions[pageID]
	if !exists {
		return []*simplecms.Revision{}, nil
	}
	result := make([]*simplecms.Revision, 0, len(records))
	for _, revision := range records {
		revisionCopy := *revision
		result = append(result, &revisionCopy)
	}
	return result, nil
}

// Internal helpers. All assume the caller holds the appropriate lock.

func (r *Repository) parentLocked(page *simplecms.Page) *simplecms.Page {
	if page.ParentID == nil {
		return nil
	}
	return r.pages[*page.ParentID]
}

// publicParentLocked maps the draft's parent to its public counterpart.
func (r *Repository) publicParentLocked(draft *simplecms.Page) *uuid.UUID {
	if draft.ParentID == nil {
		return nil
	}
	parent := r.pages[*draft.ParentID]
	if parent == nil || parent.PublicID == nil {
		return nil
	}
	return cloneUUIDPtr(parent.PublicID)
}

func (r *Repository) titleLocked(pageID uuid.UUID, language string) *simplecms.Title {
	for _, id := range r.titlesByPage[pageID] {
		if title := r.titles[id]; title.Language == language {
			return title
		}
	}
	return nil
}

// copyTitleLocked upserts the public counterpart of a draft title.
func (r *Repository) copyTitleLocked(draftTitle *simplecms.Title, publicPageID uuid.UUID, now time.Time) {
	title := r.titleLocked(publicPageID, draftTitle.Language)
	if title == nil {
		title = &simplecms.Title{
			ID:        uuid.New(),
			PageID:    publicPageID,
			Language:  draftTitle.Language,
			CreatedAt: now,
		}
		r.titles[title.ID] = title
		r.titlesByPage[publicPageID] = append(r.titlesByPage[publicPageID], title.ID)
	}
	title.Title = draftTitle.Title
	title.MenuTitle = draftTitle.MenuTitle
	title.Slug = draftTitle.Slug
	title.Path = draftTitle.Path
	title.HasURLOverwrite = draftTitle.HasURLOverwrite
	title.Redirect = draftTitle.Redirect
	title.MetaDescription = draftTitle.MetaDescription
	title.Published = true
	title.UpdatedAt = now
}

// copyLanguageContentLocked replaces the public page's plugin content in one
// language with a copy of the draft's, placeholder by placeholder.
func (r *Repository) copyLanguageContentLocked(draftPageID, publicPageID uuid.UUID, language string, now time.Time) {
	for _, id := range r.placeholdersByPage[draftPageID] {
		draftPlaceholder := r.placeholders[id]

		var publicPlaceholder *simplecms.Placeholder
		for _, pid := range r.placeholdersByPage[publicPageID] {
			if r.placeholders[pid].Slot == draftPlaceholder.Slot {
				publicPlaceholder = r.placeholders[pid]
				break
			}
		}
		if publicPlaceholder == nil {
			publicPlaceholder = &simplecms.Placeholder{
				ID:        uuid.New(),
				PageID:    publicPageID,
				Slot:      draftPlaceholder.Slot,
				CreatedAt: now,
			}
			r.placeholders[publicPlaceholder.ID] = publicPlaceholder
			r.placeholdersByPage[publicPageID] = append(r.placeholdersByPage[publicPageID], publicPlaceholder.ID)
		}

		for pluginID, plugin := range r.plugins {
			if plugin.PlaceholderID == publicPlaceholder.ID && plugin.Language == language {
				delete(r.plugins, pluginID)
				delete(r.pluginData, pluginID)
			}
		}

		source := r.listPluginsLocked(simplecms.PluginFilter{
			PlaceholderID: draftPlaceholder.ID,
			Language:      language,
		})
		idMap := make(map[uuid.UUID]uuid.UUID, len(source))
		for _, plugin := range source {
			copied := clonePlugin(plugin)
			copied.ID = uuid.New()
			copied.PlaceholderID = publicPlaceholder.ID
			if plugin.ParentID != nil {
				mapped := idMap[*plugin.ParentID]
				copied.ParentID = &mapped
			}
			copied.CreatedAt = now
			copied.UpdatedAt = now
			idMap[plugin.ID] = copied.ID
			r.plugins[copied.ID] = copied
			if data, ok := r.pluginData[plugin.ID]; ok {
				r.pluginData[copied.ID] = cloneData(data)
			}
		}
	}
}

func (r *Repository) storePluginLocked(plugin *simplecms.Plugin) error {
	if _, exists := r.placeholders[plugin.PlaceholderID]; !exists {
		return simplecms.ErrPlaceholderNotFound
	}
	if plugin.ParentID != nil {
		if _, exists := r.plugins[*plugin.ParentID]; !exists {
			return simplecms.ErrPluginNotFound
		}
	}
	r.plugins[plugin.ID] = clonePlugin(plugin)
	return nil
}

// listPluginsLocked returns plugins matching the filter. With no parent
// constraint the whole tree comes back in tree order: parents before
// children, siblings by position.
func (r *Repository) listPluginsLocked(filter simplecms.PluginFilter) []*simplecms.Plugin {
	var all []*simplecms.Plugin
	for _, plugin := range r.plugins {
		if plugin.PlaceholderID != filter.PlaceholderID {
			continue
		}
		if filter.Language != "" && plugin.Language != filter.Language {
			continue
		}
		all = append(all, plugin)
	}

	if filter.ParentID != nil {
		return sortByPosition(childrenOf(all, filter.ParentID))
	}
	if filter.RootsOnly {
		return sortByPosition(childrenOf(all, nil))
	}

	var result []*simplecms.Plugin
	var walk func(parentID *uuid.UUID)
	walk = func(parentID *uuid.UUID) {
		for _, plugin := range sortByPosition(childrenOf(all, parentID)) {
			result = append(result, plugin)
			walk(uuidPtr(plugin.ID))
		}
	}
	walk(nil)
	return result
}

// treeOrderedPagesLocked returns every page in depth-first tree order, so
// parents always precede their descendants.
func (r *Repository) treeOrderedPagesLocked() []*simplecms.Page {
	children := make(map[uuid.UUID][]*simplecms.Page)
	var roots []*simplecms.Page
	for _, page := range r.pages {
		if page.ParentID == nil {
			roots = append(roots, page)
		} else {
			children[*page.ParentID] = append(children[*page.ParentID], page)
		}
	}

	var result []*simplecms.Page
	var walk func(pages []*simplecms.Page)
	walk = func(pages []*simplecms.Page) {
		for _, page := range sortPages(pages) {
			result = append(result, page)
			walk(children[page.ID])
		}
	}
	walk(roots)
	return result
}

func (r *Repository) matchesPageLocked(page *simplecms.Page, filter simplecms.PageFilter) bool {
	if filter.SiteID != nil && page.SiteID != *filter.SiteID {
		return false
	}
	if filter.ParentID != nil && !sameParent(page.ParentID, filter.ParentID) {
		return false
	}
	if filter.IsDraft != nil && page.IsDraft != *filter.IsDraft {
		return false
	}
	if filter.ReverseID != nil && page.ReverseID != *filter.ReverseID {
		return false
	}
	if filter.Language != nil && r.titleLocked(page.ID, *filter.Language) == nil {
		return false
	}
	if filter.Published != nil {
		published := false
		for _, id := range r.titlesByPage[page.ID] {
			if r.titles[id].Published {
				published = true
				break
			}
		}
		if published != *filter.Published {
			return false
		}
	}
	return true
}

// siblingsLocked returns the pages sharing a parent (nil for roots) within
// one site and tree, sorted by position.
func (r *Repository) siblingsLocked(siteID uuid.UUID, isDraft bool, parentID *uuid.UUID) []*simplecms.Page {
	var result []*simplecms.Page
	for _, page := range r.pages {
		if page.SiteID == siteID && page.IsDraft == isDraft && sameParent(page.ParentID, parentID) {
			result = append(result, page)
		}
	}
	return sortPages(result)
}

func sortPages(pages []*simplecms.Page) []*simplecms.Page {
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Position != pages[j].Position {
			return pages[i].Position < pages[j].Position
		}
		if !pages[i].CreatedAt.Equal(pages[j].CreatedAt) {
			return pages[i].CreatedAt.Before(pages[j].CreatedAt)
		}
		return pages[i].ID.String() < pages[j].ID.String()
	})
	return pages
}

func sortByPosition(plugins []*simplecms.Plugin) []*simplecms.Plugin {
	sort.Slice(plugins, func(i, j int) bool {
		if plugins[i].Position != plugins[j].Position {
			return plugins[i].Position < plugins[j].Position
		}
		return plugins[i].CreatedAt.Before(plugins[j].CreatedAt)
	})
	return plugins
}

func childrenOf(plugins []*simplecms.Plugin, parentID *uuid.UUID) []*simplecms.Plugin {
	var result []*simplecms.Plugin
	for _, plugin := range plugins {
		if sameParent(plugin.ParentID, parentID) {
			result = append(result, plugin)
		}
	}
	return result
}

func removePage(pages []*simplecms.Page, id uuid.UUID) []*simplecms.Page {
	result := pages[:0]
	for _, page := range pages {
		if page.ID != id {
			result = append(result, page)
		}
	}
	return result
}

func indexOfPage(pages []*simplecms.Page, id uuid.UUID) int {
	for i, page := range pages {
		if page.ID == id {
			return i
		}
	}
	return len(pages)
}

func renumber(pages []*simplecms.Page) {
	for i, page := range pages {
		page.Position = i
	}
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func clonePage(page *simplecms.Page) *simplecms.Page {
	pageCopy := *page
	pageCopy.ParentID = cloneUUIDPtr(page.ParentID)
	pageCopy.DraftID = cloneUUIDPtr(page.DraftID)
	pageCopy.PublicID = cloneUUIDPtr(page.PublicID)
	pageCopy.PublicationDate = cloneTimePtr(page.PublicationDate)
	pageCopy.PublicationEndDate = cloneTimePtr(page.PublicationEndDate)
	return &pageCopy
}

func clonePlugin(plugin *simplecms.Plugin) *simplecms.Plugin {
	pluginCopy := *plugin
	pluginCopy.ParentID = cloneUUIDPtr(plugin.ParentID)
	pluginCopy.Data = cloneData(plugin.Data)
	return &pluginCopy
}

func cloneData(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return nil
	}
	result := make(map[string]interface{}, len(data))
	for k, v := range data {
		result[k] = v
	}
	return result
}

func cloneUUIDPtr(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	idCopy := *id
	return &idCopy
}

func cloneTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	tCopy := *t
	return &tCopy
}

func uuidPtr(id uuid.UUID) *uuid.UUID {
	idCopy := id
	return &idCopy
}
