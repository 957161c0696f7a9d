package simplecms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/simple-cms/pkg/simplecms/apphooks"
	"github.com/tendant/simple-cms/pkg/simplecms/menus"
	"github.com/tendant/simple-cms/pkg/simplecms/plugins"
	"github.com/tendant/simple-cms/pkg/simplecms/templates"
)

// service implements the Service interface
type service struct {
	repository      Repository
	templates       *templates.Resolver
	apphooks        *apphooks.Pool
	pluginTypes     *plugins.Pool
	menus           *menus.Pool
	permissions     PermissionChecker
	revisions       Revisions
	eventSink       EventSink
	localeActivator LocaleActivator

	currentSiteID      uuid.UUID
	permissionsEnabled bool
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithTemplates sets the template resolver pages are validated against
func WithTemplates(resolver *templates.Resolver) Option {
	return func(s *service) {
		s.templates = resolver
	}
}

// WithApphooks sets the apphook pool
func WithApphooks(pool *apphooks.Pool) Option {
	return func(s *service) {
		s.apphooks = pool
	}
}

// WithPluginTypes sets the plugin-type pool
func WithPluginTypes(pool *plugins.Pool) Option {
	return func(s *service) {
		s.pluginTypes = pool
	}
}

// WithMenus sets the navigation-extender pool
func WithMenus(pool *menus.Pool) Option {
	return func(s *service) {
		s.menus = pool
	}
}

// WithPermissionChecker replaces the default grant-walking checker
func WithPermissionChecker(checker PermissionChecker) Option {
	return func(s *service) {
		s.permissions = checker
	}
}

// WithRevisions enables revision snapshots
func WithRevisions(revisions Revisions) Option {
	return func(s *service) {
		s.revisions = revisions
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithLocaleActivator sets the locale activator used by bulk publishing
func WithLocaleActivator(activator LocaleActivator) Option {
	return func(s *service) {
		s.localeActivator = activator
	}
}

// WithCurrentSite sets the site used when a request does not name one
func WithCurrentSite(siteID uuid.UUID) Option {
	return func(s *service) {
		s.currentSiteID = siteID
	}
}

// WithPermissionsEnabled toggles global-permission checking in
// CanChangePage. Enabled by default.
func WithPermissionsEnabled(enabled bool) Option {
	return func(s *service) {
		s.permissionsEnabled = enabled
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		templates:          templates.NewResolver(),
		apphooks:           apphooks.NewPool(),
		pluginTypes:        plugins.NewPool(),
		menus:              menus.NewPool(),
		localeActivator:    NoopLocaleActivator{},
		permissionsEnabled: true,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.permissions == nil {
		s.permissions = NewStandardChecker(s.repository)
	}

	return s, nil
}

// Page operations

func (s *service) CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error) {
	if req.Position == "" {
		req.Position = PositionLastChild
	}
	if req.LimitVisibilityInMenu == "" {
		req.LimitVisibilityInMenu = VisibilityAll
	}
	if req.XFrameOptions == "" {
		req.XFrameOptions = XFrameInherit
	}
	createdBy := resolveActor(ctx, req.CreatedBy)

	// Fail fast before any validation touches the store.
	if req.WithRevision && s.revisions == nil {
		return nil, ErrRevisionsNotConfigured
	}

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if req.Template != TemplateInherit {
		if _, ok := s.templates.Resolve(req.Template); !ok {
			return nil, fmt.Errorf("%w: template %q is not registered", ErrValidation, req.Template)
		}
	}

	siteID := s.currentSiteID
	if req.SiteID != nil {
		siteID = *req.SiteID
	}
	if siteID == uuid.Nil {
		return nil, fmt.Errorf("%w: no site given and no current site configured", ErrValidation)
	}
	site, err := s.repository.GetSite(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load site: %w", err)
	}

	if !site.LanguageEnabled(req.Language) {
		return nil, fmt.Errorf("%w: language %q is not enabled for site %q", ErrValidation, req.Language, site.Name)
	}

	slug := req.Slug
	if slug == "" {
		slug, err = s.GenerateValidSlug(ctx, req.Title, req.ParentID, req.Language)
		if err != nil {
			return nil, err
		}
	}

	var parent *Page
	if req.ParentID != nil {
		parent, err = s.repository.GetPage(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load parent page: %w", err)
		}
		if !parent.IsDraft {
			return nil, fmt.Errorf("%w: parent page %s is not a draft", ErrValidation, parent.ID)
		}
	}

	if req.NavigationExtenders != "" {
		ext, ok := s.menus.Get(req.NavigationExtenders)
		if !ok || !ext.Enabled {
			return nil, fmt.Errorf("%w: navigation extender %q is not registered", ErrValidation, req.NavigationExtenders)
		}
	}

	var applicationURLs string
	if req.Apphook != "" {
		app, ok := s.apphooks.Get(req.Apphook)
		if !ok {
			return nil, fmt.Errorf("%w: apphook %q is not registered", ErrValidation, req.Apphook)
		}
		if app.RequiresNamespace() && req.ApphookNamespace == "" {
			return nil, fmt.Errorf("%w: apphook with an app name must define a namespace", ErrValidation)
		}
		applicationURLs = app.Name
	}

	if req.ReverseID != "" {
		count, err := s.repository.CountPages(ctx, PageFilter{
			SiteID:    &siteID,
			IsDraft:   boolPtr(true),
			ReverseID: &req.ReverseID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to check reverse id: %w", err)
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: a page with reverse id %q already exists on this site", ErrDuplicateReverseID, req.ReverseID)
		}
	}

	now := time.Now().UTC()
	page := &Page{
		ID:                    uuid.New(),
		SiteID:                siteID,
		IsDraft:               true,
		CreatedBy:             createdBy,
		ChangedBy:             createdBy,
		TemplateName:          req.Template,
		PublicationDate:       req.PublicationDate,
		PublicationEndDate:    req.PublicationEndDate,
		InNavigation:          req.InNavigation,
		SoftRoot:              req.SoftRoot,
		ReverseID:             req.ReverseID,
		NavigationExtenders:   req.NavigationExtenders,
		ApplicationURLs:       applicationURLs,
		ApplicationNamespace:  req.ApphookNamespace,
		LoginRequired:         req.LoginRequired,
		LimitVisibilityInMenu: req.LimitVisibilityInMenu,
		XFrameOptions:         req.XFrameOptions,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.repository.CreatePage(ctx, page); err != nil {
		return nil, &PageError{PageID: page.ID, Op: "create", Err: err}
	}

	if parent != nil {
		if err := s.repository.MovePage(ctx, page.ID, parent.ID, req.Position); err != nil {
			return nil, &PageError{PageID: page.ID, Op: "move", Err: err}
		}
	}

	// Seed placeholders from the template's declared slots. An inheriting
	// page has no slots of its own until placeholders are added explicitly.
	if tmpl, ok := s.templates.Resolve(req.Template); ok {
		for _, slot := range tmpl.Slots {
			placeholder := &Placeholder{
				ID:        uuid.New(),
				PageID:    page.ID,
				Slot:      slot,
				CreatedAt: now,
			}
			if err := s.repository.CreatePlaceholder(ctx, placeholder); err != nil {
				return nil, &PageError{PageID: page.ID, Op: "create_placeholder", Err: err}
			}
		}
	}

	if _, err := s.CreateTitle(ctx, CreateTitleRequest{
		PageID:          page.ID,
		Language:        req.Language,
		Title:           req.Title,
		MenuTitle:       req.MenuTitle,
		Slug:            slug,
		Redirect:        req.Redirect,
		MetaDescription: req.MetaDescription,
		OverwriteURL:    req.OverwriteURL,
	}); err != nil {
		return nil, err
	}

	if req.Published {
		if _, err := s.repository.PublishPage(ctx, page.ID, req.Language, createdBy); err != nil {
			return nil, &PageError{PageID: page.ID, Op: "publish", Err: err}
		}
	}

	if req.WithRevision {
		if _, err := s.revisions.Snapshot(ctx, page.ID, createdBy, RevisionInitialComment); err != nil {
			return nil, &PageError{PageID: page.ID, Op: "snapshot", Err: err}
		}
	}

	created, err := s.repository.GetPage(ctx, page.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload page: %w", err)
	}

	if s.eventSink != nil {
		// Event failures do not fail the operation.
		_ = s.eventSink.PageCreated(ctx, created)
	}

	return created, nil
}

func (s *service) GetPage(ctx context.Context, id uuid.UUID) (*Page, error) {
	return s.repository.GetPage(ctx, id)
}

func (s *service) GetPageDraft(ctx context.Context, id uuid.UUID) (*Page, error) {
	page, err := s.repository.GetPage(ctx, id)
	if err != nil {
		return nil, err
	}
	if page.IsDraft {
		return page, nil
	}
	if page.DraftID == nil {
		return nil, ErrPageNotFound
	}
	return s.repository.GetPage(ctx, *page.DraftID)
}

// Title operations

func (s *service) CreateTitle(ctx context.Context, req CreateTitleRequest) (*Title, error) {
	if req.WithRevision && s.revisions == nil {
		return nil, ErrRevisionsNotConfigured
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	page, err := s.repository.GetPage(ctx, req.PageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load page: %w", err)
	}
	site, err := s.repository.GetSite(ctx, page.SiteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load site: %w", err)
	}
	if !site.LanguageEnabled(req.Language) {
		return nil, fmt.Errorf("%w: language %q is not enabled for site %q", ErrValidation, req.Language, site.Name)
	}

	slug := req.Slug
	if slug == "" {
		slug, err = s.GenerateValidSlug(ctx, req.Title, req.ParentID, req.Language)
		if err != nil {
			return nil, err
		}
	}

	// The URL path follows the parent chain of the page itself. A parent
	// without a title in this language contributes nothing.
	path := slug
	if page.ParentID != nil {
		parentTitle, err := s.repository.GetTitle(ctx, *page.ParentID, req.Language)
		switch {
		case err == nil:
			path = derivePath(parentTitle.Path, slug)
		case errors.Is(err, ErrTitleNotFound):
		default:
			return nil, fmt.Errorf("failed to load parent title: %w", err)
		}
	}

	hasOverwrite := false
	if req.OverwriteURL != "" {
		path = req.OverwriteURL
		hasOverwrite = true
	}

	now := time.Now().UTC()
	title := &Title{
		ID:              uuid.New(),
		PageID:          page.ID,
		Language:        req.Language,
		Title:           req.Title,
		MenuTitle:       req.MenuTitle,
		Slug:            slug,
		Path:            path,
		HasURLOverwrite: hasOverwrite,
		Redirect:        req.Redirect,
		MetaDescription: req.MetaDescription,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repository.CreateTitle(ctx, title); err != nil {
		return nil, &TitleError{PageID: page.ID, Language: req.Language, Op: "create", Err: err}
	}

	if req.WithRevision {
		actor, _ := ActorFromContext(ctx)
		if _, err := s.revisions.Snapshot(ctx, page.ID, actor, ""); err != nil {
			return nil, &TitleError{PageID: page.ID, Language: req.Language, Op: "snapshot", Err: err}
		}
	}

	return title, nil
}

func (s *service) GetTitle(ctx context.Context, pageID uuid.UUID, language string) (*Title, error) {
	return s.repository.GetTitle(ctx, pageID, language)
}

// Placeholder operations

func (s *service) CreatePlaceholder(ctx context.Context, pageID uuid.UUID, slot string) (*Placeholder, error) {
	if slot == "" {
		return nil, fmt.Errorf("%w: placeholder slot is required", ErrValidation)
	}
	if _, err := s.repository.GetPage(ctx, pageID); err != nil {
		return nil, fmt.Errorf("failed to load page: %w", err)
	}

	placeholder := &Placeholder{
		ID:        uuid.New(),
		PageID:    pageID,
		Slot:      slot,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repository.CreatePlaceholder(ctx, placeholder); err != nil {
		return nil, &PageError{PageID: pageID, Op: "create_placeholder", Err: err}
	}
	return placeholder, nil
}

func (s *service) ListPlaceholders(ctx context.Context, pageID uuid.UUID) ([]*Placeholder, error) {
	return s.repository.ListPlaceholders(ctx, pageID)
}

// Site and user operations

func (s *service) CreateSite(ctx context.Context, req CreateSiteRequest) (*Site, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	site := &Site{
		ID:        uuid.New(),
		Name:      req.Name,
		Domain:    req.Domain,
		Languages: append([]string(nil), req.Languages...),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repository.CreateSite(ctx, site); err != nil {
		return nil, fmt.Errorf("failed to create site: %w", err)
	}
	return site, nil
}

func (s *service) GetSite(ctx context.Context, id uuid.UUID) (*Site, error) {
	return s.repository.GetSite(ctx, id)
}

func (s *service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	user := &User{
		ID:          uuid.New(),
		Username:    req.Username,
		Email:       req.Email,
		IsStaff:     req.IsStaff,
		IsActive:    req.IsActive,
		IsSuperuser: req.IsSuperuser,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repository.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repository.GetUser(ctx, id)
}

// resolveActor returns the explicit name when set, falling back to the
// context actor and then to DefaultCreatedBy.
func resolveActor(ctx context.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if name, ok := ActorFromContext(ctx); ok {
		return name
	}
	return DefaultCreatedBy
}

func boolPtr(b bool) *bool {
	return &b
}
