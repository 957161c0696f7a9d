package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// PagesHandler handles HTTP requests for pages using pkg/simplecms
type PagesHandler struct {
	service simplecms.Service
}

// NewPagesHandler creates a new pages handler
func NewPagesHandler(service simplecms.Service) *PagesHandler {
	return &PagesHandler{service: service}
}

// Routes returns the routes for pages
func (h *PagesHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreatePage)
	r.Post("/publish", h.PublishAll)
	r.Get("/slug", h.PreviewSlug)
	r.Get("/{id}", h.GetPage)
	r.Get("/{id}/draft", h.GetPageDraft)

	// Routes for titles
	r.Post("/{id}/titles", h.CreateTitle)
	r.Get("/{id}/titles/{language}", h.GetTitle)

	// Routes for placeholders
	r.Post("/{id}/placeholders", h.CreatePlaceholder)
	r.Get("/{id}/placeholders", h.ListPlaceholders)

	// Routes for the publication workflow
	r.Post("/{id}/publish", h.PublishPage)
	r.Post("/{id}/copy-plugins", h.CopyPlugins)

	// Routes for permissions
	r.Post("/{id}/permissions", h.AssignPermission)
	r.Get("/{id}/can-change", h.CanChange)

	return r
}

// CreatePageRequest is the request body for creating a page
type CreatePageRequest struct {
	Title    string `json:"title"`
	Template string `json:"template"`
	Language string `json:"language"`

	MenuTitle        string `json:"menu_title,omitempty"`
	Slug             string `json:"slug,omitempty"`
	Apphook          string `json:"apphook,omitempty"`
	ApphookNamespace string `json:"apphook_namespace,omitempty"`
	Redirect         string `json:"redirect,omitempty"`
	MetaDescription  string `json:"meta_description,omitempty"`
	CreatedBy        string `json:"created_by,omitempty"`

	ParentID string `json:"parent_id,omitempty"`
	SiteID   string `json:"site_id,omitempty"`

	PublicationDate    *time.Time `json:"publication_date,omitempty"`
	PublicationEndDate *time.Time `json:"publication_end_date,omitempty"`

	InNavigation        bool   `json:"in_navigation,omitempty"`
	SoftRoot            bool   `json:"soft_root,omitempty"`
	ReverseID           string `json:"reverse_id,omitempty"`
	NavigationExtenders string `json:"navigation_extenders,omitempty"`
	Published           bool   `json:"published,omitempty"`
	LoginRequired       bool   `json:"login_required,omitempty"`

	LimitVisibilityInMenu string `json:"limit_visibility_in_menu,omitempty"`
	Position              string `json:"position,omitempty"`
	XFrameOptions         string `json:"xframe_options,omitempty"`

	OverwriteURL string `json:"overwrite_url,omitempty"`
	WithRevision bool   `json:"with_revision,omitempty"`
}

// CreatePage creates a new draft page with its primary-language title
func (h *PagesHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var req CreatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	createReq := simplecms.CreatePageRequest{
		Title:                 req.Title,
		Template:              req.Template,
		Language:              req.Language,
		MenuTitle:             req.MenuTitle,
		Slug:                  req.Slug,
		Apphook:               req.Apphook,
		ApphookNamespace:      req.ApphookNamespace,
		Redirect:              req.Redirect,
		MetaDescription:       req.MetaDescription,
		CreatedBy:             req.CreatedBy,
		PublicationDate:       req.PublicationDate,
		PublicationEndDate:    req.PublicationEndDate,
		InNavigation:          req.InNavigation,
		SoftRoot:              req.SoftRoot,
		ReverseID:             req.ReverseID,
		NavigationExtenders:   req.NavigationExtenders,
		Published:             req.Published,
		LoginRequired:         req.LoginRequired,
		LimitVisibilityInMenu: simplecms.MenuVisibility(req.LimitVisibilityInMenu),
		Position:              simplecms.TreePosition(req.Position),
		XFrameOptions:         simplecms.XFrameOptions(req.XFrameOptions),
		OverwriteURL:          req.OverwriteURL,
		WithRevision:          req.WithRevision,
	}

	if req.ParentID != "" {
		parentID, err := uuid.Parse(req.ParentID)
		if err != nil {
			slog.Error("Invalid parent ID", "parent_id", req.ParentID, "error", err)
			http.Error(w, "Invalid parent ID", http.StatusBadRequest)
			return
		}
		createReq.ParentID = &parentID
	}

	if req.SiteID != "" {
		siteID, err := uuid.Parse(req.SiteID)
		if err != nil {
			slog.Error("Invalid site ID", "site_id", req.SiteID, "error", err)
			http.Error(w, "Invalid site ID", http.StatusBadRequest)
			return
		}
		createReq.SiteID = &siteID
	}

	page, err := h.service.CreatePage(r.Context(), createReq)
	if err != nil {
		slog.Error("Failed to create page", "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Page created", "page_id", page.ID.String())
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, page)
}

// GetPage retrieves a page by ID
func (h *PagesHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		slog.Error("Invalid page ID", "page_id", idStr, "error", err)
		http.Error(w, "Invalid page ID", http.StatusBadRequest)
		return
	}

	page, err := h.service.GetPage(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get page", "page_id", idStr, "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, page)
}

// GetPageDraft retrieves the draft version of a page. Passing a public
// page's ID resolves to its paired draft.
func (h *PagesHandler) GetPageDraft(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		slog.Error("Invalid page ID", "page_id", idStr, "error", err)
		http.Error(w, "Invalid page ID", http.StatusBadRequest)
		return
	}

	page, err := h.service.GetPageDraft(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get page draft", "page_id", idStr, "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, page)
}

// PreviewSlug reports the slug a title would receive under the given
// parent without creating anything
func (h *PagesHandler) PreviewSlug(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	title := query.Get("title")
	language := query.Get("language")

	var parentID *uuid.UUID
	if v := query.Get("parent_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			slog.Error("Invalid parent ID", "parent_id", v, "error", err)
			http.Error(w, "Invalid parent ID", http.StatusBadRequest)
			return
		}
		parentID = &id
	}

	slug, err := h.service.GenerateValidSlug(r.Context(), title, parentID, language)
	if err != nil {
		slog.Error("Failed to generate slug", "title", title, "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, map[string]string{"slug": slug})
}

// CreateTitleRequest is the request body for attaching a localized title
type CreateTitleRequest struct {
	Language        string `json:"language"`
	Title           string `json:"title"`
	MenuTitle       string `json:"menu_title,omitempty"`
	Slug            string `json:"slug,omitempty"`
	Redirect        string `json:"redirect,omitempty"`
	MetaDescription string `json:"meta_description,omitempty"`
	ParentID        string `json:"parent_id,omitempty"`
	OverwriteURL    string `json:"overwrite_url,omitempty"`
	WithRevision    bool   `json:"with_revision,omitempty"`
}

// CreateTitle attaches a title in a new language to an existing page
func (h *PagesHandler) CreateTitle(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	pageID, err := uuid.Parse(idStr)
	if err != nil {
		slog.Error("Invalid page ID", "page_id", idStr, "error", err)
		http.Error(w, "Invalid page ID", http.StatusBadRequest)
		return
	}

	var req CreateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	createReq := simplecms.CreateTitleRequest{
		PageID:          pageID,
		Language:        req.Language,
		Title:           req.Title,
		MenuTitle:       req.MenuTitle,
		Slug:            req.Slug,
		Redirect:        req.Redirect,
		MetaDescription: req.MetaDescription,
		OverwriteURL:    req.OverwriteURL,
		WithRevision:    req.WithRevision,
	}

	if req.ParentID != "" {
		parentID, err := uuid.Parse(req.ParentID)
		if err != nil {
			slog.Error("Invalid parent ID", "parent_id", req.ParentID, "error", err)
			http.Error(w, "Invalid parent ID", http.StatusBadRequest)
			return
		}
		createReq.ParentID = &parentID
	}

	title, err := h.service.CreateTitle(r.Context(), createReq)
	if err != nil {
		slog.Error("Failed to create title", "page_id", idStr, "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Title created", "page_id", idStr, "language", title.Language)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, title)
}

// GetTitle retrieves the title of a page for one language
func (h *PagesHandler) GetTitle(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	pageID, err := uuid.Parse(idStr)
	if err != nil {
		slog.Error("Invalid page ID", "page_id", idStr, "error", err)
		http.Error(w, "Invalid page ID", http.StatusBadRequest)
		return
	}
	language := chi.URLParam(r, "language")

	title, err := h.service.GetTitle(r.Context(), pageID, language)
	if err != nil {
		slog.Error("Failed to get title", "page_id", idStr, "language", language, "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, title)
}

// CreatePlaceholderRequest is the request body for adding a placeholder
type CreatePlaceholderRequest struct {
	Slot string `json:"slot"`
}

// CreatePlaceholder adds a named content region to a page
func (h *PagesHandler) CreatePlaceholder(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	pageID, err := uuid.Parse(idStr)
	if err != nil {
		slog.Error("Invalid page ID", "page_id", idStr, "error", err)
		http.Error(w, "Invalid page ID", http.StatusBadRequest)
		return
	}

	var req CreatePlaceholderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	placeholder, err := h.service.CreatePlaceholder(r.Context(), pageID, req.Slot)
	if err != nil {
		slog.Error("Failed to create placeholder", "page_id", idStr, "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Placeholder created", "page_id", idStr, "slot", placeholder.Slot)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, placeholder)
}

// ListPlaceholders lists the placeholders of a page
func (h *PagesHandler) ListPlaceholders(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	pageID, err := uuid.Parse(idStr)
	if err != nil {
		slog.Error("Invalid page ID", "page_id", idStr, "error", err)
		http.Error(w, "Invalid page ID", http.StatusBadRequest)
		return
	}

	placeholders, err := h.service.ListPlaceholders(r.Context(), pageID)
	if err != nil {
		slog.Error("Failed to list placeholders", "page_id", idStr, "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, placeholders)
}

// PublishPageRequest is the request body for publishing one language
type PublishPageRequest struct {
	UserID   string `json:"user_id"`
	Language string `json:"language"`
}

// PublishPage publishes the draft content of a page in one language
func (h *PagesHandler) PublishPage(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	pageID, err := uuid.Parse(idStr)
	if err != nil {
		slog.Error("Invalid page ID", "page_id", idStr, "error", err)
		http.Error(w, "Invalid page ID", http.StatusBadRequest)
		return
	}

	var req PublishPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		slog.Error("Invalid user ID", "user_id", req.UserID, "error", err)
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	page, err := h.service.PublishPage(r.Context(), pageID, userID, req.Language)
	if err != nil {
		slog.Error("Failed to publish page", "page_id", idStr, "language", req.Language, "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Page published", "page_id", idStr, "language", req.Language)
	render.JSON(w, r, page)
}

// PublishAllRequest is the request body for bulk publishing drafts
type PublishAllRequest struct {
	IncludeUnpublished bool   `json:"include_unpublished,omitempty"`
	Language           string `json:"language,omitempty"`
	SiteID             string `json:"site_id,omitempty"`
}

// PublishResult reports the outcome for one page of a bulk publish
type PublishResult struct {
	PageID    string `json:"page_id"`
	Published bool   `json:"published"`
}

// PublishAllResponse is the response body for a bulk publish
type PublishAllResponse struct {
	Results   []PublishResult `json:"results"`
	Total     int             `json:"total"`
	Published int             `json:"published"`
}

// PublishAll publishes every matching draft and reports per-page outcomes
func (h *PagesHandler) PublishAll(w http.ResponseWriter, r *http.Request) {
	var req PublishAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	publishReq := simplecms.PublishPagesRequest{
		IncludeUnpublished: req.IncludeUnpublished,
		Language:           req.Language,
	}
	if req.SiteID != "" {
		siteID, err := uuid.Parse(req.SiteID)
		if err != nil {
			slog.Error("Invalid site ID", "site_id", req.SiteID, "error", err)
			http.Error(w, "Invalid site ID", http.StatusBadRequest)
			return
		}
		publishReq.SiteID = &siteID
	}

	seq, err := h.service.PublishPages(r.Context(), publishReq)
	if err != nil {
		slog.Error("Failed to publish pages", "error", err)
		writeServiceError(w, err)
		return
	}

	resp := PublishAllResponse{Results: []PublishResult{}}
	for page, ok := range seq {
		resp.Results = append(resp.Results, PublishResult{
			PageID:    page.ID.String(),
			Published: ok,
		})
		resp.Total++
		if ok {
			resp.Published++
		}
	}

	slog.Info("Bulk publish finished", "total", resp.Total, "published", resp.Published)
	render.JSON(w, r, resp)
}

// CopyPluginsRequest is the request body for copying plugins across languages
type CopyPluginsRequest struct {
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	OnlyEmpty      bool   `json:"only_empty,omitempty"`
}

// CopyPlugins copies a page's plugins from one language to another
func (h *PagesHandler) CopyPlugins(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	pageID, err := uuid.Parse(idStr)
	if err != nil {
		slog.Error("Invalid page ID", "page_id", idStr, "error", err)
		http.Error(w, "Invalid page ID", http.StatusBadRequest)
		return
	}

	var req CopyPluginsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	count, err := h.service.CopyPluginsToLanguage(r.Context(), pageID, req.SourceLanguage, req.TargetLanguage, req.OnlyEmpty)
	if err != nil {
		slog.Error("Failed to copy plugins", "page_id", idStr, "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Plugins copied", "page_id", idStr, "target_language", req.TargetLanguage, "count", count)
	render.JSON(w, r, map[string]int{"copied": count})
}

// AssignPermissionRequest is the request body for granting capabilities on
// a page subtree. Flag fields are ignored when grant_all is set.
type AssignPermissionRequest struct {
	UserID           string `json:"user_id"`
	GrantOn          string `json:"grant_on,omitempty"`
	GrantAll         bool   `json:"grant_all,omitempty"`
	GlobalPermission bool   `json:"global_permission,omitempty"`
	CanRecoverPage   *bool  `json:"can_recover_page,omitempty"`

	CanAdd                    bool `json:"can_add,omitempty"`
	CanChange                 bool `json:"can_change,omitempty"`
	CanDelete                 bool `json:"can_delete,omitempty"`
	CanChangeAdvancedSettings bool `json:"can_change_advanced_settings,omitempty"`
	CanPublish                bool `json:"can_publish,omitempty"`
	CanChangePermissions      bool `json:"can_change_permissions,omitempty"`
	CanMovePage               bool `json:"can_move_page,omitempty"`
	CanView                   bool `json:"can_view,omitempty"`
}

// AssignPermissionResponse is the response body for a permission grant
type AssignPermissionResponse struct {
	PagePermission   *simplecms.PagePermission       `json:"page_permission"`
	GlobalPermission *simplecms.GlobalPagePermission `json:"global_permission,omitempty"`
}

// AssignPermission grants a user capabilities on a page subtree
func (h *PagesHandler) AssignPermission(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	pageID, err := uuid.Parse(idStr)
	if err != nil {
		slog.Error("Invalid page ID", "page_id", idStr, "error", err)
		http.Error(w, "Invalid page ID", http.StatusBadRequest)
		return
	}

	var req AssignPermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		slog.Error("Invalid user ID", "user_id", req.UserID, "error", err)
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	assignReq := simplecms.AssignUserToPageRequest{
		PageID:           pageID,
		UserID:           userID,
		GrantOn:          simplecms.AccessScope(req.GrantOn),
		GrantAll:         req.GrantAll,
		GlobalPermission: req.GlobalPermission,
		CanRecoverPage:   req.CanRecoverPage,
		Flags: simplecms.PermissionFlags{
			CanAdd:                    req.CanAdd,
			CanChange:                 req.CanChange,
			CanDelete:                 req.CanDelete,
			CanChangeAdvancedSettings: req.CanChangeAdvancedSettings,
			CanPublish:                req.CanPublish,
			CanChangePermissions:      req.CanChangePermissions,
			CanMovePage:               req.CanMovePage,
			CanView:                   req.CanView,
		},
	}

	pagePerm, globalPerm, err := h.service.AssignUserToPage(r.Context(), assignReq)
	if err != nil {
		slog.Error("Failed to assign permission", "page_id", idStr, "user_id", req.UserID, "error", err)
		writeServiceError(w, err)
		return
	}

	slog.Info("Permission assigned", "page_id", idStr, "user_id", req.UserID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, AssignPermissionResponse{
		PagePermission:   pagePerm,
		GlobalPermission: globalPerm,
	})
}

// CanChange reports whether a user may change a page
func (h *PagesHandler) CanChange(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	pageID, err := uuid.Parse(idStr)
	if err != nil {
		slog.Error("Invalid page ID", "page_id", idStr, "error", err)
		http.Error(w, "Invalid page ID", http.StatusBadRequest)
		return
	}

	userIDStr := r.URL.Query().Get("user_id")
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		slog.Error("Invalid user ID", "user_id", userIDStr, "error", err)
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	allowed, err := h.service.CanChangePage(r.Context(), userID, pageID)
	if err != nil {
		slog.Error("Failed to check permission", "page_id", idStr, "user_id", userIDStr, "error", err)
		writeServiceError(w, err)
		return
	}

	render.JSON(w, r, map[string]bool{"allowed": allowed})
}
